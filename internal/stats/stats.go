package stats

import (
	"sync"
	"time"
)

const statisticRollingWindows = 5

// RunStatistics contains statistics about the scans of a Dataset
type RunStatistics struct {
	lock                     sync.Mutex
	started                  bool
	finished                 bool
	startTime                time.Time
	totalRuntime             time.Duration
	filesListed              int64
	filesScanned             int64
	batches                  int64
	rowsRead                 int64
	rowsYielded              int64
	recentBatchRuntimes      []time.Duration // for rolling average of recent batch production times
	recentBatchRuntimesHead  int
	currentBatchStartTime    time.Time
	currentBatchStartedClock bool
}

// Start triggers statistics tracking, if it hasn't been started already
func (rs *RunStatistics) Start(filesListed int) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if !rs.started {
		rs.started = true
		rs.startTime = time.Now()
		rs.filesListed = int64(filesListed)
		rs.recentBatchRuntimes = make([]time.Duration, statisticRollingWindows)
	}
	rs.finished = false
}

// Finish completes statistics tracking
func (rs *RunStatistics) Finish() {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if !rs.started {
		return
	}
	rs.finished = true
	rs.totalRuntime = time.Since(rs.startTime)
}

// EndFile tracks the end of the scan of a file
func (rs *RunStatistics) EndFile(rowsRead int64) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.filesScanned++
	rs.rowsRead += rowsRead
}

// StartBatch tracks the beginning of the production of a batch
func (rs *RunStatistics) StartBatch() {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.currentBatchStartTime = time.Now()
	rs.currentBatchStartedClock = true
}

// EndBatch tracks the end of the production of a batch
func (rs *RunStatistics) EndBatch(numRows int) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if rs.currentBatchStartedClock && len(rs.recentBatchRuntimes) > 0 {
		rs.recentBatchRuntimes[rs.recentBatchRuntimesHead] = time.Since(rs.currentBatchStartTime)
		rs.recentBatchRuntimesHead = (rs.recentBatchRuntimesHead + 1) % len(rs.recentBatchRuntimes)
	}
	rs.currentBatchStartedClock = false
	rs.batches++
	rs.rowsYielded += int64(numRows)
}

// GetStartTime returns the time the first scan began
func (rs *RunStatistics) GetStartTime() time.Time {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.startTime
}

// GetRuntime returns the running time of the most recent scan, or of the current one
func (rs *RunStatistics) GetRuntime() time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if !rs.started {
		return 0
	}
	if rs.finished {
		return rs.totalRuntime
	}
	return time.Since(rs.startTime)
}

// GetNumFilesListed returns the number of files assigned to this worker
func (rs *RunStatistics) GetNumFilesListed() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.filesListed
}

// GetNumFilesScanned returns the number of files which have been fully scanned
func (rs *RunStatistics) GetNumFilesScanned() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.filesScanned
}

// GetNumBatches returns the number of batches produced
func (rs *RunStatistics) GetNumBatches() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.batches
}

// GetNumRowsRead returns the number of rows decoded, before filtering
func (rs *RunStatistics) GetNumRowsRead() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.rowsRead
}

// GetNumRowsYielded returns the number of rows produced in batches
func (rs *RunStatistics) GetNumRowsYielded() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.rowsYielded
}

// GetCurrentBatchProcessingTime returns a rolling average of batch production time
func (rs *RunStatistics) GetCurrentBatchProcessingTime() time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	var total time.Duration
	for _, d := range rs.recentBatchRuntimes {
		total += d
	}
	return total / statisticRollingWindows
}
