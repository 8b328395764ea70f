package dataset

import "time"

// ScanStatistics facilitates the retrieval of statistics about the scans of a Dataset
type ScanStatistics interface {
	// GetStartTime returns the time the first scan of the Dataset began
	GetStartTime() time.Time
	// GetRuntime returns the running time of the most recent scan, or of the current one
	GetRuntime() time.Duration
	// GetNumFilesListed returns the number of files assigned to this worker
	GetNumFilesListed() int64
	// GetNumFilesScanned returns the number of files which have been fully scanned
	GetNumFilesScanned() int64
	// GetNumBatches returns the number of batches produced
	GetNumBatches() int64
	// GetNumRowsRead returns the number of rows decoded from files, before filtering
	GetNumRowsRead() int64
	// GetNumRowsYielded returns the number of rows produced in batches
	GetNumRowsYielded() int64
	// GetCurrentBatchProcessingTime returns a rolling average of batch production time
	GetCurrentBatchProcessingTime() time.Duration
}
