package dataset

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by EnvWorkerInfo
const (
	WorkerIDEnv   = "DATASET_WORKER_ID"
	NumWorkersEnv = "DATASET_NUM_WORKERS"
)

// WorkerInfo identifies one of a pool of parallel readers of a Dataset
type WorkerInfo struct {
	ID         int // index of this worker, in [0, NumWorkers)
	NumWorkers int
}

// WorkerInfoFunc reports the WorkerInfo of the caller. ok is false when not running in a pool of workers,
// in which case the caller reads every file.
type WorkerInfoFunc func() (info WorkerInfo, ok bool, err error)

// EnvWorkerInfo reads WorkerInfo from DATASET_WORKER_ID and DATASET_NUM_WORKERS. It reports ok=false
// when neither is set.
func EnvWorkerInfo() (WorkerInfo, bool, error) {
	id, hasID := os.LookupEnv(WorkerIDEnv)
	n, hasN := os.LookupEnv(NumWorkersEnv)
	if !hasID && !hasN {
		return WorkerInfo{}, false, nil
	}
	if !hasID || !hasN {
		return WorkerInfo{}, false, fmt.Errorf("%s and %s must be set together", WorkerIDEnv, NumWorkersEnv)
	}
	info := WorkerInfo{}
	var err error
	if info.ID, err = strconv.Atoi(id); err != nil {
		return WorkerInfo{}, false, fmt.Errorf("invalid %s: %w", WorkerIDEnv, err)
	}
	if info.NumWorkers, err = strconv.Atoi(n); err != nil {
		return WorkerInfo{}, false, fmt.Errorf("invalid %s: %w", NumWorkersEnv, err)
	}
	return info, true, nil
}

// StaticWorkerInfo returns a WorkerInfoFunc which always reports worker id of numWorkers
func StaticWorkerInfo(id int, numWorkers int) WorkerInfoFunc {
	return func() (WorkerInfo, bool, error) {
		return WorkerInfo{ID: id, NumWorkers: numWorkers}, true, nil
	}
}
