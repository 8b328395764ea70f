package dataset

import (
	"context"
	"runtime"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelism returns the number of physical cores, or of logical cores if that is unknown
func DefaultParallelism() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Parallel reads the Dataset at root with numWorkers goroutines. Each calls fn with its own Dataset,
// which reads that worker's shard of the files. The first error returned by fn cancels the ctx passed to
// the others, and is returned. numWorkers defaults to DefaultParallelism.
func Parallel(ctx context.Context, root string, opts *Options, numWorkers int, fn func(ctx context.Context, worker int, ds *Dataset) error) error {
	if numWorkers <= 0 {
		numWorkers = DefaultParallelism()
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < numWorkers; i++ {
		wopts := CloneOptions(opts)
		wopts.Worker = StaticWorkerInfo(i, numWorkers)
		ds := New(root, wopts)
		g.Go(func() error {
			return fn(gctx, i, ds)
		})
	}
	return g.Wait()
}
