package dataset

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-sif/dataset/filter"
	"github.com/go-sif/dataset/format"
	"github.com/go-sif/dataset/logging"
	"github.com/go-sif/dataset/shard"
	"github.com/spf13/afero"
)

// DefaultBatchSize is the number of rows per batch when Options.BatchSize is not set
const DefaultBatchSize = format.DefaultBatchSize

// Options configure a Dataset. None of them are validated until the Dataset is first read.
type Options struct {
	Columns      []string         // columns to produce, in order. Empty produces every column in file order.
	Filter       filter.Expr      // predicate selecting rows
	FilterString string           // textual predicate, parsed when a scan begins. Ignored if Filter is set.
	BatchSize    int              // maximum rows per batch. Defaults to DefaultBatchSize.
	Format       string           // name of the only format to read. By default every registered format is read.
	Shard        shard.Strategy   // assignment of files to workers. Defaults to shard.RoundRobin.
	Worker       WorkerInfoFunc   // identifies this worker. Defaults to EnvWorkerInfo.
	Fs           afero.Fs         // filesystem holding the dataset, overriding resolution of the root URI
	CopyBuffers  bool             // iff true, numeric columns are copied rather than aliasing decoder memory
	Allocator    memory.Allocator // allocator for decoded records. Defaults to memory.DefaultAllocator.
	Logger       *logging.Logger  // Defaults to logging.Default().
}

// CloneOptions makes a copy of an Options
func CloneOptions(opts *Options) *Options {
	if opts == nil {
		return &Options{}
	}
	var columns []string
	if opts.Columns != nil {
		columns = append([]string{}, opts.Columns...)
	}
	return &Options{
		Columns:      columns,
		Filter:       opts.Filter,
		FilterString: opts.FilterString,
		BatchSize:    opts.BatchSize,
		Format:       opts.Format,
		Shard:        opts.Shard,
		Worker:       opts.Worker,
		Fs:           opts.Fs,
		CopyBuffers:  opts.CopyBuffers,
		Allocator:    opts.Allocator,
		Logger:       opts.Logger,
	}
}

func ensureDefaultOptionsValues(opts *Options) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Shard == nil {
		opts.Shard = shard.RoundRobin{}
	}
	if opts.Worker == nil {
		opts.Worker = EnvWorkerInfo
	}
	if opts.Allocator == nil {
		opts.Allocator = memory.DefaultAllocator
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
}
