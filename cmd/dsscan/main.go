// Command dsscan inspects a dataset: the files a worker reads, and the batches a scan produces.
//
//	dsscan files /data/train --worker-id 0 --num-workers 4
//	dsscan scan /data/train --columns image,label --filter "split = 'train'" --limit 10
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/go-sif/dataset"
	"github.com/go-sif/dataset/format"
	_ "github.com/go-sif/dataset/format/csv"
	_ "github.com/go-sif/dataset/format/ipc"
	_ "github.com/go-sif/dataset/format/parquet"
	"github.com/go-sif/dataset/logging"
	"github.com/go-sif/dataset/shard"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCommand(os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	format     string
	shard      string
	workerID   int
	numWorkers int
	logLevel   string
	columns    []string
	filter     string
	batchSize  int
	copy       bool
	limit      int
	workers    int
}

// options builds dataset Options from command line flags, logging to logOut
func (f *flags) options(logOut io.Writer) (*dataset.Options, error) {
	level, err := logging.ParseLevel(f.logLevel)
	if err != nil {
		return nil, err
	}
	strategy, err := shard.ByName(f.shard)
	if err != nil {
		return nil, err
	}
	opts := &dataset.Options{
		Columns:      f.columns,
		FilterString: f.filter,
		BatchSize:    f.batchSize,
		Format:       f.format,
		Shard:        strategy,
		CopyBuffers:  f.copy,
		Logger:       logging.New(logOut, level),
	}
	if f.workerID >= 0 {
		opts.Worker = dataset.StaticWorkerInfo(f.workerID, f.numWorkers)
	}
	return opts, nil
}

func newRootCommand(logOut io.Writer) *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:          "dsscan",
		Short:        "Inspect and scan columnar datasets",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&f.format, "format", "", "only read files of this format ("+strings.Join(format.Names(), ", ")+")")
	root.PersistentFlags().StringVar(&f.shard, "shard", "round-robin", "file sharding strategy: round-robin, hash or size")
	root.PersistentFlags().IntVar(&f.workerID, "worker-id", -1, "index of this worker; by default read from "+dataset.WorkerIDEnv)
	root.PersistentFlags().IntVar(&f.numWorkers, "num-workers", 1, "number of workers, used with --worker-id")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "warn", "log level: trace, debug, info, warn, error or fatal")

	root.AddCommand(newFilesCommand(f, logOut), newScanCommand(f, logOut), newFormatsCommand())
	return root
}

func newFilesCommand(f *flags, logOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "files <root>",
		Short: "List the files read by this worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(logOut)
			if err != nil {
				return err
			}
			files, err := dataset.New(args[0], opts).Files()
			if err != nil {
				return err
			}
			for _, file := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", file.Path, file.Size)
			}
			return nil
		},
	}
}

func newScanCommand(f *flags, logOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <root>",
		Short: "Scan the batches of a dataset, printing a summary of each",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(logOut)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if f.workers != 1 {
				return scanParallel(cmd.Context(), out, args[0], opts, f.workers, f.limit)
			}
			ds := dataset.New(args[0], opts)
			if err := scanOne(cmd.Context(), out, nil, ds, f.limit); err != nil {
				return err
			}
			st := ds.Stats()
			fmt.Fprintf(out, "%d files, %d batches, %d of %d rows\n",
				st.GetNumFilesScanned(), st.GetNumBatches(), st.GetNumRowsYielded(), st.GetNumRowsRead())
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&f.columns, "columns", nil, "columns to read, in order; all by default")
	cmd.Flags().StringVar(&f.filter, "filter", "", "row filter, e.g. \"label = 'cat' AND score > 0.5\"")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", dataset.DefaultBatchSize, "maximum rows per batch")
	cmd.Flags().BoolVar(&f.copy, "copy", false, "copy numeric columns out of decoder memory")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "stop after this many batches per worker; 0 reads everything")
	cmd.Flags().IntVar(&f.workers, "workers", 1, "number of parallel in-process workers; 0 uses one per physical core")
	return cmd
}

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the registered file formats",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range format.Names() {
				f, _ := format.Lookup(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, strings.Join(f.Extensions(), " "))
			}
		},
	}
}

func scanParallel(ctx context.Context, out io.Writer, root string, opts *dataset.Options, workers int, limit int) error {
	if workers <= 0 {
		workers = dataset.DefaultParallelism()
	}
	lock := &sync.Mutex{}
	return dataset.Parallel(ctx, root, opts, workers, func(ctx context.Context, worker int, ds *dataset.Dataset) error {
		return scanOne(ctx, out, lock, ds, limit)
	})
}

// scanOne prints a line per batch of ds, holding lock, if any, while printing
func scanOne(ctx context.Context, out io.Writer, lock sync.Locker, ds *dataset.Dataset, limit int) error {
	n := 0
	for batch, err := range ds.All(ctx) {
		if err != nil {
			return err
		}
		line := describe(batch)
		if lock != nil {
			lock.Lock()
		}
		fmt.Fprintln(out, line)
		if lock != nil {
			lock.Unlock()
		}
		n++
		if limit > 0 && n >= limit {
			break
		}
	}
	return nil
}

func describe(b *dataset.Batch) string {
	cols := make([]string, len(b.Columns))
	for i, c := range b.Columns {
		shape := make([]string, len(c.Shape))
		for j, d := range c.Shape {
			shape[j] = fmt.Sprint(d)
		}
		cols[i] = fmt.Sprintf("%s:%s[%s]", c.Name, c.Kind, strings.Join(shape, "x"))
	}
	return fmt.Sprintf("%s\t%d\t%s", b.File, b.NumRows, strings.Join(cols, " "))
}
