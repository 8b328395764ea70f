package dataset

import (
	"context"

	"github.com/go-sif/dataset/filter"
	"github.com/go-sif/dataset/scan"
	"github.com/go-sif/dataset/shard"
	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
)

// Iterator produces the Batches of a Dataset, one file after another. It is not safe for concurrent use.
type Iterator struct {
	ctx       context.Context
	d         *Dataset
	started   bool
	finished  bool
	runID     uuid.UUID
	expr      filter.Expr
	files     []shard.File
	next      int // index in files of the next file to scan
	scanner   *scan.Scanner
	batch     *Batch
	err       error
	closeErrs *multierror.Error
}

// Next advances to the next Batch, returning false when there are none left or an error occurred
func (it *Iterator) Next() bool {
	if it.finished {
		return false
	}
	if !it.started {
		it.started = true
		if err := it.start(); err != nil {
			it.fail(err)
			return false
		}
	}
	for {
		if err := it.ctx.Err(); err != nil {
			it.fail(err)
			return false
		}
		if it.scanner == nil {
			if it.next >= len(it.files) {
				it.finish()
				return false
			}
			if err := it.open(it.files[it.next]); err != nil {
				it.fail(err)
				return false
			}
			it.next++
		}
		it.d.stats.StartBatch()
		if !it.scanner.HasNextBatch() {
			it.closeScanner()
			continue
		}
		rec, err := it.scanner.NextBatch()
		if err != nil {
			it.fail(err)
			return false
		}
		it.batch = newBatch(it.scanner.Path(), rec, it.d.opts.CopyBuffers)
		it.d.stats.EndBatch(it.batch.NumRows)
		return true
	}
}

// Batch returns the current Batch. The caller must Release it.
func (it *Iterator) Batch() *Batch {
	return it.batch
}

// Err returns the error which ended iteration, if any
func (it *Iterator) Err() error {
	return it.err
}

// Close stops iteration, releasing any open file. It returns errors encountered closing files.
func (it *Iterator) Close() error {
	if !it.finished {
		it.closeScanner()
		it.finished = true
		it.d.stats.Finish()
	}
	return it.closeErrs.ErrorOrNil()
}

func (it *Iterator) start() error {
	files, err := it.d.Files()
	if err != nil {
		return err
	}
	it.files = files
	it.expr = it.d.opts.Filter
	if it.expr == nil && it.d.opts.FilterString != "" {
		if it.expr, err = filter.Parse(it.d.opts.FilterString); err != nil {
			return err
		}
	}
	it.runID = uuid.Must(uuid.NewV4())
	it.d.stats.Start(len(files))
	it.d.opts.Logger.Debugf("scan %s of %s started over %d files", it.runID, it.d, len(files))
	return nil
}

func (it *Iterator) open(file shard.File) error {
	s, err := scan.Open(it.ctx, it.d.fsys, file.Path, scan.Options{
		Columns:   it.d.opts.Columns,
		Filter:    it.expr,
		BatchSize: it.d.opts.BatchSize,
		Allocator: it.d.opts.Allocator,
		Format:    it.d.format,
	})
	if err != nil {
		return err
	}
	s.OnEnd(func() {
		it.d.stats.EndFile(s.RowsRead())
	})
	it.scanner = s
	return nil
}

func (it *Iterator) closeScanner() {
	if it.scanner == nil {
		return
	}
	if err := it.scanner.Close(); err != nil {
		it.closeErrs = multierror.Append(it.closeErrs, err)
	}
	it.scanner = nil
}

func (it *Iterator) fail(err error) {
	it.err = err
	it.closeScanner()
	it.finished = true
	it.d.stats.Finish()
	if it.runID != uuid.Nil {
		it.d.opts.Logger.Errorf("scan %s of %s failed: %s", it.runID, it.d, err)
	}
}

func (it *Iterator) finish() {
	it.finished = true
	it.d.stats.Finish()
	st := it.d.stats
	it.d.opts.Logger.Infof("scan %s of %s finished: %d files, %d batches, %d of %d rows in %s",
		it.runID, it.d, st.GetNumFilesScanned(), st.GetNumBatches(), st.GetNumRowsYielded(), st.GetNumRowsRead(), st.GetRuntime())
}
