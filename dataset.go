package dataset

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/go-sif/dataset/errors"
	"github.com/go-sif/dataset/format"
	"github.com/go-sif/dataset/internal/stats"
	"github.com/go-sif/dataset/shard"
	"github.com/go-sif/dataset/storage"
	"github.com/spf13/afero"
)

// Dataset is a set of data files under a root location, read as a sequence of Batches.
// Files are listed and assigned to this worker once, the first time they are needed.
type Dataset struct {
	root      string
	opts      *Options
	setupOnce sync.Once
	fsys      afero.Fs      // filesystem the files live on
	format    format.Format // the only Format read, if Options.Format is set
	files     []shard.File  // files assigned to this worker, in listing order
	setupErr  error
	stats     *stats.RunStatistics
}

// New creates a Dataset rooted at root, which is a local path or a URI understood by storage.Resolve.
// No I/O happens until the Dataset is read.
func New(root string, opts *Options) *Dataset {
	o := CloneOptions(opts)
	ensureDefaultOptionsValues(o)
	return &Dataset{
		root:  root,
		opts:  o,
		stats: &stats.RunStatistics{},
	}
}

// String returns a textual representation of this Dataset
func (d *Dataset) String() string {
	return fmt.Sprintf("Dataset(root=%s)", d.root)
}

// Root returns the root location of this Dataset
func (d *Dataset) Root() string {
	return d.root
}

// Stats returns statistics about the scans of this Dataset
func (d *Dataset) Stats() ScanStatistics {
	return d.stats
}

// Files returns the files read by this worker, listing them if necessary
func (d *Dataset) Files() ([]shard.File, error) {
	d.setupOnce.Do(func() {
		d.files, d.setupErr = d.configure()
		if d.setupErr != nil {
			d.opts.Logger.Errorf("%s: %s", d, d.setupErr)
		}
	})
	return d.files, d.setupErr
}

// Iterator begins a scan of this Dataset's files. The Iterator must be closed.
func (d *Dataset) Iterator(ctx context.Context) *Iterator {
	return &Iterator{ctx: ctx, d: d}
}

// All returns a sequence of every Batch in this Dataset, for use with range. Each Batch is released
// when the loop body returns, so its slices must not be retained. An error ends the sequence.
func (d *Dataset) All(ctx context.Context) iter.Seq2[*Batch, error] {
	return func(yield func(*Batch, error) bool) {
		it := d.Iterator(ctx)
		defer it.Close()
		for it.Next() {
			b := it.Batch()
			more := yield(b, nil)
			b.Release()
			if !more {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, err)
			return
		}
		if err := it.Close(); err != nil {
			yield(nil, err)
		}
	}
}

func (d *Dataset) configure() ([]shard.File, error) {
	fsys, root := d.opts.Fs, d.root
	if fsys == nil {
		var err error
		fsys, root, err = storage.Resolve(d.root)
		if err != nil {
			return nil, err
		}
	}
	d.fsys = fsys
	if d.opts.Format != "" {
		f, err := format.Lookup(d.opts.Format)
		if err != nil {
			return nil, err
		}
		d.format = f
	}
	listed, err := storage.List(fsys, root)
	if err != nil {
		return nil, err
	}
	files, err := d.readable(root, listed)
	if err != nil {
		return nil, err
	}
	info, ok, err := d.opts.Worker()
	if err != nil {
		return nil, err
	}
	if !ok {
		info = WorkerInfo{ID: 0, NumWorkers: 1}
	}
	owned, err := shard.Split(d.opts.Shard, files, info.ID, info.NumWorkers)
	if err != nil {
		return nil, err
	}
	d.opts.Logger.Debugf("%s: worker %d of %d owns %d of %d files (%s)", d, info.ID, info.NumWorkers, len(owned), len(files), d.opts.Shard.Name())
	return owned, nil
}

// readable keeps the listed files which a registered Format can read. Files of unknown formats are
// skipped, unless no readable file remains.
func (d *Dataset) readable(root string, listed []shard.File) ([]shard.File, error) {
	var kept []shard.File
	var missing error
	for _, f := range listed {
		if d.format != nil {
			if hasExtension(d.format, f.Path) || (len(listed) == 1 && f.Path == root) {
				kept = append(kept, f)
			}
			continue
		}
		if _, err := format.ForPath(f.Path); err != nil {
			if missing == nil {
				missing = err
			}
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) > 0 {
		if missing != nil {
			d.opts.Logger.Debugf("%s: skipping unreadable files: %s", d, missing)
		}
		return kept, nil
	}
	if missing != nil {
		return nil, missing
	}
	return nil, errors.NoDataFilesError{Root: d.root}
}

func hasExtension(f format.Format, path string) bool {
	path = strings.ToLower(path)
	for _, ext := range f.Extensions() {
		if strings.HasSuffix(path, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
