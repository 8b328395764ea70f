// Package scan reads the records of a single data file through its Format, applying a filter and a
// column projection. A Scanner produces only non-empty records, with columns in the requested order.
package scan

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-sif/dataset/errors"
	"github.com/go-sif/dataset/filter"
	"github.com/go-sif/dataset/format"
	"github.com/spf13/afero"
)

// Options configure a Scanner
type Options struct {
	Columns   []string         // Columns to produce, in order. Empty produces every column of the file.
	Filter    filter.Expr      // Filter selects rows. Nil selects every row.
	BatchSize int              // BatchSize is the maximum number of rows per record. Defaults to format.DefaultBatchSize.
	Allocator memory.Allocator // Allocator for record memory. Defaults to memory.DefaultAllocator.
	Format    format.Format    // Format decodes the file. Defaults to the Format registered for the file's extension.
}

// Scanner is an iterator over the filtered, projected records of one file
type Scanner struct {
	ctx          context.Context
	path         string
	file         afero.File
	reader       array.RecordReader
	columns      []string
	filter       filter.Expr
	checked      bool         // the first record's schema has been validated
	next         arrow.Record // prefetched record, owned by the Scanner until NextBatch
	err          error        // prefetch error, returned by NextBatch
	fetched      bool
	done         bool
	closeErr     error
	rowsRead     int64
	rowsYielded  int64
	lock         sync.Mutex
	endListeners []func()
}

// Open begins scanning the file at path within fsys
func Open(ctx context.Context, fsys afero.Fs, path string, opts Options) (*Scanner, error) {
	ff := opts.Format
	if ff == nil {
		var err error
		ff, err = format.ForPath(path)
		if err != nil {
			return nil, err
		}
	}
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	req := &format.Request{
		Columns:   readColumns(opts.Columns, opts.Filter),
		BatchSize: opts.BatchSize,
		Allocator: opts.Allocator,
	}
	reader, err := ff.Open(ctx, f, req)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Scanner{
		ctx:     ctx,
		path:    path,
		file:    f,
		reader:  reader,
		columns: opts.Columns,
		filter:  opts.Filter,
	}, nil
}

// readColumns returns the columns a Format must decode to evaluate expr and produce columns
func readColumns(columns []string, expr filter.Expr) []string {
	if len(columns) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(columns))
	out := make([]string, 0, len(columns))
	add := func(names []string) {
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	add(columns)
	if expr != nil {
		add(expr.Fields())
	}
	return out
}

// Path returns the path of the file being scanned
func (s *Scanner) Path() string {
	return s.path
}

// RowsRead returns the number of rows decoded so far, before filtering
func (s *Scanner) RowsRead() int64 {
	return atomic.LoadInt64(&s.rowsRead)
}

// RowsYielded returns the number of rows produced so far
func (s *Scanner) RowsYielded() int64 {
	return atomic.LoadInt64(&s.rowsYielded)
}

// OnEnd registers a listener which fires when this Scanner runs out of records or is closed
func (s *Scanner) OnEnd(onEnd func()) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.endListeners = append(s.endListeners, onEnd)
}

// HasNextBatch returns true iff NextBatch will produce a record or an error
func (s *Scanner) HasNextBatch() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.prefetch()
	return s.next != nil || s.err != nil
}

// NextBatch returns the next record. The caller owns the record and must Release it.
// A nil record and error mean the Scanner is exhausted.
func (s *Scanner) NextBatch() (arrow.Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.prefetch()
	rec, err := s.next, s.err
	s.next, s.err, s.fetched = nil, nil, false
	if err != nil {
		s.end()
	}
	return rec, err
}

// Close releases the file and decoder. It is safe to call more than once.
func (s *Scanner) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.next != nil {
		s.next.Release()
		s.next = nil
	}
	s.end()
	return s.closeErr
}

func (s *Scanner) prefetch() {
	if s.fetched || s.done {
		return
	}
	s.fetched = true
	s.next, s.err = s.advance()
	if s.next == nil && s.err == nil {
		s.end()
	}
}

func (s *Scanner) advance() (arrow.Record, error) {
	for {
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}
		if !s.reader.Next() {
			return nil, s.reader.Err()
		}
		rec := s.reader.Record()
		atomic.AddInt64(&s.rowsRead, rec.NumRows())
		if !s.checked {
			if err := s.check(rec.Schema()); err != nil {
				return nil, err
			}
			s.checked = true
		}
		out, err := s.shape(rec)
		if err != nil {
			return nil, err
		}
		if out.NumRows() == 0 {
			out.Release()
			continue
		}
		atomic.AddInt64(&s.rowsYielded, out.NumRows())
		return out, nil
	}
}

// check reports the first projected or filtered column missing from schema
func (s *Scanner) check(schema *arrow.Schema) error {
	names := append([]string{}, s.columns...)
	if s.filter != nil {
		names = append(names, s.filter.Fields()...)
	}
	for _, name := range names {
		if !schema.HasField(name) {
			return errors.UnknownColumnError{Name: name, Path: s.path}
		}
	}
	return nil
}

// shape filters rec and projects it onto the requested columns. The result is owned by the caller.
func (s *Scanner) shape(rec arrow.Record) (arrow.Record, error) {
	var filtered arrow.Record
	if s.filter != nil {
		var err error
		filtered, err = filter.Apply(s.ctx, s.filter, rec)
		if err != nil {
			return nil, err
		}
	} else {
		rec.Retain()
		filtered = rec
	}
	if len(s.columns) == 0 {
		return filtered, nil
	}
	defer filtered.Release()
	schema := filtered.Schema()
	fields := make([]arrow.Field, len(s.columns))
	cols := make([]arrow.Array, len(s.columns))
	for i, name := range s.columns {
		idx := schema.FieldIndices(name)[0]
		fields[i] = schema.Field(idx)
		cols[i] = filtered.Column(idx)
	}
	return array.NewRecord(arrow.NewSchema(fields, nil), cols, filtered.NumRows()), nil
}

// end releases the decoder and file, and notifies end listeners, exactly once
func (s *Scanner) end() {
	if s.done {
		return
	}
	s.done = true
	s.reader.Release()
	s.closeErr = s.file.Close()
	for _, l := range s.endListeners {
		l()
	}
	s.endListeners = []func(){}
}
