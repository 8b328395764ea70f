// Package ipc registers a Format which reads Arrow IPC files (also known as Feather v2).
// Record batches stored in the file are split to honour the requested batch size.
package ipc

import (
	"context"
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/go-sif/dataset/format"
	"github.com/spf13/afero"
)

func init() {
	format.Register(&Format{})
}

// Format reads .arrow, .feather and .ipc files
type Format struct{}

// Name returns "ipc"
func (*Format) Name() string {
	return "ipc"
}

// Extensions returns the file suffixes read by this Format
func (*Format) Extensions() []string {
	return []string{".arrow", ".feather", ".ipc"}
}

// Open reads the record batches of an IPC file
func (*Format) Open(ctx context.Context, f afero.File, req *format.Request) (array.RecordReader, error) {
	req = req.WithDefaults()
	fr, err := ipc.NewFileReader(f, ipc.WithAllocator(req.Allocator))
	if err != nil {
		return nil, err
	}
	return &recordReader{refs: 1, file: fr, schema: fr.Schema(), batchSize: int64(req.BatchSize)}, nil
}

type recordReader struct {
	refs      int64
	file      *ipc.FileReader
	schema    *arrow.Schema
	batchSize int64
	next      int          // index of the next stored record batch
	stored    arrow.Record // stored record batch currently being sliced
	offset    int64        // rows of stored already returned
	rec       arrow.Record
	err       error
}

func (r *recordReader) Retain() {
	atomic.AddInt64(&r.refs, 1)
}

func (r *recordReader) Release() {
	if atomic.AddInt64(&r.refs, -1) != 0 {
		return
	}
	r.clear()
	if r.stored != nil {
		r.stored.Release()
		r.stored = nil
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil && r.err == nil {
			r.err = err
		}
		r.file = nil
	}
}

func (r *recordReader) clear() {
	if r.rec != nil {
		r.rec.Release()
		r.rec = nil
	}
}

func (r *recordReader) Schema() *arrow.Schema {
	return r.schema
}

func (r *recordReader) Next() bool {
	r.clear()
	if r.err != nil || r.file == nil {
		return false
	}
	for r.stored == nil || r.offset >= r.stored.NumRows() {
		if r.stored != nil {
			r.stored.Release()
			r.stored = nil
		}
		if r.next >= r.file.NumRecords() {
			return false
		}
		stored, err := r.file.Record(r.next)
		if err != nil {
			r.err = err
			return false
		}
		r.next++
		stored.Retain()
		r.stored = stored
		r.offset = 0
	}
	end := r.offset + r.batchSize
	if end > r.stored.NumRows() {
		end = r.stored.NumRows()
	}
	r.rec = r.stored.NewSlice(r.offset, end)
	r.offset = end
	return true
}

func (r *recordReader) Record() arrow.Record {
	return r.rec
}

func (r *recordReader) Err() error {
	return r.err
}
