package dataset

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/go-sif/dataset/columnar"
)

// Batch is a set of rows from one file, held as one plain slice per column
type Batch struct {
	File    string            // path of the file the rows were read from
	NumRows int               // number of rows, which is the length of every column
	Columns []columnar.Column // columns in projection order
	rec     arrow.Record
}

func newBatch(file string, rec arrow.Record, forceCopy bool) *Batch {
	b := &Batch{
		File:    file,
		NumRows: int(rec.NumRows()),
		Columns: make([]columnar.Column, rec.NumCols()),
		rec:     rec,
	}
	for i := range b.Columns {
		b.Columns[i] = columnar.FromArrow(rec.ColumnName(i), rec.Column(i), forceCopy)
	}
	return b
}

// Column returns the column with the given name
func (b *Batch) Column(name string) (columnar.Column, bool) {
	for _, c := range b.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return columnar.Column{}, false
}

// Names returns the names of this Batch's columns, in order
func (b *Batch) Names() []string {
	names := make([]string, len(b.Columns))
	for i, c := range b.Columns {
		names[i] = c.Name
	}
	return names
}

// Record returns the arrow record backing this Batch, or nil once released
func (b *Batch) Record() arrow.Record {
	return b.rec
}

// Release frees the record backing this Batch. Columns which are not Copied must not be used afterwards.
func (b *Batch) Release() {
	if b.rec != nil {
		b.rec.Release()
		b.rec = nil
	}
}
