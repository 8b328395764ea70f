// Package fixture writes small, deterministic datasets for tests. Row i of every fixture has
// id i, label Labels[i%3], score i/10 (null when i%7 == 3), blob "row-i" and a four element embedding.
package fixture

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/pierrec/lz4"
	"github.com/spf13/afero"
)

// Labels are assigned to rows round-robin
var Labels = []string{"cat", "dog", "bird"}

// EmbeddingDim is the width of the embedding column
const EmbeddingDim = 4

// Schema returns the schema of fixture records
func Schema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "score", Type: arrow.PrimitiveTypes.Float32, Nullable: true},
		{Name: "label", Type: arrow.BinaryTypes.String},
		{Name: "blob", Type: arrow.BinaryTypes.Binary},
		{Name: "embedding", Type: arrow.FixedSizeListOf(EmbeddingDim, arrow.PrimitiveTypes.Float32)},
	}, nil)
}

// Label returns the label of row id
func Label(id int64) string {
	return Labels[id%int64(len(Labels))]
}

// Score returns the score of row id, and false if it is null
func Score(id int64) (float32, bool) {
	if id%7 == 3 {
		return 0, false
	}
	return float32(id) / 10, true
}

// Record builds rows [start, start+n)
func Record(mem memory.Allocator, start int, n int) arrow.Record {
	b := array.NewRecordBuilder(mem, Schema())
	defer b.Release()
	ids := b.Field(0).(*array.Int64Builder)
	scores := b.Field(1).(*array.Float32Builder)
	labels := b.Field(2).(*array.StringBuilder)
	blobs := b.Field(3).(*array.BinaryBuilder)
	embeddings := b.Field(4).(*array.FixedSizeListBuilder)
	values := embeddings.ValueBuilder().(*array.Float32Builder)
	for i := start; i < start+n; i++ {
		id := int64(i)
		ids.Append(id)
		if score, ok := Score(id); ok {
			scores.Append(score)
		} else {
			scores.AppendNull()
		}
		labels.Append(Label(id))
		blobs.Append([]byte(fmt.Sprintf("row-%d", i)))
		embeddings.Append(true)
		for k := 0; k < EmbeddingDim; k++ {
			values.Append(float32(i) + float32(k)/4)
		}
	}
	return b.NewRecord()
}

// WriteParquet writes rows [start, start+n) to a parquet file with at most rowGroupSize rows per row group
func WriteParquet(fs afero.Fs, path string, start int, n int, rowGroupSize int) error {
	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	props := parquet.NewWriterProperties(parquet.WithMaxRowGroupLength(int64(rowGroupSize)))
	w, err := pqarrow.NewFileWriter(Schema(), f, props, pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		return err
	}
	rec := Record(memory.DefaultAllocator, start, n)
	defer rec.Release()
	if err := w.Write(rec); err != nil {
		return err
	}
	return w.Close()
}

// WriteIPC writes rows [start, start+n) to an arrow IPC file, with at most batchRows rows per stored batch
func WriteIPC(fs afero.Fs, path string, start int, n int, batchRows int) error {
	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w, err := ipc.NewFileWriter(f, ipc.WithSchema(Schema()))
	if err != nil {
		return err
	}
	for off := 0; off < n; off += batchRows {
		rows := batchRows
		if off+rows > n {
			rows = n - off
		}
		rec := Record(memory.DefaultAllocator, start+off, rows)
		err := w.Write(rec)
		rec.Release()
		if err != nil {
			return err
		}
	}
	return w.Close()
}

// WriteCSV writes the id, score and label of rows [start, start+n) to a CSV file.
// Paths ending in .lz4 are compressed.
func WriteCSV(fs afero.Fs, path string, start int, n int) error {
	var body strings.Builder
	body.WriteString("id,score,label\n")
	for i := start; i < start+n; i++ {
		score := ""
		if s, ok := Score(int64(i)); ok {
			score = fmt.Sprintf("%.1f", s)
		}
		fmt.Fprintf(&body, "%d,%s,%s\n", i, score, Label(int64(i)))
	}
	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if !strings.HasSuffix(path, ".lz4") {
		_, err = f.WriteString(body.String())
		return err
	}
	zw := lz4.NewWriter(f)
	if _, err := zw.Write([]byte(body.String())); err != nil {
		return err
	}
	return zw.Close()
}

// Dataset writes numFiles files named part-NNN<ext> under root, each holding rowsPerFile consecutive rows,
// and returns their paths
func Dataset(fs afero.Fs, root string, ext string, numFiles int, rowsPerFile int) ([]string, error) {
	var paths []string
	for i := 0; i < numFiles; i++ {
		path := filepath.Join(root, fmt.Sprintf("part-%03d%s", i, ext))
		start := i * rowsPerFile
		var err error
		switch ext {
		case ".parquet":
			err = WriteParquet(fs, path, start, rowsPerFile, 64)
		case ".arrow":
			err = WriteIPC(fs, path, start, rowsPerFile, 64)
		case ".csv", ".csv.lz4":
			err = WriteCSV(fs, path, start, rowsPerFile)
		default:
			err = fmt.Errorf("no fixture writer for %s", ext)
		}
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
