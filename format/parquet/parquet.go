// Package parquet registers a Format which reads Apache Parquet files through the arrow parquet reader.
// Only the requested columns are decoded, and records are produced with the requested batch size.
package parquet

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/go-sif/dataset/format"
	"github.com/spf13/afero"
)

func init() {
	format.Register(&Format{})
}

// Format reads .parquet files
type Format struct{}

// Name returns "parquet"
func (*Format) Name() string {
	return "parquet"
}

// Extensions returns the file suffixes read by this Format
func (*Format) Extensions() []string {
	return []string{".parquet", ".parq"}
}

// Open reads the requested columns of a parquet file
func (*Format) Open(ctx context.Context, f afero.File, req *format.Request) (array.RecordReader, error) {
	req = req.WithDefaults()
	pf, err := file.NewParquetReader(f, file.WithReadProps(parquet.NewReaderProperties(req.Allocator)))
	if err != nil {
		return nil, err
	}
	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: int64(req.BatchSize)}, req.Allocator)
	if err != nil {
		return nil, err
	}
	return fr.GetRecordReader(ctx, leafIndices(fr.Manifest, req.Columns), nil)
}

// leafIndices returns the parquet leaf columns backing the named top-level fields. Names which do not
// exist are skipped and reported by the scan. A nil result reads every column.
func leafIndices(manifest *pqarrow.SchemaManifest, columns []string) []int {
	if len(columns) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(columns))
	for _, c := range columns {
		wanted[c] = true
	}
	indices := []int{}
	for _, field := range manifest.Fields {
		if wanted[field.Field.Name] {
			indices = appendLeaves(indices, field)
		}
	}
	if len(indices) == 0 {
		return nil
	}
	return indices
}

func appendLeaves(indices []int, field pqarrow.SchemaField) []int {
	if field.ColIndex >= 0 && len(field.Children) == 0 {
		return append(indices, field.ColIndex)
	}
	for _, child := range field.Children {
		indices = appendLeaves(indices, child)
	}
	return indices
}
