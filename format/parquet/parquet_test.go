package parquet_test

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/go-sif/dataset/format"
	"github.com/go-sif/dataset/format/parquet"
	"github.com/go-sif/dataset/internal/fixture"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, fs afero.Fs, path string, req *format.Request) (names []string, sizes []int64, ids []int64) {
	f, err := fs.Open(path)
	require.Nil(t, err)
	defer f.Close()
	rr, err := (&parquet.Format{}).Open(context.Background(), f, req)
	require.Nil(t, err)
	defer rr.Release()
	for rr.Next() {
		rec := rr.Record()
		names = names[:0]
		for _, field := range rec.Schema().Fields() {
			names = append(names, field.Name)
		}
		sizes = append(sizes, rec.NumRows())
		if idx := rec.Schema().FieldIndices("id"); len(idx) > 0 {
			ids = append(ids, rec.Column(idx[0]).(*array.Int64).Int64Values()...)
		}
	}
	require.Nil(t, rr.Err())
	return names, sizes, ids
}

func TestParquetProjection(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.Nil(t, fixture.WriteParquet(fs, "/data/a.parquet", 0, 200, 64))

	names, sizes, ids := readAll(t, fs, "/data/a.parquet", &format.Request{Columns: []string{"label", "id"}, BatchSize: 50})
	require.Equal(t, []string{"id", "label"}, names)
	var total int64
	for _, n := range sizes {
		require.LessOrEqual(t, n, int64(50))
		total += n
	}
	require.Equal(t, int64(200), total)
	require.Len(t, ids, 200)
	for i, id := range ids {
		require.Equal(t, int64(i), id)
	}
}

func TestParquetAllColumns(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.Nil(t, fixture.WriteParquet(fs, "/data/a.parquet", 10, 20, 64))

	names, sizes, ids := readAll(t, fs, "/data/a.parquet", nil)
	require.Equal(t, []string{"id", "score", "label", "blob", "embedding"}, names)
	require.Equal(t, []int64{20}, sizes)
	require.Equal(t, int64(10), ids[0])

	// names absent from the file fall back to every column, leaving the error to the scan
	names, _, _ = readAll(t, fs, "/data/a.parquet", &format.Request{Columns: []string{"nope"}})
	require.Len(t, names, 5)
}

func TestParquetNotParquet(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.Nil(t, afero.WriteFile(fs, "/data/a.parquet", []byte("not parquet at all"), 0644))
	f, err := fs.Open("/data/a.parquet")
	require.Nil(t, err)
	defer f.Close()
	_, err = (&parquet.Format{}).Open(context.Background(), f, nil)
	require.NotNil(t, err)
}

func TestParquetRegistered(t *testing.T) {
	f, err := format.ForPath("x.parq")
	require.Nil(t, err)
	require.IsType(t, &parquet.Format{}, f)
	require.Equal(t, arrow.FIXED_SIZE_LIST, fixture.Schema().Field(4).Type.ID())
}
