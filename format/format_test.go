package format_test

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/go-sif/dataset/errors"
	"github.com/go-sif/dataset/format"
	_ "github.com/go-sif/dataset/format/ipc"
	_ "github.com/go-sif/dataset/format/parquet"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type fakeFormat struct {
	name string
	exts []string
}

func (f *fakeFormat) Name() string         { return f.name }
func (f *fakeFormat) Extensions() []string { return f.exts }
func (f *fakeFormat) Open(ctx context.Context, file afero.File, req *format.Request) (array.RecordReader, error) {
	return nil, nil
}

func TestForPath(t *testing.T) {
	f, err := format.ForPath("/data/part-000.parquet")
	require.Nil(t, err)
	require.Equal(t, "parquet", f.Name())
	f, err = format.ForPath("/data/PART.ARROW")
	require.Nil(t, err)
	require.Equal(t, "ipc", f.Name())
	f, err = format.ForPath("/data/x.feather")
	require.Nil(t, err)
	require.Equal(t, "ipc", f.Name())
}

func TestForPathMissing(t *testing.T) {
	// csv is not imported by this test
	_, err := format.ForPath("/data/part-000.csv.lz4")
	require.NotNil(t, err)
	missing, ok := err.(errors.MissingFormatError)
	require.True(t, ok)
	require.Equal(t, ".csv.lz4", missing.Ext)
	require.Equal(t, "github.com/go-sif/dataset/format/csv", missing.Hint)
	require.Contains(t, err.Error(), "github.com/go-sif/dataset/format/csv")

	_, err = format.ForPath("/data/notes.txt")
	missing, ok = err.(errors.MissingFormatError)
	require.True(t, ok)
	require.Equal(t, ".txt", missing.Ext)
	require.Equal(t, "", missing.Hint)
}

func TestLookup(t *testing.T) {
	f, err := format.Lookup("parquet")
	require.Nil(t, err)
	require.Equal(t, "parquet", f.Name())
	_, err = format.Lookup("lance")
	require.Equal(t, errors.UnknownFormatError{Name: "lance"}, err)
	require.Subset(t, format.Names(), []string{"ipc", "parquet"})
}

func TestRegisterDuplicate(t *testing.T) {
	require.Panics(t, func() {
		format.Register(&fakeFormat{name: "parquet", exts: []string{".pq-dup"}})
	})
	require.Panics(t, func() {
		format.Register(&fakeFormat{name: "other-parquet", exts: []string{".PARQUET"}})
	})
	format.Register(&fakeFormat{name: "fake", exts: []string{".fake"}})
	f, err := format.ForPath("a.fake")
	require.Nil(t, err)
	require.Equal(t, "fake", f.Name())
}

func TestRequestDefaults(t *testing.T) {
	var req *format.Request
	d := req.WithDefaults()
	require.Equal(t, format.DefaultBatchSize, d.BatchSize)
	require.NotNil(t, d.Allocator)
	orig := &format.Request{BatchSize: 7}
	d = orig.WithDefaults()
	require.Equal(t, 7, d.BatchSize)
	require.Nil(t, orig.Allocator)
}
