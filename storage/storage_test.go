package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sif/dataset/errors"
	"github.com/go-sif/dataset/shard"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, fs afero.Fs, contents map[string]string) {
	for name, body := range contents {
		require.Nil(t, afero.WriteFile(fs, name, []byte(body), 0644))
	}
}

func paths(files []shard.File) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestListWalk(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/ds/b.parquet":        "bb",
		"/ds/a.parquet":        "a",
		"/ds/sub/c.parquet":    "ccc",
		"/ds/.hidden.parquet":  "x",
		"/ds/_versions/1.bin":  "x",
		"/ds/_SUCCESS":         "",
		"/elsewhere/d.parquet": "d",
	})
	files, err := List(fs, "/ds")
	require.Nil(t, err)
	require.Equal(t, []string{"/ds/a.parquet", "/ds/b.parquet", "/ds/sub/c.parquet"}, paths(files))
	require.Equal(t, int64(2), files[1].Size)
}

func TestListSingleFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"/ds/a.parquet": "abc"})
	files, err := List(fs, "/ds/a.parquet")
	require.Nil(t, err)
	require.Equal(t, []shard.File{{Path: "/ds/a.parquet", Size: 3}}, files)
}

func TestListManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/ds/z.parquet":        "z",
		"/ds/a.parquet":        "a",
		"/ds/unlisted.parquet": "u",
		"/ds/" + ManifestName:  `{"files": ["z.parquet", "a.parquet"]}`,
	})
	files, err := List(fs, "/ds")
	require.Nil(t, err)
	require.Equal(t, []string{"/ds/z.parquet", "/ds/a.parquet"}, paths(files))

	writeFiles(t, fs, map[string]string{
		"/ds/" + ManifestName: `{"version": 3, "fragments": [{"id": 0, "path": "a.parquet"}, {"id": 1, "path": "z.parquet"}]}`,
	})
	files, err = List(fs, "/ds")
	require.Nil(t, err)
	require.Equal(t, []string{"/ds/a.parquet", "/ds/z.parquet"}, paths(files))
}

func TestListManifestErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"/ds/" + ManifestName: `{"files": [`})
	_, err := List(fs, "/ds")
	require.NotNil(t, err)

	writeFiles(t, fs, map[string]string{"/ds/" + ManifestName: `{"files": ["missing.parquet"]}`})
	_, err = List(fs, "/ds")
	require.True(t, os.IsNotExist(err))
}

func TestListMissingRoot(t *testing.T) {
	_, err := List(afero.NewMemMapFs(), "/nope")
	require.True(t, os.IsNotExist(err))
}

func TestResolve(t *testing.T) {
	fs, root, err := Resolve("/tmp/data")
	require.Nil(t, err)
	require.Equal(t, "/tmp/data", root)
	require.NotNil(t, fs)

	_, root, err = Resolve("file:///var/data/train")
	require.Nil(t, err)
	require.Equal(t, "/var/data/train", root)

	mem := afero.NewMemMapFs()
	writeFiles(t, mem, map[string]string{"/train/a.parquet": "a"})
	RegisterMemory("resolve-test", mem)
	defer UnregisterMemory("resolve-test")
	fs, root, err = Resolve("mem://resolve-test/train")
	require.Nil(t, err)
	require.Equal(t, "/train", root)
	ok, err := afero.Exists(fs, filepath.Join(root, "a.parquet"))
	require.Nil(t, err)
	require.True(t, ok)
	// resolved filesystems are read-only
	require.NotNil(t, afero.WriteFile(fs, "/train/b.parquet", []byte("b"), 0644))

	_, _, err = Resolve("s3://bucket/train")
	require.Equal(t, errors.UnsupportedSchemeError{Scheme: "s3"}, err)
	_, _, err = Resolve("mem://unknown/train")
	require.NotNil(t, err)
}
