package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-sif/dataset/internal/fixture"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCommand(&bytes.Buffer{})
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	_, err := fixture.Dataset(afero.NewOsFs(), root, ".arrow", 4, 10)
	require.Nil(t, err)

	out, err := run(t, "files", root, "--worker-id", "1", "--num-workers", "2")
	require.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], filepath.Join(root, "part-001.arrow")+"\t"))
	require.True(t, strings.HasPrefix(lines[1], filepath.Join(root, "part-003.arrow")+"\t"))

	_, err = run(t, "files", root, "--shard", "zigzag")
	require.NotNil(t, err)
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	_, err := fixture.Dataset(afero.NewOsFs(), root, ".parquet", 2, 10)
	require.Nil(t, err)

	// rows 10..19 of the second file are read as 10-13, 14-17 and 18-19
	out, err := run(t, "scan", root, "--columns", "id,label", "--filter", "id >= 15", "--batch-size", "4")
	require.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, []string{
		filepath.Join(root, "part-001.parquet") + "\t3\tid:int64[3] label:string[3]",
		filepath.Join(root, "part-001.parquet") + "\t2\tid:int64[2] label:string[2]",
		"2 files, 2 batches, 5 of 20 rows",
	}, lines)

	out, err = run(t, "scan", root, "--columns", "id", "--limit", "1", "--workers", "2")
	require.Nil(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

	_, err = run(t, "scan", root, "--filter", "id >")
	require.NotNil(t, err)
}

func TestFormats(t *testing.T) {
	out, err := run(t, "formats")
	require.Nil(t, err)
	require.Contains(t, out, "parquet\t.parquet .parq")
	require.Contains(t, out, "csv\t.csv .csv.lz4")
}
