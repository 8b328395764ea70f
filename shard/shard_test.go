package shard

import (
	"fmt"
	"testing"

	"github.com/go-sif/dataset/errors"
	"github.com/stretchr/testify/require"
)

func makeFiles(n int) []File {
	files := make([]File, n)
	for i := range files {
		files[i] = File{Path: fmt.Sprintf("data/part-%03d.parquet", i), Size: int64((i*7919)%97 + 1)}
	}
	return files
}

func TestStrategiesPartition(t *testing.T) {
	for _, s := range []Strategy{RoundRobin{}, Hash{}, SizeBalanced{}} {
		for _, numFiles := range []int{0, 1, 5, 16, 33} {
			files := makeFiles(numFiles)
			for numWorkers := 1; numWorkers <= 6; numWorkers++ {
				seen := make(map[string]int)
				for w := 0; w < numWorkers; w++ {
					shard, err := Split(s, files, w, numWorkers)
					require.Nil(t, err)
					last := -1
					for _, f := range shard {
						seen[f.Path]++
						// listing order is preserved within a shard
						var idx int
						fmt.Sscanf(f.Path, "data/part-%03d.parquet", &idx)
						require.Greater(t, idx, last, s.Name())
						last = idx
					}
				}
				require.Len(t, seen, numFiles, "%s: %d files over %d workers", s.Name(), numFiles, numWorkers)
				for path, count := range seen {
					require.Equal(t, 1, count, "%s assigned %s more than once", s.Name(), path)
				}
			}
		}
	}
}

func TestRoundRobin(t *testing.T) {
	files := makeFiles(7)
	shard := RoundRobin{}.Shard(files, 1, 3)
	require.Equal(t, []File{files[1], files[4]}, shard)
}

func TestSingleWorkerKeepsListing(t *testing.T) {
	files := makeFiles(9)
	for _, s := range []Strategy{RoundRobin{}, Hash{}, SizeBalanced{}} {
		shard, err := Split(s, files, 0, 1)
		require.Nil(t, err)
		require.Equal(t, files, shard)
	}
}

func TestSizeBalanced(t *testing.T) {
	files := []File{
		{Path: "a", Size: 100},
		{Path: "b", Size: 10},
		{Path: "c", Size: 10},
		{Path: "d", Size: 10},
		{Path: "e", Size: 70},
	}
	w0 := SizeBalanced{}.Shard(files, 0, 2)
	w1 := SizeBalanced{}.Shard(files, 1, 2)
	require.Equal(t, []File{files[0]}, w0)
	require.Equal(t, []File{files[1], files[2], files[3], files[4]}, w1)
}

func TestHashIsStable(t *testing.T) {
	files := makeFiles(20)
	before := Hash{}.Shard(files, 2, 4)
	grown := append(makeFiles(20), File{Path: "data/extra.parquet"})
	after := Hash{}.Shard(grown, 2, 4)
	for _, f := range before {
		require.Contains(t, after, f)
	}
}

func TestInvalidWorker(t *testing.T) {
	_, err := Split(RoundRobin{}, makeFiles(3), 3, 3)
	require.Equal(t, errors.InvalidWorkerInfoError{ID: 3, NumWorkers: 3}, err)
	_, err = Split(RoundRobin{}, makeFiles(3), 0, 0)
	require.NotNil(t, err)
}

func TestByName(t *testing.T) {
	for _, name := range []string{"round-robin", "hash", "size"} {
		s, err := ByName(name)
		require.Nil(t, err)
		require.Equal(t, name, s.Name())
	}
	_, err := ByName("random")
	require.NotNil(t, err)
}
