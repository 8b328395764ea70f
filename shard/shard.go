// Package shard assigns dataset files to parallel workers. Files are assigned in their entirety,
// so workers see balanced load only when files are of roughly equal size; SizeBalanced uses file
// sizes to even this out. Every Strategy is a pure function of its inputs: shards for workers
// 0..n-1 are pairwise disjoint, together cover every file, and keep the listing order.
package shard

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/go-sif/dataset/errors"
)

// File is a data file belonging to a dataset
type File struct {
	Path string // Path of the file within its filesystem
	Size int64  // Size of the file in bytes
}

// Strategy decides which files belong to a worker
type Strategy interface {
	Name() string
	Shard(files []File, worker int, numWorkers int) []File
}

// Validate returns an error iff worker is not a valid index for numWorkers workers
func Validate(worker int, numWorkers int) error {
	if numWorkers <= 0 || worker < 0 || worker >= numWorkers {
		return errors.InvalidWorkerInfoError{ID: worker, NumWorkers: numWorkers}
	}
	return nil
}

// Split applies a Strategy after validating the worker index
func Split(s Strategy, files []File, worker int, numWorkers int) ([]File, error) {
	if err := Validate(worker, numWorkers); err != nil {
		return nil, err
	}
	if numWorkers == 1 {
		return append([]File(nil), files...), nil
	}
	return s.Shard(files, worker, numWorkers), nil
}

// ByName returns the Strategy with the given name
func ByName(name string) (Strategy, error) {
	switch name {
	case "", "round-robin":
		return RoundRobin{}, nil
	case "hash":
		return Hash{}, nil
	case "size":
		return SizeBalanced{}, nil
	default:
		return nil, fmt.Errorf("unknown shard strategy %q", name)
	}
}

// RoundRobin keeps every numWorkers-th file, starting at the worker's index
type RoundRobin struct{}

// Name returns "round-robin"
func (RoundRobin) Name() string { return "round-robin" }

// Shard returns files[worker], files[worker+numWorkers], ...
func (RoundRobin) Shard(files []File, worker int, numWorkers int) []File {
	var out []File
	for i := worker; i < len(files); i += numWorkers {
		out = append(out, files[i])
	}
	return out
}

// Hash assigns a file to the worker selected by the hash of its path, so that assignments of existing
// files do not move when files are added to or removed from the dataset
type Hash struct{}

// Name returns "hash"
func (Hash) Name() string { return "hash" }

// Shard returns the files whose path hashes to worker
func (Hash) Shard(files []File, worker int, numWorkers int) []File {
	var out []File
	for _, f := range files {
		if xxhash.Sum64String(f.Path)%uint64(numWorkers) == uint64(worker) {
			out = append(out, f)
		}
	}
	return out
}

// SizeBalanced assigns files largest-first to the least loaded worker
type SizeBalanced struct{}

// Name returns "size"
func (SizeBalanced) Name() string { return "size" }

// Shard returns the files assigned to worker
func (SizeBalanced) Shard(files []File, worker int, numWorkers int) []File {
	order := make([]int, len(files))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return files[order[a]].Size > files[order[b]].Size
	})
	load := make([]int64, numWorkers)
	owner := make([]int, len(files))
	for _, idx := range order {
		least := 0
		for w := 1; w < numWorkers; w++ {
			if load[w] < load[least] {
				least = w
			}
		}
		owner[idx] = least
		load[least] += files[idx].Size
	}
	var out []File
	for i, f := range files {
		if owner[i] == worker {
			out = append(out, f)
		}
	}
	return out
}
