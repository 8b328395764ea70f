// Package format maintains the registry of file formats a dataset can be read from. Formats register
// themselves from the init function of their package, so a program reads only the formats it imports:
//
//	import _ "github.com/go-sif/dataset/format/parquet"
package format

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-sif/dataset/errors"
	"github.com/spf13/afero"
)

// DefaultBatchSize is the number of rows per record when a Request does not specify one
const DefaultBatchSize = 1024

// Request describes what a Format should read from a file
type Request struct {
	Columns   []string         // Columns to read, in any order. Empty means every column. Formats may return extra columns.
	BatchSize int              // BatchSize is the maximum number of rows per record. Defaults to DefaultBatchSize.
	Allocator memory.Allocator // Allocator for record memory. Defaults to memory.DefaultAllocator.
}

// WithDefaults returns a copy of r with unset fields defaulted
func (r *Request) WithDefaults() *Request {
	out := &Request{}
	if r != nil {
		*out = *r
	}
	if out.BatchSize <= 0 {
		out.BatchSize = DefaultBatchSize
	}
	if out.Allocator == nil {
		out.Allocator = memory.DefaultAllocator
	}
	return out
}

// Format decodes one kind of data file into arrow records
type Format interface {
	Name() string         // Name identifies this Format in the registry
	Extensions() []string // Extensions lists the file suffixes, including the leading dot, this Format reads
	// Open begins reading f. The returned reader does not close f.
	Open(ctx context.Context, f afero.File, req *Request) (array.RecordReader, error)
}

// hints name the package providing a Format, for extensions whose Format isn't registered
var hints = map[string]string{
	".parquet": "github.com/go-sif/dataset/format/parquet",
	".arrow":   "github.com/go-sif/dataset/format/ipc",
	".feather": "github.com/go-sif/dataset/format/ipc",
	".ipc":     "github.com/go-sif/dataset/format/ipc",
	".csv":     "github.com/go-sif/dataset/format/csv",
	".csv.lz4": "github.com/go-sif/dataset/format/csv",
}

var (
	lock   sync.RWMutex
	byName = make(map[string]Format)
	byExt  = make(map[string]Format)
)

// Register makes a Format available by name and extension. It panics if either is already registered.
func Register(f Format) {
	lock.Lock()
	defer lock.Unlock()
	if _, dup := byName[f.Name()]; dup {
		panic("format: Register called twice for format " + f.Name())
	}
	for _, ext := range f.Extensions() {
		if _, dup := byExt[strings.ToLower(ext)]; dup {
			panic("format: Register called twice for extension " + ext)
		}
	}
	byName[f.Name()] = f
	for _, ext := range f.Extensions() {
		byExt[strings.ToLower(ext)] = f
	}
}

// Lookup returns the Format registered under name
func Lookup(name string) (Format, error) {
	lock.RLock()
	defer lock.RUnlock()
	f, ok := byName[name]
	if !ok {
		return nil, errors.UnknownFormatError{Name: name}
	}
	return f, nil
}

// Names returns the names of all registered Formats, sorted
func Names() []string {
	lock.RLock()
	defer lock.RUnlock()
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForPath returns the Format registered for the longest matching suffix of path.
// If none matches, the error is a MissingFormatError naming the package to import when it is known.
func ForPath(path string) (Format, error) {
	base := strings.ToLower(filepath.Base(path))
	lock.RLock()
	defer lock.RUnlock()
	var best Format
	bestLen := 0
	for ext, f := range byExt {
		if len(ext) > bestLen && strings.HasSuffix(base, ext) {
			best, bestLen = f, len(ext)
		}
	}
	if best != nil {
		return best, nil
	}
	return nil, missing(base, path)
}

func missing(base string, path string) error {
	ext := ""
	hint := ""
	for known, pkg := range hints {
		if len(known) > len(ext) && strings.HasSuffix(base, known) {
			ext, hint = known, pkg
		}
	}
	if ext == "" {
		ext = filepath.Ext(base)
	}
	return errors.MissingFormatError{Ext: ext, Path: path, Hint: hint}
}
