// Package csv registers a Format which reads CSV files with a header line, inferring column types from
// the first data row. Files ending in .csv.lz4 are decompressed while they are read.
package csv

import (
	"bufio"
	"bytes"
	"context"
	stdcsv "encoding/csv"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/go-sif/dataset/format"
	"github.com/pierrec/lz4"
	"github.com/spf13/afero"
)

// headerBufferSize bounds the header line examined for column push-down
const headerBufferSize = 64 << 10

func init() {
	format.Register(&Format{Comma: ','})
}

// Format reads .csv and .csv.lz4 files
type Format struct {
	Comma rune // Comma is the field delimiter. Defaults to ','.
}

// Name returns "csv"
func (*Format) Name() string {
	return "csv"
}

// Extensions returns the file suffixes read by this Format
func (*Format) Extensions() []string {
	return []string{".csv", ".csv.lz4"}
}

// Open reads a CSV file. Empty fields and NULL are read as nulls. Only the requested columns
// present in the header are decoded.
func (c *Format) Open(ctx context.Context, f afero.File, req *format.Request) (array.RecordReader, error) {
	req = req.WithDefaults()
	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(f.Name()), ".lz4") {
		r = lz4.NewReader(f)
	}
	comma := c.Comma
	if comma == 0 {
		comma = ','
	}
	br := bufio.NewReaderSize(r, headerBufferSize)
	opts := []csv.Option{
		csv.WithHeader(true),
		csv.WithComma(comma),
		csv.WithChunk(req.BatchSize),
		csv.WithAllocator(req.Allocator),
		csv.WithNullReader(true, "", "NULL"),
	}
	if include := includeColumns(br, comma, req.Columns); len(include) > 0 {
		opts = append(opts, csv.WithIncludeColumns(include))
	}
	return csv.NewInferringReader(br, opts...), nil
}

// includeColumns returns the requested columns named in the header, in header order, without consuming
// the header from br. Names which do not exist are skipped and reported by the scan. A nil result reads
// every column.
func includeColumns(br *bufio.Reader, comma rune, columns []string) []string {
	if len(columns) == 0 {
		return nil
	}
	data, _ := br.Peek(headerBufferSize)
	end := bytes.IndexByte(data, '\n')
	if end < 0 {
		if len(data) == headerBufferSize {
			return nil
		}
		end = len(data)
	}
	hr := stdcsv.NewReader(bytes.NewReader(bytes.TrimRight(data[:end], "\r")))
	hr.Comma = comma
	header, err := hr.Read()
	if err != nil {
		return nil
	}
	wanted := make(map[string]bool, len(columns))
	for _, name := range columns {
		wanted[name] = true
	}
	var include []string
	for _, name := range header {
		if wanted[name] {
			include = append(include, name)
		}
	}
	return include
}
