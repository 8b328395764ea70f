// Package dataset exposes a columnar, file-backed dataset as a pull-based iterator of batches.
// A Dataset is a root location holding one or more data files, read through the formats registered
// in package format, optionally filtered, projected and sharded across parallel workers. Each Batch
// is an ordered list of plain Go slices, one per projected column, all holding the batch's rows.
//
//	import (
//		"github.com/go-sif/dataset"
//		_ "github.com/go-sif/dataset/format/parquet"
//	)
//
//	ds := dataset.New("/data/train", &dataset.Options{Columns: []string{"image", "label"}})
//	for batch, err := range ds.All(ctx) {
//		...
//	}
package dataset
