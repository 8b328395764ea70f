// Package columnar converts arrow arrays into plain Go slices, suitable for handing to a training loop.
// Conversion dispatches over the arrow element type: strings and byte strings are always copied into
// []string and [][]byte, primitive numbers alias the arrow buffer where the layout allows it, and
// anything else falls back to a generic []interface{}.
package columnar

import (
	"github.com/go-sif/dataset/errors"
)

// Column is a single converted column of a batch
type Column struct {
	Name   string      // Name of the source field
	Kind   Kind        // Kind of the elements held in Values
	Shape  []int       // Shape is [rows] for scalar columns and [rows, dim] for fixed-size lists
	Values interface{} // Values is a slice whose element type is determined by Kind
	Valid  []bool      // Valid is nil when every row is valid. Otherwise Valid[i] is false for null rows, whose values are zeroed.
	Copied bool        // Copied is false iff Values aliases memory owned by the source arrow array
}

// Len returns the number of rows in this Column
func (c Column) Len() int {
	if len(c.Shape) == 0 {
		return 0
	}
	return c.Shape[0]
}

// IsNull returns true iff row i is null
func (c Column) IsNull(i int) bool {
	return c.Valid != nil && !c.Valid[i]
}

func values[T any](c Column, want Kind) ([]T, error) {
	if c.Kind != want {
		return nil, errors.TypeMismatchError{Column: c.Name, Want: want.String(), Got: c.Kind.String()}
	}
	vals, _ := c.Values.([]T)
	return vals, nil
}

// Bools returns the values of a Bool Column
func (c Column) Bools() ([]bool, error) { return values[bool](c, Bool) }

// Int8s returns the values of an Int8 Column
func (c Column) Int8s() ([]int8, error) { return values[int8](c, Int8) }

// Int16s returns the values of an Int16 Column
func (c Column) Int16s() ([]int16, error) { return values[int16](c, Int16) }

// Int32s returns the values of an Int32 Column
func (c Column) Int32s() ([]int32, error) { return values[int32](c, Int32) }

// Int64s returns the values of an Int64 Column
func (c Column) Int64s() ([]int64, error) { return values[int64](c, Int64) }

// Uint8s returns the values of a Uint8 Column
func (c Column) Uint8s() ([]uint8, error) { return values[uint8](c, Uint8) }

// Uint16s returns the values of a Uint16 Column
func (c Column) Uint16s() ([]uint16, error) { return values[uint16](c, Uint16) }

// Uint32s returns the values of a Uint32 Column
func (c Column) Uint32s() ([]uint32, error) { return values[uint32](c, Uint32) }

// Uint64s returns the values of a Uint64 Column
func (c Column) Uint64s() ([]uint64, error) { return values[uint64](c, Uint64) }

// Float32s returns the values of a Float32 Column. Fixed-size list columns are returned flattened in row-major order.
func (c Column) Float32s() ([]float32, error) { return values[float32](c, Float32) }

// Float64s returns the values of a Float64 Column. Fixed-size list columns are returned flattened in row-major order.
func (c Column) Float64s() ([]float64, error) { return values[float64](c, Float64) }

// Strings returns the values of a String Column
func (c Column) Strings() ([]string, error) { return values[string](c, String) }

// Bytes returns the values of a Bytes Column
func (c Column) Bytes() ([][]byte, error) { return values[[]byte](c, Bytes) }

// Objects returns the values of an Object Column
func (c Column) Objects() ([]interface{}, error) { return values[interface{}](c, Object) }
