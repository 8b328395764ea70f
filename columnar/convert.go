package columnar

import (
	"bytes"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// FromArrow converts an arrow array into a Column. Primitive numeric arrays without nulls are returned
// without copying unless forceCopy is set, in which case the Column stays valid only as long as arr does.
// Strings and byte strings are always copied into fixed element types.
func FromArrow(name string, arr arrow.Array, forceCopy bool) Column {
	switch a := arr.(type) {
	case *array.String:
		return stringsOf(name, a, a.Value)
	case *array.LargeString:
		return stringsOf(name, a, a.Value)
	case *array.Binary:
		return bytesOf(name, a, a.Value)
	case *array.LargeBinary:
		return bytesOf(name, a, a.Value)
	case *array.FixedSizeBinary:
		return bytesOf(name, a, a.Value)
	case *array.Boolean:
		return mapped(name, Bool, a, a.Value)
	case *array.Int8:
		return primitive(name, Int8, a, a.Int8Values(), forceCopy)
	case *array.Int16:
		return primitive(name, Int16, a, a.Int16Values(), forceCopy)
	case *array.Int32:
		return primitive(name, Int32, a, a.Int32Values(), forceCopy)
	case *array.Int64:
		return primitive(name, Int64, a, a.Int64Values(), forceCopy)
	case *array.Uint8:
		return primitive(name, Uint8, a, a.Uint8Values(), forceCopy)
	case *array.Uint16:
		return primitive(name, Uint16, a, a.Uint16Values(), forceCopy)
	case *array.Uint32:
		return primitive(name, Uint32, a, a.Uint32Values(), forceCopy)
	case *array.Uint64:
		return primitive(name, Uint64, a, a.Uint64Values(), forceCopy)
	case *array.Float32:
		return primitive(name, Float32, a, a.Float32Values(), forceCopy)
	case *array.Float64:
		return primitive(name, Float64, a, a.Float64Values(), forceCopy)
	case *array.Float16:
		return mapped(name, Float32, a, func(i int) float32 { return a.Value(i).Float32() })
	case *array.Timestamp:
		return mapped(name, Int64, a, func(i int) int64 { return int64(a.Value(i)) })
	case *array.Date32:
		return mapped(name, Int32, a, func(i int) int32 { return int32(a.Value(i)) })
	case *array.Date64:
		return mapped(name, Int64, a, func(i int) int64 { return int64(a.Value(i)) })
	case *array.Time32:
		return mapped(name, Int32, a, func(i int) int32 { return int32(a.Value(i)) })
	case *array.Time64:
		return mapped(name, Int64, a, func(i int) int64 { return int64(a.Value(i)) })
	case *array.Duration:
		return mapped(name, Int64, a, func(i int) int64 { return int64(a.Value(i)) })
	case *array.FixedSizeList:
		return fixedSizeList(name, a, forceCopy)
	default:
		return mapped(name, Object, arr, arr.GetOneForMarshal)
	}
}

// validity returns nil for arrays without nulls
func validity(arr arrow.Array) []bool {
	if arr.NullN() == 0 {
		return nil
	}
	valid := make([]bool, arr.Len())
	for i := range valid {
		valid[i] = arr.IsValid(i)
	}
	return valid
}

func primitive[T any](name string, kind Kind, arr arrow.Array, vals []T, forceCopy bool) Column {
	col := Column{Name: name, Kind: kind, Shape: []int{arr.Len()}, Valid: validity(arr)}
	if col.Valid == nil && !forceCopy {
		col.Values = vals
		return col
	}
	out := make([]T, len(vals))
	copy(out, vals)
	if col.Valid != nil {
		var zero T
		for i, ok := range col.Valid {
			if !ok {
				out[i] = zero
			}
		}
	}
	col.Values = out
	col.Copied = true
	return col
}

func mapped[T any](name string, kind Kind, arr arrow.Array, value func(i int) T) Column {
	col := Column{Name: name, Kind: kind, Shape: []int{arr.Len()}, Valid: validity(arr), Copied: true}
	out := make([]T, arr.Len())
	for i := range out {
		if arr.IsValid(i) {
			out[i] = value(i)
		}
	}
	col.Values = out
	return col
}

func stringsOf(name string, arr arrow.Array, value func(i int) string) Column {
	// arrow string values alias the data buffer, so they are cloned
	return mapped(name, String, arr, func(i int) string { return strings.Clone(value(i)) })
}

func bytesOf(name string, arr arrow.Array, value func(i int) []byte) Column {
	return mapped(name, Bytes, arr, func(i int) []byte {
		b := bytes.Clone(value(i))
		if b == nil {
			b = []byte{}
		}
		return b
	})
}

func fixedSizeList(name string, a *array.FixedSizeList, forceCopy bool) Column {
	dim := int(a.DataType().(*arrow.FixedSizeListType).Len())
	offset := a.Data().Offset()
	child := array.NewSlice(a.ListValues(), int64(offset*dim), int64((offset+a.Len())*dim))
	defer child.Release()
	inner := FromArrow(name, child, forceCopy)
	return Column{
		Name:   name,
		Kind:   inner.Kind,
		Shape:  []int{a.Len(), dim},
		Values: inner.Values,
		Valid:  validity(a),
		Copied: inner.Copied,
	}
}
