package filter

import (
	"context"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/scalar"
	"github.com/go-sif/dataset/errors"
)

// Apply filters rec with e, returning a new record holding only the matching rows
func Apply(ctx context.Context, e Expr, rec arrow.Record) (arrow.Record, error) {
	mask, err := e.Evaluate(ctx, rec)
	if err != nil {
		return nil, err
	}
	defer mask.Release()
	return compute.FilterRecordBatch(ctx, rec, mask, compute.DefaultFilterOptions())
}

func column(rec arrow.Record, name string) (arrow.Array, error) {
	indices := rec.Schema().FieldIndices(name)
	if len(indices) == 0 {
		return nil, errors.UnknownColumnError{Name: name, Path: "record"}
	}
	return rec.Column(indices[0]), nil
}

func callArray(ctx context.Context, fn string, args ...compute.Datum) (arrow.Array, error) {
	out, err := compute.CallFunction(ctx, fn, nil, args...)
	if err != nil {
		return nil, err
	}
	defer out.Release()
	return out.(*compute.ArrayDatum).MakeArray(), nil
}

func constant(ctx context.Context, n int, value bool) arrow.Array {
	b := array.NewBooleanBuilder(compute.GetAllocator(ctx))
	defer b.Release()
	b.Reserve(n)
	for i := 0; i < n; i++ {
		b.UnsafeAppend(value)
	}
	return b.NewArray()
}

func castLiteral(s scalar.Scalar, dt arrow.DataType) (scalar.Scalar, error) {
	if arrow.TypeEqual(s.DataType(), dt) {
		return s, nil
	}
	return s.CastTo(dt)
}

// fitsInteger returns true iff v is representable in the integer type id
func fitsInteger(v int64, id arrow.Type) bool {
	switch id {
	case arrow.INT8:
		return v >= math.MinInt8 && v <= math.MaxInt8
	case arrow.INT16:
		return v >= math.MinInt16 && v <= math.MaxInt16
	case arrow.INT32:
		return v >= math.MinInt32 && v <= math.MaxInt32
	case arrow.UINT8:
		return v >= 0 && v <= math.MaxUint8
	case arrow.UINT16:
		return v >= 0 && v <= math.MaxUint16
	case arrow.UINT32:
		return v >= 0 && v <= math.MaxUint32
	case arrow.UINT64:
		return v >= 0
	default:
		return true
	}
}

// operands returns the column (cast if the literal requires it) and a literal scalar of a comparable type
func operands(ctx context.Context, field string, col arrow.Array, value interface{}) (arrow.Array, scalar.Scalar, error) {
	dt := col.DataType()
	id := dt.ID()
	mismatch := errors.FilterTypeError{Field: field, Type: dt.String(), Value: value}
	switch v := value.(type) {
	case int64:
		if arrow.IsInteger(id) && !fitsInteger(v, id) {
			// widen the column rather than wrap the literal
			if id == arrow.UINT64 {
				cast, err := compute.CastArray(ctx, col, compute.UnsafeCastOptions(arrow.PrimitiveTypes.Float64))
				if err != nil {
					return nil, nil, err
				}
				return cast, scalar.NewFloat64Scalar(float64(v)), nil
			}
			cast, err := compute.CastArray(ctx, col, compute.SafeCastOptions(arrow.PrimitiveTypes.Int64))
			if err != nil {
				return nil, nil, err
			}
			return cast, scalar.NewInt64Scalar(v), nil
		}
		if arrow.IsInteger(id) || arrow.IsFloating(id) {
			lit, err := castLiteral(scalar.NewInt64Scalar(v), dt)
			if err != nil {
				return nil, nil, err
			}
			col.Retain()
			return col, lit, nil
		}
	case float64:
		if arrow.IsFloating(id) {
			lit, err := castLiteral(scalar.NewFloat64Scalar(v), dt)
			if err != nil {
				return nil, nil, err
			}
			col.Retain()
			return col, lit, nil
		}
		if arrow.IsInteger(id) {
			cast, err := compute.CastArray(ctx, col, compute.UnsafeCastOptions(arrow.PrimitiveTypes.Float64))
			if err != nil {
				return nil, nil, err
			}
			return cast, scalar.NewFloat64Scalar(v), nil
		}
	case string:
		switch id {
		case arrow.STRING:
			col.Retain()
			return col, scalar.NewStringScalar(v), nil
		case arrow.LARGE_STRING:
			col.Retain()
			return col, scalar.NewLargeStringScalar(v), nil
		}
	case bool:
		if id == arrow.BOOL {
			col.Retain()
			return col, scalar.NewBooleanScalar(v), nil
		}
	}
	return nil, nil, mismatch
}

func compare(ctx context.Context, rec arrow.Record, field string, o op, value interface{}) (arrow.Array, error) {
	col, err := column(rec, field)
	if err != nil {
		return nil, err
	}
	lhs, lit, err := operands(ctx, field, col, value)
	if err != nil {
		return nil, err
	}
	defer lhs.Release()
	left := compute.NewDatum(lhs)
	defer left.Release()
	right := compute.NewDatum(lit)
	defer right.Release()
	return callArray(ctx, o.function(), left, right)
}

// Evaluate compares the column against the literal
func (c *comparison) Evaluate(ctx context.Context, rec arrow.Record) (arrow.Array, error) {
	return compare(ctx, rec, c.field, c.op, c.value)
}

// Evaluate ORs together equality checks against each value
func (s *inSet) Evaluate(ctx context.Context, rec arrow.Record) (arrow.Array, error) {
	exprs := make([]Expr, len(s.values))
	for i, v := range s.values {
		exprs[i] = &comparison{field: s.field, op: opEq, value: v}
	}
	if len(exprs) == 0 {
		// still report a missing column
		if _, err := column(rec, s.field); err != nil {
			return nil, err
		}
	}
	return (&junction{and: false, exprs: exprs}).Evaluate(ctx, rec)
}

// Evaluate checks the validity bitmap of the column
func (n *nullCheck) Evaluate(ctx context.Context, rec arrow.Record) (arrow.Array, error) {
	col, err := column(rec, n.field)
	if err != nil {
		return nil, err
	}
	b := array.NewBooleanBuilder(compute.GetAllocator(ctx))
	defer b.Release()
	b.Reserve(col.Len())
	for i := 0; i < col.Len(); i++ {
		b.UnsafeAppend(col.IsNull(i) == n.null)
	}
	return b.NewArray(), nil
}

// Evaluate combines the masks of each expression with kleene logic
func (j *junction) Evaluate(ctx context.Context, rec arrow.Record) (arrow.Array, error) {
	if len(j.exprs) == 0 {
		return constant(ctx, int(rec.NumRows()), j.and), nil
	}
	fn := "or_kleene"
	if j.and {
		fn = "and_kleene"
	}
	acc, err := j.exprs[0].Evaluate(ctx, rec)
	if err != nil {
		return nil, err
	}
	for _, e := range j.exprs[1:] {
		next, err := e.Evaluate(ctx, rec)
		if err != nil {
			acc.Release()
			return nil, err
		}
		left, right := compute.NewDatum(acc), compute.NewDatum(next)
		combined, err := callArray(ctx, fn, left, right)
		left.Release()
		right.Release()
		acc.Release()
		next.Release()
		if err != nil {
			return nil, err
		}
		acc = combined
	}
	return acc, nil
}

// Evaluate inverts the inner mask, keeping nulls null
func (n *negation) Evaluate(ctx context.Context, rec arrow.Record) (arrow.Array, error) {
	inner, err := n.inner.Evaluate(ctx, rec)
	if err != nil {
		return nil, err
	}
	defer inner.Release()
	mask := inner.(*array.Boolean)
	b := array.NewBooleanBuilder(compute.GetAllocator(ctx))
	defer b.Release()
	b.Reserve(mask.Len())
	for i := 0; i < mask.Len(); i++ {
		if mask.IsNull(i) {
			b.UnsafeAppendBoolToBitmap(false)
			continue
		}
		b.UnsafeAppend(!mask.Value(i))
	}
	return b.NewArray(), nil
}
