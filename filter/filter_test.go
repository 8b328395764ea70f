package filter

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-sif/dataset/errors"
	"github.com/stretchr/testify/require"
)

func createTestRecord(t *testing.T) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "score", Type: arrow.PrimitiveTypes.Float32, Nullable: true},
		{Name: "label", Type: arrow.BinaryTypes.String},
		{Name: "flag", Type: arrow.FixedWidthTypes.Boolean},
	}, nil)
	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	b.Field(0).(*array.Int64Builder).AppendValues([]int64{0, 1, 2, 3, 4, 5}, nil)
	b.Field(1).(*array.Float32Builder).AppendValues([]float32{0.1, 0.6, 0, 0.9, 0.4, 0.7}, []bool{true, true, false, true, true, true})
	b.Field(2).(*array.StringBuilder).AppendValues([]string{"cat", "dog", "cat", "cat", "dog", "bird"}, nil)
	b.Field(3).(*array.BooleanBuilder).AppendValues([]bool{true, false, true, false, true, false}, nil)
	rec := b.NewRecord()
	t.Cleanup(rec.Release)
	return rec
}

func matchingIDs(t *testing.T, e Expr, rec arrow.Record) []int64 {
	out, err := Apply(context.Background(), e, rec)
	require.Nil(t, err, e.String())
	defer out.Release()
	ids := append([]int64{}, out.Column(0).(*array.Int64).Int64Values()...)
	return ids
}

func TestEvaluate(t *testing.T) {
	rec := createTestRecord(t)
	cases := []struct {
		filter string
		ids    []int64
	}{
		{"label = 'cat'", []int64{0, 2, 3}},
		{"score > 0.5", []int64{1, 3, 5}},
		{"id >= 2 AND id < 4", []int64{2, 3}},
		{"id > 2.5", []int64{3, 4, 5}},
		{"id != 0", []int64{1, 2, 3, 4, 5}},
		{"score IS NULL", []int64{2}},
		{"score IS NOT NULL AND flag = true", []int64{0, 4}},
		{"NOT label = 'cat'", []int64{1, 4, 5}},
		{"NOT score > 0.5", []int64{0, 4}},
		{"label IN ('dog', 'bird')", []int64{1, 4, 5}},
		{"label NOT IN ('dog', 'bird')", []int64{0, 2, 3}},
		{"score > 0.5 OR label = 'bird'", []int64{1, 3, 5}},
		{"true", []int64{0, 1, 2, 3, 4, 5}},
		{"false", []int64{}},
		{"id > 100", []int64{}},
	}
	for _, c := range cases {
		e, err := Parse(c.filter)
		require.Nil(t, err, c.filter)
		require.Equal(t, c.ids, matchingIDs(t, e, rec), c.filter)
	}
}

func createNarrowRecord(t *testing.T) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "x", Type: arrow.PrimitiveTypes.Int8},
		{Name: "u", Type: arrow.PrimitiveTypes.Uint32},
		{Name: "v", Type: arrow.PrimitiveTypes.Uint64},
	}, nil)
	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	b.Field(0).(*array.Int64Builder).AppendValues([]int64{0, 1, 2}, nil)
	b.Field(1).(*array.Int8Builder).AppendValues([]int8{1, 50, 100}, nil)
	b.Field(2).(*array.Uint32Builder).AppendValues([]uint32{1, 50, 100}, nil)
	b.Field(3).(*array.Uint64Builder).AppendValues([]uint64{1, 50, 100}, nil)
	rec := b.NewRecord()
	t.Cleanup(rec.Release)
	return rec
}

func TestEvaluateLiteralOutsideColumnRange(t *testing.T) {
	rec := createNarrowRecord(t)
	cases := []struct {
		filter string
		ids    []int64
	}{
		{"x < 300", []int64{0, 1, 2}},
		{"x > 300", []int64{}},
		{"x = 300", []int64{}},
		{"x != 300", []int64{0, 1, 2}},
		{"x > -200", []int64{0, 1, 2}},
		{"x < 60", []int64{0, 1}},
		{"u > -1", []int64{0, 1, 2}},
		{"u < -1", []int64{}},
		{"u >= 0", []int64{0, 1, 2}},
		{"u < 5000000000", []int64{0, 1, 2}},
		{"v > -1", []int64{0, 1, 2}},
		{"v <= -1", []int64{}},
		{"x IN (300, 1)", []int64{0}},
		{"u IN (-1, 50)", []int64{1}},
		{"v NOT IN (-1, 100)", []int64{0, 1}},
	}
	for _, c := range cases {
		e, err := Parse(c.filter)
		require.Nil(t, err, c.filter)
		require.Equal(t, c.ids, matchingIDs(t, e, rec), c.filter)
	}
}

func TestBuilder(t *testing.T) {
	rec := createTestRecord(t)
	e := And(Field("id").Ge(1), Or(Field("label").Eq("cat"), Field("score").Lt(float32(0.5))))
	require.Equal(t, []int64{2, 3, 4}, matchingIDs(t, e, rec))
	require.Equal(t, []string{"id", "label", "score"}, e.Fields())
	require.Equal(t, []int64{1, 2}, matchingIDs(t, Field("id").In(1, uint8(2)), rec))
}

func TestEvaluateErrors(t *testing.T) {
	rec := createTestRecord(t)
	_, err := Apply(context.Background(), Field("label").Gt(3), rec)
	require.Equal(t, errors.FilterTypeError{Field: "label", Type: "utf8", Value: int64(3)}, err)

	_, err = Apply(context.Background(), Field("missing").Eq(1), rec)
	require.Equal(t, errors.UnknownColumnError{Name: "missing", Path: "record"}, err)

	_, err = Apply(context.Background(), Field("missing").In(), rec)
	require.NotNil(t, err)
}

func TestParseRendering(t *testing.T) {
	cases := map[string]string{
		"label = 'cat' AND (score >= 0.5 OR weight IS NULL)": "(label = 'cat' AND (score >= 0.5 OR weight IS NULL))",
		"a == 1 or b <> \"x\"":                               "(a = 1 OR b != 'x')",
		"NOT split in ('test','holdout')":                    "NOT split IN ('test', 'holdout')",
		"`weird col` < -2.5e3":                               "`weird col` < -2500.0",
		"meta.source = 'it''s'":                              "meta.source = 'it''s'",
		"x IS NOT NULL":                                      "x IS NOT NULL",
		"ok = FALSE":                                         "ok = false",
		"n > 3":                                              "n > 3",
	}
	for input, want := range cases {
		e, err := Parse(input)
		require.Nil(t, err, input)
		require.Equal(t, want, e.String(), input)
		// rendering is itself parseable
		again, err := Parse(e.String())
		require.Nil(t, err, want)
		require.Equal(t, want, again.String())
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"a =",
		"a = 'unterminated",
		"(a = 1",
		"a = 1 b = 2",
		"a IN (1 2)",
		"a IS 1",
		"a ~ 1",
		"= 1",
		"a = -",
		"a NOT 1",
	} {
		_, err := Parse(input)
		require.NotNil(t, err, input)
		_, ok := err.(errors.FilterSyntaxError)
		require.True(t, ok, "%q produced %T", input, err)
	}
}
