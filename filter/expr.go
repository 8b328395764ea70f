// Package filter describes row predicates which are pushed into dataset scans. Predicates are built
// with Field and the combinators And, Or and Not, or parsed from text with Parse, and are evaluated
// against arrow records with arrow compute kernels. Rows for which a predicate is null are dropped.
package filter

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// Expr is a predicate over the rows of a record
type Expr interface {
	fmt.Stringer
	// Fields returns the names of the columns this Expr reads, sorted and without duplicates
	Fields() []string
	// Evaluate returns a boolean array with one entry per row of rec
	Evaluate(ctx context.Context, rec arrow.Record) (arrow.Array, error)
}

type op int

const (
	opEq op = iota
	opNotEq
	opLt
	opLe
	opGt
	opGe
)

func (o op) function() string {
	switch o {
	case opNotEq:
		return "not_equal"
	case opLt:
		return "less"
	case opLe:
		return "less_equal"
	case opGt:
		return "greater"
	case opGe:
		return "greater_equal"
	default:
		return "equal"
	}
}

func (o op) String() string {
	switch o {
	case opNotEq:
		return "!="
	case opLt:
		return "<"
	case opLe:
		return "<="
	case opGt:
		return ">"
	case opGe:
		return ">="
	default:
		return "="
	}
}

// Ref refers to a column by name
type Ref struct{ Name string }

// Field returns a reference to the named column
func Field(name string) Ref {
	return Ref{Name: name}
}

// Eq matches rows where the column equals value
func (r Ref) Eq(value interface{}) Expr { return newComparison(r.Name, opEq, value) }

// NotEq matches rows where the column does not equal value
func (r Ref) NotEq(value interface{}) Expr { return newComparison(r.Name, opNotEq, value) }

// Lt matches rows where the column is less than value
func (r Ref) Lt(value interface{}) Expr { return newComparison(r.Name, opLt, value) }

// Le matches rows where the column is less than or equal to value
func (r Ref) Le(value interface{}) Expr { return newComparison(r.Name, opLe, value) }

// Gt matches rows where the column is greater than value
func (r Ref) Gt(value interface{}) Expr { return newComparison(r.Name, opGt, value) }

// Ge matches rows where the column is greater than or equal to value
func (r Ref) Ge(value interface{}) Expr { return newComparison(r.Name, opGe, value) }

// In matches rows where the column equals any of values
func (r Ref) In(values ...interface{}) Expr {
	set := &inSet{field: r.Name}
	for _, v := range values {
		set.values = append(set.values, normalize(v))
	}
	return set
}

// IsNull matches rows where the column is null
func (r Ref) IsNull() Expr { return &nullCheck{field: r.Name, null: true} }

// IsValid matches rows where the column is not null
func (r Ref) IsValid() Expr { return &nullCheck{field: r.Name, null: false} }

// And matches rows matched by every expression. With no expressions, every row matches.
func And(exprs ...Expr) Expr {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return &junction{and: true, exprs: exprs}
}

// Or matches rows matched by any expression. With no expressions, no row matches.
func Or(exprs ...Expr) Expr {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return &junction{and: false, exprs: exprs}
}

// Not matches rows not matched by e
func Not(e Expr) Expr {
	return &negation{inner: e}
}

type comparison struct {
	field string
	op    op
	value interface{}
}

func newComparison(field string, o op, value interface{}) Expr {
	return &comparison{field: field, op: o, value: normalize(value)}
}

func (c *comparison) String() string {
	return fmt.Sprintf("%s %s %s", quoteIdent(c.field), c.op, literal(c.value))
}

func (c *comparison) Fields() []string { return []string{c.field} }

type inSet struct {
	field  string
	values []interface{}
}

func (s *inSet) String() string {
	lits := make([]string, len(s.values))
	for i, v := range s.values {
		lits[i] = literal(v)
	}
	return fmt.Sprintf("%s IN (%s)", quoteIdent(s.field), strings.Join(lits, ", "))
}

func (s *inSet) Fields() []string { return []string{s.field} }

type nullCheck struct {
	field string
	null  bool
}

func (n *nullCheck) String() string {
	if n.null {
		return quoteIdent(n.field) + " IS NULL"
	}
	return quoteIdent(n.field) + " IS NOT NULL"
}

func (n *nullCheck) Fields() []string { return []string{n.field} }

type junction struct {
	and   bool
	exprs []Expr
}

func (j *junction) String() string {
	if len(j.exprs) == 0 {
		if j.and {
			return "true"
		}
		return "false"
	}
	sep := " OR "
	if j.and {
		sep = " AND "
	}
	parts := make([]string, len(j.exprs))
	for i, e := range j.exprs {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func (j *junction) Fields() []string {
	var fields []string
	for _, e := range j.exprs {
		fields = append(fields, e.Fields()...)
	}
	return dedupe(fields)
}

type negation struct{ inner Expr }

func (n *negation) String() string { return "NOT " + n.inner.String() }

func (n *negation) Fields() []string { return n.inner.Fields() }

func dedupe(fields []string) []string {
	sort.Strings(fields)
	out := fields[:0]
	for i, f := range fields {
		if i == 0 || f != fields[i-1] {
			out = append(out, f)
		}
	}
	return out
}

// normalize widens Go numbers to int64 or float64
func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return normalizeUint(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return normalizeUint(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

func normalizeUint(x uint64) interface{} {
	if x > math.MaxInt64 {
		return float64(x)
	}
	return int64(x)
}

func literal(v interface{}) string {
	switch x := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case float64:
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	case nil:
		return "NULL"
	default:
		return fmt.Sprint(x)
	}
}

func quoteIdent(name string) string {
	if name == "" || isKeyword(name) {
		return "`" + name + "`"
	}
	for i, r := range name {
		if !isIdentRune(r, i == 0) {
			return "`" + name + "`"
		}
	}
	return name
}
