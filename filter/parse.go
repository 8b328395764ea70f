package filter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-sif/dataset/errors"
)

// Parse reads a textual predicate such as
//
//	label = 'cat' AND (score >= 0.5 OR weight IS NULL) AND NOT split IN ('test', 'holdout')
//
// Identifiers may be quoted with backticks, strings with single or double quotes.
// Keywords are case-insensitive.
func Parse(input string) (Expr, error) {
	p := &parser{lex: lexer{input: input}}
	p.next()
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	return expr, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokKeyword
	tokNumber
	tokString
	tokOp
	tokLParen
	tokRParen
	tokComma
	tokError
)

type token struct {
	kind tokenKind
	text string // keywords are upper-cased; strings are unquoted
	pos  int
}

var keywords = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "IN": true, "IS": true, "NULL": true, "TRUE": true, "FALSE": true,
}

func isKeyword(s string) bool {
	return keywords[strings.ToUpper(s)]
}

func isIdentRune(r rune, first bool) bool {
	if r == '_' || unicode.IsLetter(r) {
		return true
	}
	return !first && (unicode.IsDigit(r) || r == '.')
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() token {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
	start := l.pos
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: start}
	}
	c := l.input[l.pos]
	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}
	case c == ',':
		l.pos++
		return token{kind: tokComma, text: ",", pos: start}
	case strings.ContainsRune("=!<>", rune(c)):
		for _, op := range []string{"==", "!=", "<>", "<=", ">=", "=", "<", ">"} {
			if strings.HasPrefix(l.input[l.pos:], op) {
				l.pos += len(op)
				return token{kind: tokOp, text: op, pos: start}
			}
		}
		l.pos++
		return token{kind: tokError, text: string(c), pos: start}
	case c == '\'' || c == '"':
		return l.quoted(c, tokString)
	case c == '`':
		return l.quoted(c, tokIdent)
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		l.pos++
		for l.pos < len(l.input) {
			d := l.input[l.pos]
			prev := l.input[l.pos-1]
			if (d >= '0' && d <= '9') || d == '.' || d == 'e' || d == 'E' || ((d == '-' || d == '+') && (prev == 'e' || prev == 'E')) {
				l.pos++
				continue
			}
			break
		}
		return token{kind: tokNumber, text: l.input[start:l.pos], pos: start}
	default:
		for l.pos < len(l.input) {
			r, size := utf8.DecodeRuneInString(l.input[l.pos:])
			if !isIdentRune(r, l.pos == start) {
				break
			}
			l.pos += size
		}
		if l.pos == start {
			l.pos++
			return token{kind: tokError, text: string(c), pos: start}
		}
		text := l.input[start:l.pos]
		if isKeyword(text) {
			return token{kind: tokKeyword, text: strings.ToUpper(text), pos: start}
		}
		return token{kind: tokIdent, text: text, pos: start}
	}
}

// quoted reads a quoted token. A doubled quote character stands for itself.
func (l *lexer) quoted(q byte, kind tokenKind) token {
	start := l.pos
	l.pos++
	var text strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == q {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == q {
				text.WriteByte(q)
				l.pos += 2
				continue
			}
			l.pos++
			return token{kind: kind, text: text.String(), pos: start}
		}
		text.WriteByte(c)
		l.pos++
	}
	return token{kind: tokError, text: "unterminated quote", pos: start}
}

type parser struct {
	lex lexer
	tok token
}

func (p *parser) next() {
	p.tok = p.lex.next()
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return errors.FilterSyntaxError{Input: p.lex.input, Offset: p.tok.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) isKeyword(kw string) bool {
	return p.tok.kind == tokKeyword && p.tok.text == kw
}

func (p *parser) expectKeyword(kw string) error {
	if !p.isKeyword(kw) {
		return p.errorf("expected %s, found %q", kw, p.tok.text)
	}
	p.next()
	return nil
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	exprs := []Expr{left}
	for p.isKeyword("OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, right)
	}
	return Or(exprs...), nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	exprs := []Expr{left}
	for p.isKeyword("AND") {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, right)
	}
	return And(exprs...), nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.isKeyword("NOT") {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not(inner), nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	switch {
	case p.tok.kind == tokLParen:
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errorf("expected ), found %q", p.tok.text)
		}
		p.next()
		return inner, nil
	case p.isKeyword("TRUE"):
		p.next()
		return And(), nil
	case p.isKeyword("FALSE"):
		p.next()
		return Or(), nil
	case p.tok.kind == tokIdent:
		ref := Field(p.tok.text)
		p.next()
		return p.parsePredicate(ref)
	default:
		return nil, p.errorf("expected a column name, found %q", p.tok.text)
	}
}

func (p *parser) parsePredicate(ref Ref) (Expr, error) {
	switch {
	case p.tok.kind == tokOp:
		o := p.tok.text
		p.next()
		value, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		switch o {
		case "=", "==":
			return ref.Eq(value), nil
		case "!=", "<>":
			return ref.NotEq(value), nil
		case "<":
			return ref.Lt(value), nil
		case "<=":
			return ref.Le(value), nil
		case ">":
			return ref.Gt(value), nil
		default:
			return ref.Ge(value), nil
		}
	case p.isKeyword("IS"):
		p.next()
		negated := p.isKeyword("NOT")
		if negated {
			p.next()
		}
		if err := p.expectKeyword("NULL"); err != nil {
			return nil, err
		}
		if negated {
			return ref.IsValid(), nil
		}
		return ref.IsNull(), nil
	case p.isKeyword("NOT"):
		p.next()
		if !p.isKeyword("IN") {
			return nil, p.errorf("expected IN, found %q", p.tok.text)
		}
		set, err := p.parseIn(ref)
		if err != nil {
			return nil, err
		}
		return Not(set), nil
	case p.isKeyword("IN"):
		return p.parseIn(ref)
	default:
		return nil, p.errorf("expected a comparison, found %q", p.tok.text)
	}
}

func (p *parser) parseIn(ref Ref) (Expr, error) {
	p.next() // IN
	if p.tok.kind != tokLParen {
		return nil, p.errorf("expected (, found %q", p.tok.text)
	}
	p.next()
	var values []interface{}
	for p.tok.kind != tokRParen {
		if len(values) > 0 {
			if p.tok.kind != tokComma {
				return nil, p.errorf("expected , found %q", p.tok.text)
			}
			p.next()
		}
		value, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	p.next()
	return ref.In(values...), nil
}

func (p *parser) parseLiteral() (interface{}, error) {
	tok := p.tok
	switch {
	case tok.kind == tokString:
		p.next()
		return tok.text, nil
	case tok.kind == tokNumber:
		p.next()
		if !strings.ContainsAny(tok.text, ".eE") {
			if v, err := strconv.ParseInt(tok.text, 10, 64); err == nil {
				return v, nil
			}
		}
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, errors.FilterSyntaxError{Input: p.lex.input, Offset: tok.pos, Msg: "invalid number " + strconv.Quote(tok.text)}
		}
		return v, nil
	case p.isKeyword("TRUE"):
		p.next()
		return true, nil
	case p.isKeyword("FALSE"):
		p.next()
		return false, nil
	default:
		return nil, p.errorf("expected a literal, found %q", tok.text)
	}
}
