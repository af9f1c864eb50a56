package types

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ExprKind distinguishes the shapes of a type expression.
type ExprKind int

const (
	// ExprName is a bare or parameterized name: Int, ArrayRef[Int]
	ExprName ExprKind = iota
	// ExprUnion is A | B | C
	ExprUnion
	// ExprLiteral is a string or number argument: Enum["a", "b"]
	ExprLiteral
)

// Expr is a parsed type expression.
type Expr struct {
	Kind  ExprKind
	Name  string
	Args  []*Expr
	Alts  []*Expr
	Value any
}

// String renders the expression in canonical form.
func (e *Expr) String() string {
	switch e.Kind {
	case ExprUnion:
		parts := make([]string, len(e.Alts))
		for i, alt := range e.Alts {
			parts[i] = alt.String()
		}
		return strings.Join(parts, " | ")
	case ExprLiteral:
		if s, ok := e.Value.(string); ok {
			return strconv.Quote(s)
		}
		return fmt.Sprintf("%v", e.Value)
	default:
		if len(e.Args) == 0 {
			return e.Name
		}
		parts := make([]string, len(e.Args))
		for i, arg := range e.Args {
			parts[i] = arg.String()
		}
		return e.Name + "[" + strings.Join(parts, ", ") + "]"
	}
}

// Names returns every type name referenced by the expression.
func (e *Expr) Names() []string {
	var out []string
	var walk func(*Expr)
	walk = func(x *Expr) {
		switch x.Kind {
		case ExprName:
			out = append(out, x.Name)
			for _, a := range x.Args {
				walk(a)
			}
		case ExprUnion:
			for _, a := range x.Alts {
				walk(a)
			}
		}
	}
	walk(e)
	return out
}

// ExprError reports a malformed type expression.
type ExprError struct {
	Input  string
	Offset int
	Reason string
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("invalid type expression %q at offset %d: %s", e.Input, e.Offset, e.Reason)
}

// ParseExpr parses a type expression:
//
//	expr  := term ("|" term)*
//	term  := name ("[" arg ("," arg)* "]")?
//	name  := ident ("::" ident)*
//	arg   := expr | string | number
func ParseExpr(input string) (*Expr, error) {
	p := &exprParser{src: input}
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("empty type expression")
	}
	e, err := p.union()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q", string(p.peek()))
	}
	return e, nil
}

// MustParseExpr is like ParseExpr but panics on error.
func MustParseExpr(input string) *Expr {
	e, err := ParseExpr(input)
	if err != nil {
		panic(err)
	}
	return e
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *exprParser) peek() byte {
	return p.src[p.pos]
}

func (p *exprParser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.peek())) {
		p.pos++
	}
}

func (p *exprParser) errorf(format string, args ...any) error {
	return &ExprError{Input: p.src, Offset: p.pos, Reason: fmt.Sprintf(format, args...)}
}

func (p *exprParser) union() (*Expr, error) {
	first, err := p.term()
	if err != nil {
		return nil, err
	}
	alts := []*Expr{first}
	for {
		p.skipSpace()
		if p.eof() || p.peek() != '|' {
			break
		}
		p.pos++
		next, err := p.term()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	if len(alts) == 1 {
		return first, nil
	}
	return &Expr{Kind: ExprUnion, Alts: alts}, nil
}

func (p *exprParser) term() (*Expr, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("expected type name")
	}
	name, err := p.name()
	if err != nil {
		return nil, err
	}
	e := &Expr{Kind: ExprName, Name: name}

	p.skipSpace()
	if p.eof() || p.peek() != '[' {
		return e, nil
	}
	p.pos++
	for {
		arg, err := p.arg()
		if err != nil {
			return nil, err
		}
		e.Args = append(e.Args, arg)
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf("unterminated parameter list")
		}
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return e, nil
		default:
			return nil, p.errorf("expected ',' or ']'")
		}
	}
}

func (p *exprParser) name() (string, error) {
	start := p.pos
	for {
		if p.eof() || !isIdentStart(p.peek()) {
			return "", p.errorf("expected type name")
		}
		for !p.eof() && isIdentChar(p.peek()) {
			p.pos++
		}
		if strings.HasPrefix(p.src[p.pos:], "::") {
			p.pos += 2
			continue
		}
		return p.src[start:p.pos], nil
	}
}

func (p *exprParser) arg() (*Expr, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("expected parameter")
	}
	c := p.peek()
	switch {
	case c == '"' || c == '\'':
		return p.stringLiteral(c)
	case c == '-' || (c >= '0' && c <= '9'):
		return p.numberLiteral()
	default:
		return p.union()
	}
}

func (p *exprParser) stringLiteral(quote byte) (*Expr, error) {
	p.pos++
	var sb strings.Builder
	for {
		if p.eof() {
			return nil, p.errorf("unterminated string")
		}
		c := p.peek()
		p.pos++
		if c == quote {
			return &Expr{Kind: ExprLiteral, Value: sb.String()}, nil
		}
		if c == '\\' && !p.eof() {
			c = p.peek()
			p.pos++
		}
		sb.WriteByte(c)
	}
}

func (p *exprParser) numberLiteral() (*Expr, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	isFloat := false
	for !p.eof() {
		c := p.peek()
		if c == '.' && !isFloat {
			isFloat = true
		} else if c < '0' || c > '9' {
			break
		}
		p.pos++
	}
	text := p.src[start:p.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", text)
		}
		return &Expr{Kind: ExprLiteral, Value: f}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, p.errorf("invalid number %q", text)
	}
	return &Expr{Kind: ExprLiteral, Value: int(n)}, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
