// Package arith parses and evaluates arithmetic expressions.
//
// Operands are numbers, identifiers, and parenthesized expressions.
// Operators, from lowest to highest binding power:
//
//	+ -   left
//	* /   left
//	-     prefix negation
//	^     right
//
// So "-2^2" negates the power, and "2^-1" raises to a negated exponent.
// Numbers are decimal with an optional fraction and exponent.
package arith

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ardnew/knit/ascii"
	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/pkg"
	"github.com/ardnew/knit/stream"
	"github.com/ardnew/knit/token"
)

// ErrUndefined is returned when evaluation meets an unbound identifier.
var ErrUndefined = pkg.MakeErrorf("undefined identifier")

// Env binds identifiers to values.
type Env map[string]float64

// Expr is a node of the expression tree.
type Expr interface {
	// Eval computes the value of the expression.
	Eval(env Env) (float64, error)
	// String renders the expression fully parenthesized.
	String() string
}

// Num is a numeric literal.
type Num struct {
	Value float64
	Span  parser.Range
}

// Var is an identifier.
type Var struct {
	Name string
	Span parser.Range
}

// Unary is a negation.
type Unary struct {
	X Expr
}

// Binary is an operator applied to two operands.
type Binary struct {
	Op   rune
	X, Y Expr
}

func (n Num) Eval(Env) (float64, error) { return n.Value, nil }

func (n Num) String() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

func (v Var) Eval(env Env) (float64, error) {
	x, ok := env[v.Name]
	if !ok {
		return 0, ErrUndefined.Wrapf("%q at offset %d", v.Name, v.Span.Start)
	}

	return x, nil
}

func (v Var) String() string { return v.Name }

func (u Unary) Eval(env Env) (float64, error) {
	x, err := u.X.Eval(env)

	return -x, err
}

func (u Unary) String() string { return "(-" + u.X.String() + ")" }

func (b Binary) Eval(env Env) (float64, error) {
	x, err := b.X.Eval(env)
	if err != nil {
		return 0, err
	}

	y, err := b.Y.Eval(env)
	if err != nil {
		return 0, err
	}

	switch b.Op {
	case '+':
		return x + y, nil
	case '-':
		return x - y, nil
	case '*':
		return x * y, nil
	case '/':
		return x / y, nil
	case '^':
		return math.Pow(x, y), nil
	}

	return 0, fmt.Errorf("unknown operator %q", b.Op)
}

func (b Binary) String() string {
	return "(" + b.X.String() + " " + string(b.Op) + " " + b.Y.String() + ")"
}

type textParser[O any] = parser.Parser[rune, string, O]

// Parse parses src into an expression tree.
func Parse(src string) (Expr, error) {
	return parser.Parse(Grammar(), stream.NewText(src))
}

// Eval parses and evaluates src.
func Eval(src string, env Env) (float64, error) {
	e, err := Parse(src)
	if err != nil {
		return 0, err
	}

	return e.Eval(env)
}

// Grammar returns the parser for a complete expression with optional
// surrounding whitespace.
func Grammar() textParser[Expr] {
	return parser.AllConsuming(parser.Preceded(ascii.Multispace0[rune, string](), Expression()))
}

func lexeme[O any](p textParser[O]) textParser[O] { return ascii.Lexeme(p) }

func sym(c rune) textParser[rune] { return lexeme(ascii.Char[rune, string](c)) }

func op(ops ...rune) textParser[rune] { return lexeme(token.OneOf[rune, string](ops...)) }

// Binding powers, lowest first.
const (
	powerSum = 1 + iota
	powerProduct
	powerNegate
	powerExponent
)

// binary returns the infix operator for c.
func binary(c rune) parser.Infix[Expr] {
	b := parser.Infix[Expr]{
		Fold: func(x, y Expr) (Expr, error) { return Binary{Op: c, X: x, Y: y}, nil },
	}

	switch c {
	case '+', '-':
		b.Power = powerSum
	case '*', '/':
		b.Power = powerProduct
	case '^':
		b.Power, b.Assoc = powerExponent, parser.AssocRight
	}

	return b
}

// Expression parses an expression and the whitespace after it.
func Expression() textParser[Expr] {
	var expr textParser[Expr]

	// Signs are operators, so a literal must start with a digit.
	number := parser.Map(
		parser.WithSpan(parser.Preceded(
			parser.Peek(token.Satisfy[rune, string]("digit", ascii.IsDigit[rune])),
			ascii.Float[rune, string](),
		)),
		func(p parser.Pair[float64, parser.Range]) Expr { return Num{Value: p.First, Span: p.Second} },
	)

	ident := parser.Map(
		parser.WithSpan(parser.Recognize(parser.Seq2(
			token.Satisfy[rune, string]("identifier", func(r rune) bool { return ascii.IsAlpha(r) || r == '_' }),
			token.TakeWhile[rune, string](func(r rune) bool { return ascii.IsAlphanumeric(r) || r == '_' }),
		))),
		func(p parser.Pair[string, parser.Range]) Expr { return Var{Name: p.First, Span: p.Second} },
	)

	group := parser.Context("group", parser.Preceded(
		sym('('),
		parser.Cut(parser.Terminated(
			parser.Lazy(func() textParser[Expr] { return expr }),
			sym(')'),
		)),
	))

	atom := parser.Expect("operand", parser.Alt(lexeme(number), lexeme(ident), group))

	negate := parser.Prefix[Expr]{
		Power: powerNegate,
		Fold:  func(x Expr) (Expr, error) { return Unary{X: x}, nil },
	}

	expr = parser.Expression(0, atom, parser.Operators[rune, string, Expr]{
		Prefix: parser.Value(negate, sym('-')),
		Infix:  parser.Map(op('+', '-', '*', '/', '^'), binary),
		Commit: true,
	})

	return expr
}
