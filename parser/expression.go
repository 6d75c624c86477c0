package parser

import (
	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/stream"
)

// Assoc is the associativity of an infix operator.
type Assoc int

const (
	// AssocLeft groups a chain of equal-power operators from the left.
	AssocLeft Assoc = iota
	// AssocRight groups a chain of equal-power operators from the right.
	AssocRight
	// AssocNone forbids chaining: after "a == b", a second operator of the
	// same power ends the expression.
	AssocNone
)

// Prefix is a parsed prefix operator. Its operand is parsed with Power as
// the minimum binding power.
type Prefix[O any] struct {
	Power int
	Fold  func(x O) (O, error)
}

// Postfix is a parsed postfix operator. It applies only where Power is at
// least the current minimum binding power.
type Postfix[O any] struct {
	Power int
	Fold  func(x O) (O, error)
}

// Infix is a parsed binary operator.
type Infix[O any] struct {
	Power int
	Assoc Assoc
	Fold  func(x, y O) (O, error)
}

// Operators is the operator table of an [Expression]. Nil parsers match
// nothing.
type Operators[T, S, O any] struct {
	Prefix  Parser[T, S, Prefix[O]]
	Postfix Parser[T, S, Postfix[O]]
	Infix   Parser[T, S, Infix[O]]

	// Commit turns a backtrack from the operand of a consumed prefix or
	// infix operator into a cut.
	Commit bool
}

// Expression parses operands joined by operators using precedence climbing.
// An operator binds only when its power is at least the minimum of the
// current level, which starts at start.
//
// An operand is tried first, then a prefix operator. After each operand the
// loop tries a postfix operator, then an infix operator, and stops when
// neither applies. A backtrack from an operator parser rewinds and ends the
// loop; a cut or incomplete result is returned.
//
// A Fold error that is not an [*outcome.Error] becomes a backtrack at the
// current offset with the error as its cause. A prefix or postfix operator
// that consumes no input panics with an [*outcome.InvariantError].
func Expression[T, S, O any](start int, operand Parser[T, S, O], ops Operators[T, S, O]) Parser[T, S, O] {
	x := &expression[T, S, O]{operand: operand, ops: ops}

	return Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		return x.parse(in, start)
	})
}

type expression[T, S, O any] struct {
	operand Parser[T, S, O]
	ops     Operators[T, S, O]
}

func (x *expression[T, S, O]) parse(in stream.Stream[T, S], floor int) (O, error) {
	var zero O

	lhs, err := x.unary(in)
	if err != nil {
		return zero, err
	}

	none, chained := 0, false

	for {
		cp := in.Checkpoint()

		if x.ops.Postfix != nil {
			post, err := x.ops.Postfix.ParseNext(in)
			if err == nil {
				if post.Power < floor {
					in.Reset(cp)

					break
				}

				if in.OffsetFrom(cp) == 0 {
					noProgress("Expression", cp.Offset())
				}

				if lhs, err = post.Fold(lhs); err != nil {
					return zero, failure(in, err)
				}

				continue
			}

			if e := failure(in, err); e.Kind != outcome.KindBacktrack {
				return zero, e
			}

			in.Reset(cp)
		}

		if x.ops.Infix == nil {
			break
		}

		op, err := x.ops.Infix.ParseNext(in)
		if err != nil {
			if e := failure(in, err); e.Kind != outcome.KindBacktrack {
				return zero, e
			}

			in.Reset(cp)

			break
		}

		if op.Power < floor || (chained && op.Power == none) {
			in.Reset(cp)

			break
		}

		next := op.Power + 1
		if op.Assoc == AssocRight {
			next = op.Power
		}

		none, chained = op.Power, op.Assoc == AssocNone

		rhs, err := x.parse(in, next)
		if err != nil {
			return zero, x.commit(in, err)
		}

		if lhs, err = op.Fold(lhs, rhs); err != nil {
			return zero, failure(in, err)
		}
	}

	return lhs, nil
}

// unary parses an operand, or a prefix operator and its operand.
func (x *expression[T, S, O]) unary(in stream.Stream[T, S]) (O, error) {
	var zero O

	cp := in.Checkpoint()

	v, err := x.operand.ParseNext(in)
	if err == nil {
		return v, nil
	}

	e := failure(in, err)
	if e.Kind != outcome.KindBacktrack || x.ops.Prefix == nil {
		return zero, e
	}

	in.Reset(cp)

	pre, err := x.ops.Prefix.ParseNext(in)
	if err != nil {
		pe := failure(in, err)
		if pe.Kind != outcome.KindBacktrack {
			return zero, pe
		}

		in.Reset(cp)

		return zero, outcome.Merge(e, pe)
	}

	if in.OffsetFrom(cp) == 0 {
		outcome.Violate("Expression", "prefix operator consumed no input at offset %d", cp.Offset())
	}

	v, err = x.parse(in, pre.Power)
	if err != nil {
		return zero, x.commit(in, err)
	}

	if v, err = pre.Fold(v); err != nil {
		return zero, failure(in, err)
	}

	return v, nil
}

func (x *expression[T, S, O]) commit(in stream.Stream[T, S], err error) error {
	e := failure(in, err)
	if x.ops.Commit {
		return e.Commit()
	}

	return e
}
