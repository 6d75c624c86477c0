package parser

import (
	"math"

	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/stream"
)

// Unbounded is the maximum repetition count meaning "no upper limit".
const Unbounded = math.MaxInt

// Repetition combinators share one loop:
//
//   - a success that consumed no input panics with an
//     [*outcome.InvariantError], since the loop could never end;
//   - a backtrack rewinds to before the failed attempt and ends the loop,
//     which succeeds if at least min iterations completed and otherwise
//     returns the backtrack;
//   - a cut or incomplete result is returned immediately;
//   - at most max iterations are attempted.
//
// Constructors panic with an [*outcome.InvariantError] when min is negative
// or exceeds max.

func checkBounds(op string, lo, hi int) {
	if lo < 0 || lo > hi {
		outcome.Violate(op, "invalid repetition bounds [%d, %d]", lo, hi)
	}
}

func noProgress(op string, offset int) {
	outcome.Violate(op, "parser succeeded without consuming input at offset %d", offset)
}

// Fold runs p between lo and hi times, combining outputs into an
// accumulator. init is called once per invocation to produce the starting
// value.
func Fold[T, S, O, A any](
	lo, hi int, p Parser[T, S, O], init func() A, f func(A, O) A,
) Parser[T, S, A] {
	checkBounds("Fold", lo, hi)

	return Func[T, S, A](func(in stream.Stream[T, S]) (A, error) {
		acc := init()

		for n := 0; n < hi; n++ {
			cp := in.Checkpoint()

			out, err := p.ParseNext(in)
			if err != nil {
				var zero A

				e := failure(in, err)
				if e.Kind != outcome.KindBacktrack {
					return zero, e
				}

				in.Reset(cp)

				if n < lo {
					return zero, e
				}

				break
			}

			if in.OffsetFrom(cp) == 0 {
				noProgress("Fold", cp.Offset())
			}

			acc = f(acc, out)
		}

		return acc, nil
	})
}

// Repeat runs p between lo and hi times and collects the outputs.
func Repeat[T, S, O any](lo, hi int, p Parser[T, S, O]) Parser[T, S, []O] {
	checkBounds("Repeat", lo, hi)

	return Fold(lo, hi, p,
		func() []O { return nil },
		func(acc []O, o O) []O { return append(acc, o) },
	)
}

// Repeat0 runs p zero or more times.
func Repeat0[T, S, O any](p Parser[T, S, O]) Parser[T, S, []O] {
	return Repeat(0, Unbounded, p)
}

// Repeat1 runs p one or more times.
func Repeat1[T, S, O any](p Parser[T, S, O]) Parser[T, S, []O] {
	return Repeat(1, Unbounded, p)
}

// RepeatN runs p exactly n times.
func RepeatN[T, S, O any](n int, p Parser[T, S, O]) Parser[T, S, []O] {
	return Repeat(n, n, p)
}

// Count runs p between lo and hi times and returns the number of successful
// iterations, discarding outputs.
func Count[T, S, O any](lo, hi int, p Parser[T, S, O]) Parser[T, S, int] {
	checkBounds("Count", lo, hi)

	return Fold(lo, hi, p,
		func() int { return 0 },
		func(n int, _ O) int { return n + 1 },
	)
}

// Separated runs p between lo and hi times with sep between consecutive
// elements. A trailing separator is not consumed.
func Separated[T, S, O, X any](
	lo, hi int, p Parser[T, S, O], sep Parser[T, S, X],
) Parser[T, S, []O] {
	checkBounds("Separated", lo, hi)

	return Func[T, S, []O](func(in stream.Stream[T, S]) ([]O, error) {
		var out []O

		if hi == 0 {
			return out, nil
		}

		cp := in.Checkpoint()

		first, err := p.ParseNext(in)
		if err != nil {
			e := failure(in, err)
			if e.Kind != outcome.KindBacktrack || lo > 0 {
				return nil, e
			}

			in.Reset(cp)

			return out, nil
		}

		out = append(out, first)

		for len(out) < hi {
			cp = in.Checkpoint()

			if _, err := sep.ParseNext(in); err != nil {
				if e := failure(in, err); e.Kind != outcome.KindBacktrack ||
					len(out) < lo {
					return nil, e
				}

				in.Reset(cp)

				break
			}

			elem, err := p.ParseNext(in)
			if err != nil {
				if e := failure(in, err); e.Kind != outcome.KindBacktrack ||
					len(out) < lo {
					return nil, e
				}

				in.Reset(cp)

				break
			}

			if in.OffsetFrom(cp) == 0 {
				noProgress("Separated", cp.Offset())
			}

			out = append(out, elem)
		}

		return out, nil
	})
}

// RepeatTill runs p until end succeeds, requiring between lo and hi
// repetitions of p. end is tried before each repetition once lo have
// completed. It returns the outputs of p and the output of end.
func RepeatTill[T, S, O, E any](
	lo, hi int, p Parser[T, S, O], end Parser[T, S, E],
) Parser[T, S, Pair[[]O, E]] {
	checkBounds("RepeatTill", lo, hi)

	return Func[T, S, Pair[[]O, E]](func(in stream.Stream[T, S]) (Pair[[]O, E], error) {
		var out []O

		for {
			cp := in.Checkpoint()

			if len(out) >= lo {
				e, err := end.ParseNext(in)
				if err == nil {
					return Pair[[]O, E]{First: out, Second: e}, nil
				}

				ee := failure(in, err)
				if ee.Kind != outcome.KindBacktrack || len(out) == hi {
					return Pair[[]O, E]{}, ee
				}

				in.Reset(cp)
			}

			elem, err := p.ParseNext(in)
			if err != nil {
				return Pair[[]O, E]{}, err
			}

			if in.OffsetFrom(cp) == 0 {
				noProgress("RepeatTill", cp.Offset())
			}

			out = append(out, elem)
		}
	})
}

// SeparatedFoldl1 parses one or more p separated by sep and folds them from
// the left: "a-b-c" becomes f(f(a, -, b), -, c). The loop ends, with the
// separator unconsumed, when sep or the element after it backtracks.
func SeparatedFoldl1[T, S, O, X any](
	p Parser[T, S, O], sep Parser[T, S, X], f func(x O, op X, y O) O,
) Parser[T, S, O] {
	return Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		var zero O

		acc, err := p.ParseNext(in)
		if err != nil {
			return zero, err
		}

		for {
			cp := in.Checkpoint()

			op, y, ok, err := separatedNext(in, p, sep)
			if err != nil {
				return zero, err
			}

			if !ok {
				in.Reset(cp)

				return acc, nil
			}

			if in.OffsetFrom(cp) == 0 {
				noProgress("SeparatedFoldl1", cp.Offset())
			}

			acc = f(acc, op, y)
		}
	})
}

// SeparatedFoldr1 is like [SeparatedFoldl1] but folds from the right:
// "a^b^c" becomes f(a, ^, f(b, ^, c)).
func SeparatedFoldr1[T, S, O, X any](
	p Parser[T, S, O], sep Parser[T, S, X], f func(x O, op X, y O) O,
) Parser[T, S, O] {
	return Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		var zero O

		first, err := p.ParseNext(in)
		if err != nil {
			return zero, err
		}

		var (
			ops   []X
			elems = []O{first}
		)

		for {
			cp := in.Checkpoint()

			op, y, ok, err := separatedNext(in, p, sep)
			if err != nil {
				return zero, err
			}

			if !ok {
				in.Reset(cp)

				break
			}

			if in.OffsetFrom(cp) == 0 {
				noProgress("SeparatedFoldr1", cp.Offset())
			}

			ops, elems = append(ops, op), append(elems, y)
		}

		acc := elems[len(elems)-1]
		for i := len(ops) - 1; i >= 0; i-- {
			acc = f(elems[i], ops[i], acc)
		}

		return acc, nil
	})
}

// separatedNext parses sep then p. ok is false when either backtracks;
// other failures are returned.
func separatedNext[T, S, O, X any](
	in stream.Stream[T, S], p Parser[T, S, O], sep Parser[T, S, X],
) (op X, y O, ok bool, err error) {
	if op, err = sep.ParseNext(in); err == nil {
		y, err = p.ParseNext(in)
	}

	if err != nil {
		if e := failure(in, err); e.Kind != outcome.KindBacktrack {
			return op, y, false, e
		}

		return op, y, false, nil
	}

	return op, y, true, nil
}
