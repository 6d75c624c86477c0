package parser

import (
	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/stream"
)

// Alt tries each parser in order and returns the first success.
//
// Before each attempt the stream is rewound to where Alt was entered. A
// backtrack moves on to the next alternative. A cut or incomplete result is
// returned immediately without trying the rest.
//
// When every alternative backtracks, the errors are combined with
// [outcome.Merge]: the error detected furthest into the input wins, and on a
// tie the later alternative wins with the expectations of all tied
// alternatives merged in order.
//
// Alt panics with an [*outcome.InvariantError] if given no parsers.
func Alt[T, S, O any](alts ...Parser[T, S, O]) Parser[T, S, O] {
	outcome.Assert(len(alts) > 0, "Alt", "no alternatives")

	return Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		var (
			zero   O
			merged *outcome.Error
		)

		cp := in.Checkpoint()

		for i, p := range alts {
			if i > 0 {
				in.Reset(cp)
			}

			out, err := p.ParseNext(in)
			if err == nil {
				return out, nil
			}

			e := failure(in, err)
			if e.Kind != outcome.KindBacktrack {
				return zero, e
			}

			merged = outcome.Merge(merged, e)
		}

		in.Reset(cp)

		return zero, merged
	})
}

// Opt makes p optional. A backtrack from p becomes an absent result with the
// stream rewound; every other result is returned unchanged.
func Opt[T, S, O any](p Parser[T, S, O]) Parser[T, S, Maybe[O]] {
	return Func[T, S, Maybe[O]](func(in stream.Stream[T, S]) (Maybe[O], error) {
		cp := in.Checkpoint()

		out, err := p.ParseNext(in)
		if err != nil {
			if e := failure(in, err); e.Kind != outcome.KindBacktrack {
				return Maybe[O]{}, e
			}

			in.Reset(cp)

			return Maybe[O]{}, nil
		}

		return Some(out), nil
	})
}

// Cut commits to the current grammar branch: a backtrack from p becomes a
// cut, so no enclosing [Alt] tries another alternative.
//
// Used as an element of a sequence ([Seq2], [Preceded], ...), Cut also
// commits the elements that follow it: once p has matched, their
// backtracks become cuts too.
func Cut[T, S, O any](p Parser[T, S, O]) Parser[T, S, O] {
	return cut[T, S, O]{p: p}
}

type cut[T, S, O any] struct {
	p Parser[T, S, O]
}

func (c cut[T, S, O]) ParseNext(in stream.Stream[T, S]) (O, error) {
	out, err := c.p.ParseNext(in)
	if err != nil {
		return out, failure(in, err).Commit()
	}

	return out, nil
}

func (cut[T, S, O]) commits() bool { return true }

// Backtrack reverses [Cut]: a cut from p becomes a backtrack, allowing an
// enclosing [Alt] to try its remaining alternatives. It does not forward
// commitment, so a sequence element wrapped in Backtrack never commits the
// elements after it.
func Backtrack[T, S, O any](p Parser[T, S, O]) Parser[T, S, O] {
	return Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		out, err := p.ParseNext(in)
		if err != nil {
			return out, failure(in, err).Uncommit()
		}

		return out, nil
	})
}

// Cond runs p only when ok is true, and otherwise succeeds with an absent
// result without consuming input.
func Cond[T, S, O any](ok bool, p Parser[T, S, O]) Parser[T, S, Maybe[O]] {
	return Func[T, S, Maybe[O]](func(in stream.Stream[T, S]) (Maybe[O], error) {
		if !ok {
			return Maybe[O]{}, nil
		}

		out, err := p.ParseNext(in)
		if err != nil {
			return Maybe[O]{}, err
		}

		return Some(out), nil
	})
}

// Permutation runs every parser exactly once, in whatever order the input
// presents them, and returns the outputs in argument order.
//
// Each round tries the parsers not yet matched, in argument order, from the
// same position; the first success is kept. The parsers are greedy: a parser
// earlier in the list takes input a later one could have used. When no
// remaining parser matches, the merged backtrack is returned with the stream
// rewound to the start of that round. A cut or incomplete result is
// returned immediately.
//
// Permutation panics with an [*outcome.InvariantError] if given no parsers.
func Permutation[T, S, O any](ps ...Parser[T, S, O]) Parser[T, S, []O] {
	outcome.Assert(len(ps) > 0, "Permutation", "no parsers")

	return Func[T, S, []O](func(in stream.Stream[T, S]) ([]O, error) {
		out := make([]O, len(ps))

		err := permute(in, len(ps), func(i int) (err error) {
			out[i], err = ps[i].ParseNext(in)

			return err
		})
		if err != nil {
			return nil, err
		}

		return out, nil
	})
}

// Permutation2 is [Permutation] over two parsers of different output types.
func Permutation2[T, S, A, B any](a Parser[T, S, A], b Parser[T, S, B]) Parser[T, S, Pair[A, B]] {
	return Func[T, S, Pair[A, B]](func(in stream.Stream[T, S]) (Pair[A, B], error) {
		var out Pair[A, B]

		err := permute(in, 2, func(i int) (err error) {
			if i == 0 {
				out.First, err = a.ParseNext(in)
			} else {
				out.Second, err = b.ParseNext(in)
			}

			return err
		})
		if err != nil {
			return Pair[A, B]{}, err
		}

		return out, nil
	})
}

// Permutation3 is [Permutation] over three parsers of different output
// types.
func Permutation3[T, S, A, B, C any](
	a Parser[T, S, A], b Parser[T, S, B], c Parser[T, S, C],
) Parser[T, S, Triple[A, B, C]] {
	return Func[T, S, Triple[A, B, C]](func(in stream.Stream[T, S]) (Triple[A, B, C], error) {
		var out Triple[A, B, C]

		err := permute(in, 3, func(i int) (err error) {
			switch i {
			case 0:
				out.First, err = a.ParseNext(in)
			case 1:
				out.Second, err = b.ParseNext(in)
			default:
				out.Third, err = c.ParseNext(in)
			}

			return err
		})
		if err != nil {
			return Triple[A, B, C]{}, err
		}

		return out, nil
	})
}

// permute drives a permutation of n parsers; run(i) runs parser i.
func permute[T, S any](in stream.Stream[T, S], n int, run func(i int) error) error {
	done := make([]bool, n)

	for range n {
		var merged *outcome.Error

		cp := in.Checkpoint()
		matched := false

		for i := range n {
			if done[i] {
				continue
			}

			in.Reset(cp)

			err := run(i)
			if err == nil {
				done[i], matched = true, true

				break
			}

			e := failure(in, err)
			if e.Kind != outcome.KindBacktrack {
				return e
			}

			merged = outcome.Merge(merged, e)
		}

		if !matched {
			in.Reset(cp)

			return merged
		}
	}

	return nil
}

// Dispatch runs key and then the parser that cases maps its output to,
// falling back to def. With no match and a nil def, Dispatch backtracks at
// the offset where key began.
//
// key consumes what it matches; wrap it in [Peek] to leave the token for
// the selected parser. Dispatch selects in one lookup where [Alt] would try
// each alternative in turn.
func Dispatch[T, S any, K comparable, O any](
	key Parser[T, S, K], cases map[K]Parser[T, S, O], def Parser[T, S, O],
) Parser[T, S, O] {
	return Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		var zero O

		cp := in.Checkpoint()

		k, err := key.ParseNext(in)
		if err != nil {
			return zero, err
		}

		p, ok := cases[k]
		if !ok {
			p = def
		}

		if p == nil {
			in.Reset(cp)

			return zero, outcome.Backtrack(cp.Offset())
		}

		return p.ParseNext(in)
	})
}
