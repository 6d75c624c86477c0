package parser

import (
	"slices"

	"github.com/ardnew/knit/stream"
)

// Sequencing combinators run their parsers one after another and stop at the
// first failure, returning it unchanged, unless an earlier element of the
// sequence was wrapped in [Cut], directly or through wrappers such as
// [Context] and [Map] that forward it. Once a cut element has matched,
// failures of the elements after it are committed.

// committer is implemented by parsers that commit the rest of an enclosing
// sequence once they succeed.
type committer interface{ commits() bool }

// Commits reports whether p commits the rest of an enclosing sequence once it
// matches. That holds for a [Cut] and for any wrapper built with [Forward]
// around a parser that commits.
//
// Commitment is resolved when an element after p fails, not when the
// sequence is built, so a [Lazy] parser is inspected only after it exists.
func Commits(p any) bool {
	c, ok := p.(committer)

	return ok && c.commits()
}

// Forward returns q marked to commit an enclosing sequence whenever inner
// does. Wrappers that run inner once and return its failures with their kind
// unchanged use it so that a [Cut] inside them keeps committing the sequence
// around them.
//
// Sequences, [Alt], [Opt], and the repetition family do not forward: a Cut
// commits only the sequence it is an element of.
func Forward[T, S, O, I any](inner Parser[T, S, I], q Parser[T, S, O]) Parser[T, S, O] {
	return forward[T, S, O, I]{q: q, inner: inner}
}

type forward[T, S, O, I any] struct {
	q     Parser[T, S, O]
	inner Parser[T, S, I]
}

func (f forward[T, S, O, I]) ParseNext(in stream.Stream[T, S]) (O, error) {
	return f.q.ParseNext(in)
}

func (f forward[T, S, O, I]) commits() bool { return Commits(f.inner) }

// seqFail returns err, committed if a cut element preceded the failed one.
func seqFail[T, S any](in stream.Stream[T, S], err error, committed bool) error {
	if committed {
		return failure(in, err).Commit()
	}

	return err
}

// Seq2 runs a then b.
func Seq2[T, S, A, B any](
	a Parser[T, S, A], b Parser[T, S, B],
) Parser[T, S, Pair[A, B]] {
	return Func[T, S, Pair[A, B]](func(in stream.Stream[T, S]) (Pair[A, B], error) {
		var out Pair[A, B]

		var err error

		if out.First, err = a.ParseNext(in); err != nil {
			return Pair[A, B]{}, err
		}

		if out.Second, err = b.ParseNext(in); err != nil {
			return Pair[A, B]{}, seqFail(in, err, Commits(a))
		}

		return out, nil
	})
}

// Seq3 runs a, b, then c.
func Seq3[T, S, A, B, C any](
	a Parser[T, S, A], b Parser[T, S, B], c Parser[T, S, C],
) Parser[T, S, Triple[A, B, C]] {
	return Func[T, S, Triple[A, B, C]](func(in stream.Stream[T, S]) (Triple[A, B, C], error) {
		var o Triple[A, B, C]

		var err error

		if o.First, err = a.ParseNext(in); err != nil {
			return Triple[A, B, C]{}, err
		}

		if o.Second, err = b.ParseNext(in); err != nil {
			return Triple[A, B, C]{}, seqFail(in, err, Commits(a))
		}

		if o.Third, err = c.ParseNext(in); err != nil {
			return Triple[A, B, C]{}, seqFail(in, err, Commits(a) || Commits(b))
		}

		return o, nil
	})
}

// Seq4 runs a, b, c, then d.
func Seq4[T, S, A, B, C, D any](
	a Parser[T, S, A], b Parser[T, S, B], c Parser[T, S, C], d Parser[T, S, D],
) Parser[T, S, Quad[A, B, C, D]] {
	return Func[T, S, Quad[A, B, C, D]](func(in stream.Stream[T, S]) (Quad[A, B, C, D], error) {
		var o Quad[A, B, C, D]

		var err error

		if o.First, err = a.ParseNext(in); err != nil {
			return Quad[A, B, C, D]{}, err
		}

		if o.Second, err = b.ParseNext(in); err != nil {
			return Quad[A, B, C, D]{}, seqFail(in, err, Commits(a))
		}

		if o.Third, err = c.ParseNext(in); err != nil {
			return Quad[A, B, C, D]{}, seqFail(in, err, Commits(a) || Commits(b))
		}

		if o.Fourth, err = d.ParseNext(in); err != nil {
			return Quad[A, B, C, D]{}, seqFail(in, err, Commits(a) || Commits(b) || Commits(c))
		}

		return o, nil
	})
}

// Seq runs each parser in order and collects their outputs.
func Seq[T, S, O any](ps ...Parser[T, S, O]) Parser[T, S, []O] {
	return Func[T, S, []O](func(in stream.Stream[T, S]) ([]O, error) {
		out := make([]O, 0, len(ps))
		for i, p := range ps {
			o, err := p.ParseNext(in)
			if err != nil {
				return nil, seqFail(in, err, slices.ContainsFunc(ps[:i], func(p Parser[T, S, O]) bool {
					return Commits(p)
				}))
			}

			out = append(out, o)
		}

		return out, nil
	})
}

// Preceded runs prefix then p and returns the output of p.
func Preceded[T, S, A, O any](prefix Parser[T, S, A], p Parser[T, S, O]) Parser[T, S, O] {
	return Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		var zero O

		if _, err := prefix.ParseNext(in); err != nil {
			return zero, err
		}

		out, err := p.ParseNext(in)
		if err != nil {
			return zero, seqFail(in, err, Commits(prefix))
		}

		return out, nil
	})
}

// Terminated runs p then suffix and returns the output of p.
func Terminated[T, S, O, B any](p Parser[T, S, O], suffix Parser[T, S, B]) Parser[T, S, O] {
	return Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		var zero O

		out, err := p.ParseNext(in)
		if err != nil {
			return zero, err
		}

		if _, err := suffix.ParseNext(in); err != nil {
			return zero, seqFail(in, err, Commits(p))
		}

		return out, nil
	})
}

// Delimited runs left, p, then right and returns the output of p.
func Delimited[T, S, A, O, B any](
	left Parser[T, S, A], p Parser[T, S, O], right Parser[T, S, B],
) Parser[T, S, O] {
	return Map(Seq3(left, p, right), func(t Triple[A, O, B]) O { return t.Second })
}

// SeparatedPair runs a, sep, then b and returns the outputs of a and b.
func SeparatedPair[T, S, A, X, B any](
	a Parser[T, S, A], sep Parser[T, S, X], b Parser[T, S, B],
) Parser[T, S, Pair[A, B]] {
	return Map(Seq3(a, sep, b), func(t Triple[A, X, B]) Pair[A, B] {
		return Pair[A, B]{First: t.First, Second: t.Third}
	})
}
