package parser

import (
	"sync"

	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/stream"
)

// Context labels the grammar rule p parses. Any failure from p gets a
// [outcome.Frame] with label and the offset where p was entered. The kind of
// the failure is unchanged, and a [Cut] inside p still commits the sequence
// around Context (see [Forward]).
func Context[T, S, O any](label string, p Parser[T, S, O]) Parser[T, S, O] {
	return Forward(p, Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		entry := in.Offset()

		out, err := p.ParseNext(in)
		if err != nil {
			return out, failure(in, err).AddContext(entry, label)
		}

		return out, nil
	}))
}

// Expect replaces the expectations of a failure detected where p was entered
// with desc. Failures deeper in the input keep their own expectations.
func Expect[T, S, O any](desc string, p Parser[T, S, O]) Parser[T, S, O] {
	return Forward(p, Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		entry := in.Offset()

		out, err := p.ParseNext(in)
		if err != nil {
			e := failure(in, err)
			if e.Offset == entry {
				e.Expected = []string{desc}
			}

			return out, e
		}

		return out, nil
	}))
}

// Map applies f to the output of p.
func Map[T, S, O, U any](p Parser[T, S, O], f func(O) U) Parser[T, S, U] {
	return Forward(p, Func[T, S, U](func(in stream.Stream[T, S]) (U, error) {
		out, err := p.ParseNext(in)
		if err != nil {
			var zero U

			return zero, err
		}

		return f(out), nil
	}))
}

// TryMap applies a fallible f to the output of p. An error from f becomes a
// backtrack at the offset where p was entered, with that error as its cause.
func TryMap[T, S, O, U any](p Parser[T, S, O], f func(O) (U, error)) Parser[T, S, U] {
	return Forward(p, Func[T, S, U](func(in stream.Stream[T, S]) (U, error) {
		var zero U

		cp := in.Checkpoint()

		out, err := p.ParseNext(in)
		if err != nil {
			return zero, err
		}

		u, err := f(out)
		if err != nil {
			in.Reset(cp)

			return zero, outcome.Backtrack(cp.Offset()).WithCause(err)
		}

		return u, nil
	}))
}

// Verify fails with a backtrack at the offset where p was entered if pred
// rejects the output of p.
func Verify[T, S, O any](p Parser[T, S, O], pred func(O) bool) Parser[T, S, O] {
	return Forward(p, Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		cp := in.Checkpoint()

		out, err := p.ParseNext(in)
		if err != nil {
			return out, err
		}

		if !pred(out) {
			var zero O

			in.Reset(cp)

			return zero, outcome.Backtrack(cp.Offset()).WithCause(outcome.ErrVerify)
		}

		return out, nil
	}))
}

// Value returns v when p succeeds.
func Value[T, S, O, V any](v V, p Parser[T, S, O]) Parser[T, S, V] {
	return Map(p, func(O) V { return v })
}

// Void discards the output of p.
func Void[T, S, O any](p Parser[T, S, O]) Parser[T, S, struct{}] {
	return Value(struct{}{}, p)
}

// Recognize returns the input consumed by p instead of its output.
// The slice aliases the stream's buffer.
func Recognize[T, S, O any](p Parser[T, S, O]) Parser[T, S, S] {
	return Forward(p, Func[T, S, S](func(in stream.Stream[T, S]) (S, error) {
		cp := in.Checkpoint()

		if _, err := p.ParseNext(in); err != nil {
			var zero S

			return zero, err
		}

		return in.SliceFrom(cp), nil
	}))
}

// WithRecognized returns both the input consumed by p and its output.
func WithRecognized[T, S, O any](p Parser[T, S, O]) Parser[T, S, Pair[S, O]] {
	return Forward(p, Func[T, S, Pair[S, O]](func(in stream.Stream[T, S]) (Pair[S, O], error) {
		cp := in.Checkpoint()

		out, err := p.ParseNext(in)
		if err != nil {
			return Pair[S, O]{}, err
		}

		return Pair[S, O]{First: in.SliceFrom(cp), Second: out}, nil
	}))
}

// Span returns the offsets of the input consumed by p.
func Span[T, S, O any](p Parser[T, S, O]) Parser[T, S, Range] {
	return Map(WithSpan(p), func(v Pair[O, Range]) Range { return v.Second })
}

// WithSpan returns the output of p and the offsets of the input it consumed.
func WithSpan[T, S, O any](p Parser[T, S, O]) Parser[T, S, Pair[O, Range]] {
	return Forward(p, Func[T, S, Pair[O, Range]](func(in stream.Stream[T, S]) (Pair[O, Range], error) {
		start := in.Offset()

		out, err := p.ParseNext(in)
		if err != nil {
			return Pair[O, Range]{}, err
		}

		return Pair[O, Range]{First: out, Second: Range{Start: start, End: in.Offset()}}, nil
	}))
}

// AndThen runs inner over the slice produced by p, using open to build a
// complete stream over that slice. Offsets in errors from inner are
// translated back into the outer stream.
func AndThen[T, S, O any](
	p Parser[T, S, S], open func(S) stream.Stream[T, S], inner Parser[T, S, O],
) Parser[T, S, O] {
	return Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		var zero O

		slice, err := p.ParseNext(in)
		if err != nil {
			return zero, err
		}

		sub := open(slice)
		start := in.Offset() - sub.Len()

		out, err := inner.ParseNext(sub)
		if err != nil {
			e := failure(sub, err).Complete()

			e.Offset += start
			for i := range e.Context {
				e.Context[i].Offset += start
			}

			return zero, e
		}

		return out, nil
	})
}

// FlatMap runs p and then the parser that f builds from its output.
func FlatMap[T, S, O, U any](p Parser[T, S, O], f func(O) Parser[T, S, U]) Parser[T, S, U] {
	return Func[T, S, U](func(in stream.Stream[T, S]) (U, error) {
		out, err := p.ParseNext(in)
		if err != nil {
			var zero U

			return zero, err
		}

		return f(out).ParseNext(in)
	})
}

// Peek runs p and rewinds, returning its output without consuming input.
func Peek[T, S, O any](p Parser[T, S, O]) Parser[T, S, O] {
	return Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		cp := in.Checkpoint()

		out, err := p.ParseNext(in)
		if err != nil {
			return out, err
		}

		in.Reset(cp)

		return out, nil
	})
}

// Not succeeds without consuming input when p backtracks, and backtracks
// with cause [outcome.ErrNot] when p succeeds. Other failures of p are
// returned unchanged.
func Not[T, S, O any](p Parser[T, S, O]) Parser[T, S, struct{}] {
	return Func[T, S, struct{}](func(in stream.Stream[T, S]) (struct{}, error) {
		cp := in.Checkpoint()

		_, err := p.ParseNext(in)
		if err == nil {
			in.Reset(cp)

			return struct{}{}, outcome.Backtrack(cp.Offset()).WithCause(outcome.ErrNot)
		}

		if e := failure(in, err); e.Kind != outcome.KindBacktrack {
			return struct{}{}, e
		}

		in.Reset(cp)

		return struct{}{}, nil
	})
}

// Complete converts an incomplete result of p into a backtrack. Use it
// around parsers that must decide with the data already buffered.
func Complete[T, S, O any](p Parser[T, S, O]) Parser[T, S, O] {
	return Forward(p, Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		out, err := p.ParseNext(in)
		if err != nil {
			return out, failure(in, err).Complete()
		}

		return out, nil
	}))
}

// AllConsuming requires p to consume all remaining input. Leftover input is
// a backtrack with cause [outcome.ErrTrailingData]. On a partial stream
// that p exhausted, more input could still arrive, so the result is
// incomplete.
func AllConsuming[T, S, O any](p Parser[T, S, O]) Parser[T, S, O] {
	return Terminated(p, Eof[T, S]())
}

// Lazy defers building a parser until its first use, which allows
// recursive grammars. build is called at most once. The built parser's
// commitment is forwarded like that of [Context].
func Lazy[T, S, O any](build func() Parser[T, S, O]) Parser[T, S, O] {
	return lazy[T, S, O]{get: sync.OnceValue(build)}
}

type lazy[T, S, O any] struct {
	get func() Parser[T, S, O]
}

func (l lazy[T, S, O]) ParseNext(in stream.Stream[T, S]) (O, error) {
	return l.get().ParseNext(in)
}

func (l lazy[T, S, O]) commits() bool { return Commits(l.get()) }

// Eof succeeds only at the end of input. On a partial stream with nothing
// buffered it reports incomplete, since more input may still arrive.
func Eof[T, S any]() Parser[T, S, struct{}] {
	return Func[T, S, struct{}](func(in stream.Stream[T, S]) (struct{}, error) {
		switch {
		case in.Len() > 0:
			return struct{}{}, trailing(in.Offset())
		case in.IsPartial():
			return struct{}{}, outcome.Incomplete(in.Offset(), outcome.Unknown)
		}

		return struct{}{}, nil
	})
}

// Empty always succeeds without consuming input.
func Empty[T, S any]() Parser[T, S, struct{}] {
	return Succeed[T, S](struct{}{})
}

// Succeed always succeeds with v without consuming input.
func Succeed[T, S, O any](v O) Parser[T, S, O] {
	return Func[T, S, O](func(stream.Stream[T, S]) (O, error) { return v, nil })
}

// Fail always backtracks with cause [outcome.ErrFail].
func Fail[T, S, O any]() Parser[T, S, O] {
	return Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		var zero O

		return zero, outcome.Backtrack(in.Offset()).WithCause(outcome.ErrFail)
	})
}

// Rest consumes and returns all buffered input.
func Rest[T, S any]() Parser[T, S, S] {
	return Func[T, S, S](func(in stream.Stream[T, S]) (S, error) {
		return in.NextSlice(in.Len())
	})
}

// RestLen returns the amount of buffered input without consuming it.
func RestLen[T, S any]() Parser[T, S, int] {
	return Func[T, S, int](func(in stream.Stream[T, S]) (int, error) {
		return in.Len(), nil
	})
}
