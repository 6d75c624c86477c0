package parser

import (
	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/stream"
)

// Parser consumes input from a stream and produces a value of type O.
//
// On success the stream is advanced exactly past the consumed input and the
// error is nil. On failure the error is an [*outcome.Error] (or any error,
// which is read as a backtrack) and the stream position is unspecified;
// combinators that need to retry take a checkpoint first.
//
// A Parser holds only construction-time configuration. It never retains
// stream-derived state between calls, so one Parser may be used on many
// streams, including concurrently on distinct streams.
type Parser[T, S, O any] interface {
	ParseNext(in stream.Stream[T, S]) (O, error)
}

// Func adapts an ordinary function to the [Parser] interface.
type Func[T, S, O any] func(in stream.Stream[T, S]) (O, error)

// ParseNext implements [Parser].
func (f Func[T, S, O]) ParseNext(in stream.Stream[T, S]) (O, error) {
	return f(in)
}

// Parse runs p over the whole of a complete stream.
//
// Input left over after p succeeds is reported as a backtrack at the first
// unconsumed offset with cause [outcome.ErrTrailingData]. Since no further
// input can arrive, an incomplete result is converted into a backtrack.
//
// Parse panics with an [*outcome.InvariantError] if in is partial.
func Parse[T, S, O any](p Parser[T, S, O], in stream.Stream[T, S]) (O, error) {
	out, err := ParsePrefix(p, in)
	if err != nil {
		return out, err
	}

	if in.Len() > 0 {
		var zero O

		return zero, trailing(in.Offset())
	}

	return out, nil
}

// ParsePrefix is like [Parse] but permits p to leave input unconsumed.
func ParsePrefix[T, S, O any](p Parser[T, S, O], in stream.Stream[T, S]) (O, error) {
	outcome.Assert(!in.IsPartial(), "Parse", "stream is partial; use ParsePartial")

	out, err := p.ParseNext(in)
	if err != nil {
		var zero O

		return zero, outcome.From(err, in.Offset()).Complete()
	}

	return out, nil
}

// ParseBytes runs p over all of b.
func ParseBytes[O any](p Parser[byte, []byte, O], b []byte) (O, error) {
	return Parse(p, stream.NewBytes(b))
}

// ParseString runs p over all of s.
func ParseString[O any](p Parser[rune, string, O], s string) (O, error) {
	return Parse(p, stream.NewText(s))
}

// ParsePartial runs p over a partial stream.
//
// When p needs more input, the stream is rewound to where the call began and
// the incomplete error is returned. The caller appends data (or finishes the
// stream) and calls ParsePartial again with the same stream. Any other
// result is returned as is.
//
// ParsePartial panics with an [*outcome.InvariantError] if in is complete.
// Once the producer is exhausted, finish the stream and use [Parse].
func ParsePartial[T, S, O any](p Parser[T, S, O], in stream.Stream[T, S]) (O, error) {
	outcome.Assert(in.IsPartial(), "ParsePartial", "stream is complete; use Parse")

	cp := in.Checkpoint()

	out, err := p.ParseNext(in)
	if err != nil {
		e := outcome.From(err, in.Offset())
		if e.Kind == outcome.KindIncomplete {
			in.Reset(cp)
		}

		var zero O

		return zero, e
	}

	return out, nil
}

func trailing(offset int) *outcome.Error {
	return outcome.Backtrack(offset).
		WithCause(outcome.ErrTrailingData).
		Expect("end of input")
}

// failure normalizes err, reading foreign errors as a backtrack at the
// stream's current offset.
func failure[T, S any](in stream.Stream[T, S], err error) *outcome.Error {
	return outcome.From(err, in.Offset())
}
