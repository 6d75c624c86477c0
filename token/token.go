// Package token provides leaf parsers that match individual tokens and runs
// of tokens on any [stream.Stream].
//
// Slice outputs alias the stream's buffer. On a partial stream, reaching the
// end of the buffered input before a decision can be made reports
// incomplete instead of a mismatch.
package token

import (
	"fmt"
	"slices"

	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/stream"
)

// exhausted reports running out of input at the cursor: incomplete (amount
// unknown) on a partial stream and a backtrack expecting desc otherwise.
func exhausted[T, S any](in stream.Stream[T, S], desc string) *outcome.Error {
	if in.IsPartial() {
		return outcome.Incomplete(in.Offset(), outcome.Unknown)
	}

	return outcome.Backtrack(in.Offset()).
		WithCause(outcome.ErrUnexpectedEOF).
		Expect(desc)
}

// Any consumes and returns one token.
func Any[T, S any]() parser.Parser[T, S, T] {
	return parser.Func[T, S, T](func(in stream.Stream[T, S]) (T, error) {
		tok, ok := in.NextToken()
		if !ok {
			return tok, exhausted(in, "any token")
		}

		return tok, nil
	})
}

// Satisfy consumes one token accepted by pred. desc names the expected
// token class in errors.
func Satisfy[T, S any](desc string, pred func(T) bool) parser.Parser[T, S, T] {
	return parser.Func[T, S, T](func(in stream.Stream[T, S]) (T, error) {
		tok, ok := in.PeekToken()
		if !ok {
			return tok, exhausted(in, desc)
		}

		if !pred(tok) {
			var zero T

			return zero, outcome.Backtrack(in.Offset()).Expect(desc)
		}

		in.NextToken()

		return tok, nil
	})
}

// OneOf consumes one token from set.
func OneOf[T comparable, S any](set ...T) parser.Parser[T, S, T] {
	return Satisfy[T, S](describe("one of", set), func(t T) bool {
		return slices.Contains(set, t)
	})
}

// NoneOf consumes one token not in set.
func NoneOf[T comparable, S any](set ...T) parser.Parser[T, S, T] {
	return Satisfy[T, S](describe("none of", set), func(t T) bool {
		return !slices.Contains(set, t)
	})
}

func describe[T any](what string, set []T) string {
	switch set := any(set).(type) {
	case []rune:
		return what + " " + fmt.Sprintf("%q", string(set))
	case []byte:
		return what + " " + fmt.Sprintf("%q", set)
	}

	return fmt.Sprintf("%s %v", what, set)
}

// Literal matches lit exactly and returns the matched input.
func Literal[T, S any](lit S) parser.Parser[T, S, S] {
	desc := fmt.Sprintf("%q", any(lit))

	return parser.Func[T, S, S](func(in stream.Stream[T, S]) (S, error) {
		var zero S

		switch m, n := in.Compare(lit); m {
		case stream.Matched:
			return in.NextSlice(n)
		case stream.NeedMore:
			return zero, outcome.Incomplete(in.Offset(), outcome.Size(n-in.Len()))
		default:
			return zero, outcome.Backtrack(in.Offset()).Expect(desc)
		}
	})
}

// Take consumes exactly n units.
func Take[T, S any](n int) parser.Parser[T, S, S] {
	return parser.Func[T, S, S](func(in stream.Stream[T, S]) (S, error) {
		return in.NextSlice(n)
	})
}

// TakeWhile consumes the longest run of tokens accepted by pred, possibly
// empty.
func TakeWhile[T, S any](pred func(T) bool) parser.Parser[T, S, S] {
	return TakeWhileMN[T, S](0, parser.Unbounded, pred)
}

// TakeWhile1 is like [TakeWhile] but requires at least one token.
func TakeWhile1[T, S any](pred func(T) bool) parser.Parser[T, S, S] {
	return TakeWhileMN[T, S](1, parser.Unbounded, pred)
}

// TakeWhileMN consumes between lo and hi tokens accepted by pred, as many as
// possible.
//
// On a partial stream, running out of buffered input before hi tokens or a
// rejected token is seen reports incomplete, since more matching tokens may
// still arrive.
func TakeWhileMN[T, S any](lo, hi int, pred func(T) bool) parser.Parser[T, S, S] {
	if lo < 0 || lo > hi {
		outcome.Violate("TakeWhileMN", "invalid bounds [%d, %d]", lo, hi)
	}

	return parser.Func[T, S, S](func(in stream.Stream[T, S]) (S, error) {
		var zero S

		cp := in.Checkpoint()

		n := 0
		for n < hi {
			tok, ok := in.PeekToken()
			if !ok {
				if in.IsPartial() {
					return zero, outcome.Incomplete(in.Offset(), outcome.Unknown)
				}

				break
			}

			if !pred(tok) {
				break
			}

			in.NextToken()

			n++
		}

		if n < lo {
			e := outcome.Backtrack(in.Offset())
			if in.Len() == 0 {
				e.WithCause(outcome.ErrUnexpectedEOF)
			}

			in.Reset(cp)

			return zero, e
		}

		return in.SliceFrom(cp), nil
	})
}

// TakeTill consumes tokens up to the first token accepted by pred, possibly
// none.
func TakeTill[T, S any](pred func(T) bool) parser.Parser[T, S, S] {
	return TakeWhile[T, S](func(t T) bool { return !pred(t) })
}

// TakeTill1 is like [TakeTill] but requires at least one token.
func TakeTill1[T, S any](pred func(T) bool) parser.Parser[T, S, S] {
	return TakeWhile1[T, S](func(t T) bool { return !pred(t) })
}

// TakeUntil consumes input up to, but not including, the first occurrence
// of lit.
func TakeUntil[T, S any](lit S) parser.Parser[T, S, S] {
	desc := fmt.Sprintf("%q", any(lit))

	return parser.Func[T, S, S](func(in stream.Stream[T, S]) (S, error) {
		i := in.FindSlice(lit)
		if i < 0 {
			var zero S

			if in.IsPartial() {
				return zero, outcome.Incomplete(in.Offset(), outcome.Unknown)
			}

			return zero, outcome.Backtrack(in.Offset()).
				WithCause(outcome.ErrUnexpectedEOF).
				Expect(desc)
		}

		return in.NextSlice(i)
	})
}

// Rest consumes and returns all buffered input.
func Rest[T, S any]() parser.Parser[T, S, S] {
	return parser.Rest[T, S]()
}
