package parser

import (
	"iter"

	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/stream"
)

// Iterator applies a parser repeatedly to one stream.
type Iterator[T, S, O any] struct {
	p   Parser[T, S, O]
	in  stream.Stream[T, S]
	err error
}

// Iterate returns an [Iterator] that applies p to in until it fails.
func Iterate[T, S, O any](p Parser[T, S, O], in stream.Stream[T, S]) *Iterator[T, S, O] {
	return &Iterator[T, S, O]{p: p, in: in}
}

// All yields each output of the parser.
//
// Iteration stops at the first failure. A backtrack rewinds the stream to
// before the failed attempt and is not reported by [Iterator.Err]; any other
// failure is. A success that consumed no input panics with an
// [*outcome.InvariantError].
func (it *Iterator[T, S, O]) All() iter.Seq[O] {
	return func(yield func(O) bool) {
		for it.err == nil {
			cp := it.in.Checkpoint()

			out, err := it.p.ParseNext(it.in)
			if err != nil {
				e := failure(it.in, err)
				if e.Kind == outcome.KindBacktrack {
					it.in.Reset(cp)

					return
				}

				if e.Kind == outcome.KindIncomplete {
					it.in.Reset(cp)
				}

				it.err = e

				return
			}

			if it.in.OffsetFrom(cp) == 0 {
				noProgress("Iterator", cp.Offset())
			}

			if !yield(out) {
				return
			}
		}
	}
}

// Err returns the failure that ended iteration, other than a backtrack.
// An incomplete error leaves the stream at the start of the unfinished item,
// so iteration may resume after more input is appended.
func (it *Iterator[T, S, O]) Err() error { return it.err }

// Resume clears an incomplete error so that iteration can continue.
func (it *Iterator[T, S, O]) Resume() {
	if outcome.IsIncomplete(it.err) {
		it.err = nil
	}
}
