package stream

import (
	"github.com/ardnew/knit/outcome"
)

// Mode tells whether a stream holds all of its input.
type Mode uint8

const (
	// Complete streams will never receive more data.
	Complete Mode = iota
	// Partial streams may grow; reaching their end is not a mismatch.
	Partial
)

// String returns "complete" or "partial".
func (m Mode) String() string {
	if m == Partial {
		return "partial"
	}

	return "complete"
}

// Match is the result of comparing a literal against the head of a stream.
type Match uint8

const (
	// Mismatch means the literal cannot match at the cursor.
	Mismatch Match = iota
	// Matched means the literal is a prefix of the remaining input.
	Matched
	// NeedMore means the remaining input is a proper prefix of the literal
	// and the stream is partial.
	NeedMore
)

// Stream is a cursor over an ordered sequence of tokens of type T, whose
// contiguous runs are represented by slices of type S.
//
// Offsets are measured in the stream's buffer units: bytes for [Bytes] and
// [Text], bits for [Bits]. A [Text] token (a rune) may span several units.
//
// A Stream is not safe for concurrent use.
type Stream[T, S any] interface {
	// Mode reports whether the stream is complete or partial.
	Mode() Mode
	// IsPartial is shorthand for Mode() == Partial.
	IsPartial() bool
	// Offset returns the absolute offset of the cursor.
	Offset() int
	// Len returns the number of units remaining after the cursor.
	Len() int

	// PeekToken returns the next token without advancing. ok is false at
	// the end of the available input: in Complete mode no token will ever
	// arrive; in Partial mode more data is needed (amount unknown).
	PeekToken() (tok T, ok bool)
	// NextToken is PeekToken followed by advancing past the token.
	NextToken() (tok T, ok bool)

	// PeekSlice returns the next n units without advancing. With fewer than
	// n units remaining it returns a backtrack error caused by
	// [outcome.ErrUnexpectedEOF] in Complete mode, or an incomplete error
	// needing the shortfall in Partial mode.
	PeekSlice(n int) (S, error)
	// NextSlice is PeekSlice followed by advancing past the slice.
	NextSlice(n int) (S, error)

	// Checkpoint captures the cursor.
	Checkpoint() Checkpoint
	// Reset restores the cursor captured by cp, which must have been taken
	// from this stream.
	Reset(cp Checkpoint)
	// OffsetFrom returns the number of units consumed since cp.
	OffsetFrom(cp Checkpoint) int
	// SliceFrom returns the units between cp and the cursor. The result
	// aliases the stream's buffer.
	SliceFrom(cp Checkpoint) S

	// Compare tests whether lit is a prefix of the remaining input and
	// returns the literal's length in units.
	Compare(lit S) (Match, int)
	// FindSlice returns the offset of the first occurrence of lit in the
	// remaining input relative to the cursor, or -1.
	FindSlice(lit S) int
}

// Checkpoint is an opaque snapshot of one stream's cursor.
// The zero value is not a valid checkpoint.
type Checkpoint struct {
	owner  any
	offset int
}

// Offset returns the absolute offset captured by the checkpoint.
func (c Checkpoint) Offset() int { return c.offset }

// checkpoint is shared by the concrete streams.
func checkpoint(owner any, offset int) Checkpoint {
	return Checkpoint{owner: owner, offset: offset}
}

// restore validates cp against its owner and the retained window
// [base, end] and returns the position of cp relative to base.
func restore(owner any, cp Checkpoint, base, end int, op string) int {
	switch {
	case cp.owner == nil:
		outcome.Violate(op, "zero checkpoint")
	case cp.owner != owner:
		outcome.Violate(op, "checkpoint taken from another stream")
	case cp.offset < base || cp.offset > end:
		outcome.Violate(op, "checkpoint offset %d outside retained input [%d, %d]",
			cp.offset, base, end)
	}

	return cp.offset - base
}

// short builds the error returned when fewer than want units remain.
func short(mode Mode, offset, have, want int) error {
	if mode == Partial {
		return outcome.Incomplete(offset, outcome.Size(want-have))
	}

	return outcome.Backtrack(offset).WithCause(outcome.ErrUnexpectedEOF)
}

// compare implements the Match decision shared by the concrete streams.
// full reports whether rest starts with lit; partial reports whether rest is
// a proper prefix of lit.
func compare(mode Mode, full, partial bool) Match {
	switch {
	case full:
		return Matched
	case partial && mode == Partial:
		return NeedMore
	default:
		return Mismatch
	}
}
