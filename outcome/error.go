package outcome

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Sentinel causes attached by the engine and its leaf collaborators.
var (
	ErrUnexpectedEOF = errors.New("unexpected end of input")
	ErrTrailingData  = errors.New("trailing data")
	ErrVerify        = errors.New("predicate verification failed")
	ErrNot           = errors.New("negated parser matched")
	ErrFail          = errors.New("parser always fails")
)

// Frame is a context annotation recorded while an error propagates.
type Frame struct {
	Label  string
	Offset int // offset where the annotated parser was entered
}

// Error is the failure value produced by parsers.
type Error struct {
	Cause    error    // domain payload, opaque to the engine
	Expected []string // ordered, de-duplicated
	Context  []Frame  // innermost first
	Offset   int
	Needed   Needed
	Kind     Kind
}

// New returns an [Error] of the given kind detected at offset.
func New(kind Kind, offset int) *Error {
	return &Error{Kind: kind, Offset: offset}
}

// Backtrack returns a recoverable mismatch detected at offset.
func Backtrack(offset int) *Error { return New(KindBacktrack, offset) }

// Cut returns a confirmed failure detected at offset.
func Cut(offset int) *Error { return New(KindCut, offset) }

// Incomplete returns a needs-more-data error at offset.
func Incomplete(offset int, needed Needed) *Error {
	e := New(KindIncomplete, offset)
	e.Needed = needed

	return e
}

// From converts err into an [*Error].
//
// A nil err yields nil. An error that is (or wraps) an [*Error] is returned
// as that value. Any other error becomes a backtrack at offset with err as
// its cause.
func From(err error, offset int) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return Backtrack(offset).WithCause(err)
}

// KindOf returns the [Kind] of err, treating foreign errors as
// [KindBacktrack]. It returns zero for a nil error.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindBacktrack
}

// IsBacktrack reports whether err is a recoverable mismatch.
func IsBacktrack(err error) bool { return KindOf(err) == KindBacktrack }

// IsCut reports whether err is a confirmed failure.
func IsCut(err error) bool { return KindOf(err) == KindCut }

// IsIncomplete reports whether err requests more input.
func IsIncomplete(err error) bool { return KindOf(err) == KindIncomplete }

// WithCause attaches an externally produced error as the domain payload.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err

	return e
}

// Expect records descriptions of what would have matched at the failure.
// Duplicates are ignored and order is preserved.
func (e *Error) Expect(desc ...string) *Error {
	for _, d := range desc {
		if d != "" && !slices.Contains(e.Expected, d) {
			e.Expected = append(e.Expected, d)
		}
	}

	return e
}

// AddContext appends a context frame. The kind is unchanged.
func (e *Error) AddContext(offset int, label string) *Error {
	e.Context = append(e.Context, Frame{Label: label, Offset: offset})

	return e
}

// Commit promotes a backtrack into a cut. Other kinds are unchanged.
func (e *Error) Commit() *Error {
	if e.Kind == KindBacktrack {
		e.Kind = KindCut
	}

	return e
}

// Uncommit demotes a cut into a backtrack. Other kinds are unchanged.
func (e *Error) Uncommit() *Error {
	if e.Kind == KindCut {
		e.Kind = KindBacktrack
	}

	return e
}

// Complete converts an incomplete error into a backtrack, for use when no
// further input will ever arrive. Other kinds are unchanged.
func (e *Error) Complete() *Error {
	if e.Kind == KindIncomplete {
		e.Kind = KindBacktrack
		e.Needed = Unknown

		if e.Cause == nil {
			e.Cause = ErrUnexpectedEOF
		}
	}

	return e
}

// Merge combines the errors of two failed alternatives tried in order.
//
// The error detected furthest into the input wins. When both were detected
// at the same offset, next (the later alternative) wins and the expectations
// of prev are merged ahead of its own. Either argument may be nil.
func Merge(prev, next *Error) *Error {
	switch {
	case prev == nil:
		return next
	case next == nil:
		return prev
	case prev.Offset > next.Offset:
		return prev
	case prev.Offset < next.Offset:
		return next
	}

	if len(prev.Expected) > 0 {
		expected := slices.Clone(prev.Expected)
		for _, d := range next.Expected {
			if !slices.Contains(expected, d) {
				expected = append(expected, d)
			}
		}

		next.Expected = expected
	}

	return next
}

// Labels returns the context labels from innermost to outermost.
func (e *Error) Labels() []string {
	labels := make([]string, len(e.Context))
	for i, f := range e.Context {
		labels[i] = f.Label
	}

	return labels
}

// Error implements the error interface.
//
// The message has the form:
//
//	<kind> at offset <n>[: need <m> more][: expected a or b][: while parsing x, while parsing y][: <cause>]
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Kind.String())
	sb.WriteString(" at offset ")
	sb.WriteString(strconv.Itoa(e.Offset))

	if e.Kind == KindIncomplete {
		sb.WriteString(": need ")
		sb.WriteString(e.Needed.String())
		sb.WriteString(" more")
	}

	if len(e.Expected) > 0 {
		sb.WriteString(": expected ")
		sb.WriteString(ExpectedString(e.Expected))
	}

	for i, f := range e.Context {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString(", ")
		}

		sb.WriteString("while parsing ")
		sb.WriteString(f.Label)
	}

	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}

	return sb.String()
}

// Unwrap returns the domain payload for [errors.Is] and [errors.As].
func (e *Error) Unwrap() error { return e.Cause }

// LogValue implements [slog.LogValuer].
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 6)

	attrs = append(attrs,
		slog.String("kind", e.Kind.String()),
		slog.Int("offset", e.Offset),
	)

	if e.Kind == KindIncomplete {
		attrs = append(attrs, slog.String("needed", e.Needed.String()))
	}

	if len(e.Expected) > 0 {
		attrs = append(attrs, slog.Any("expected", e.Expected))
	}

	if len(e.Context) > 0 {
		attrs = append(attrs, slog.Any("context", e.Labels()))
	}

	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}

	return slog.GroupValue(attrs...)
}

// ExpectedString joins expectation descriptions for display:
// "a", "a or b", "a, b, or c".
func ExpectedString(expected []string) string {
	switch len(expected) {
	case 0:
		return ""
	case 1:
		return expected[0]
	case 2:
		return expected[0] + " or " + expected[1]
	}

	return strings.Join(expected[:len(expected)-1], ", ") +
		", or " + expected[len(expected)-1]
}
