package pkg

// Sentinel errors for the knit command and its subpackages.
// These errors can be tested using errors.Is for reliable error checking.

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Error represents a chain of errors.
type Error []error

// ErrParse is returned when parsing input fails.
//
// This error should be wrapped with the underlying parse error
// to preserve the error chain and detailed parse error information.
var ErrParse = MakeErrorf("parse error")

// ErrReadInput is returned when reading input fails.
//
// This error should be wrapped with the underlying I/O error
// to preserve the error chain.
var ErrReadInput = MakeErrorf("failed to read input")

// ErrUnknownFormat is returned when a format name is not registered.
//
// This error should be wrapped with the requested name and, when one
// exists, the closest registered name.
var ErrUnknownFormat = MakeErrorf("unknown format")

// ErrInvalidOutput is returned when an invalid output encoding is specified.
var ErrInvalidOutput = MakeErrorf("invalid output encoding")

// ErrMarshal is returned when encoding a parse result fails.
//
// This error should be wrapped with the underlying marshaling error
// to preserve the error chain.
var ErrMarshal = MakeErrorf("marshal error")

// ErrNoInput is returned when a glob pattern matches no files.
var ErrNoInput = MakeErrorf("no input matched")

// MakeError constructs an Error from the given errors.
// The errors are stored in the order they are provided:
// the first argument is the innermost error in the chain.
// Nil is returned if no errors are provided.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error returns a concatenated string representation of all errors
// in the error chain, separated by ": ", from innermost to outermost.
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range slices.All(e) {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap appends one or more errors to the receiver and returns the result.
func (e Error) Wrap(err ...error) Error {
	return append(e, err...)
}

// Wrapf appends a formatted error to the receiver and returns the result.
func (e Error) Wrapf(format string, args ...any) Error {
	return append(e, fmt.Errorf(format, args...))
}

// Is reports whether target is an Error whose chain is a prefix of the
// receiver's, so that a sentinel matches every error wrapped from it.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 || len(t) > len(e) {
		return false
	}

	return slices.EqualFunc(e[:len(t)], t, same)
}

func same(a, b error) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}

	return a == b
}

// Unwrap returns the slice of errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// UnwrapErrors recursively unwraps an error chain and returns a slice
// containing all errors in the chain, starting from the innermost error.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	chain := Error{}

	if e, ok := err.(interface{ Unwrap() []error }); ok {
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}
	} else if e, ok := err.(interface{ Unwrap() error }); ok {
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
