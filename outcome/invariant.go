package outcome

import "fmt"

// InvariantError reports misuse of the engine by a parser author. It is
// raised with panic, never returned from a parser.
type InvariantError struct {
	Op  string // combinator or operation that detected the violation
	Msg string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return "invariant violated in " + e.Op + ": " + e.Msg
}

// Violate panics with an [*InvariantError].
func Violate(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// Assert panics with an [*InvariantError] unless cond holds.
func Assert(cond bool, op, format string, args ...any) {
	if !cond {
		Violate(op, format, args...)
	}
}

// Catch runs fn and returns the [*InvariantError] it panicked with, if any.
// Panics with any other value are re-raised.
func Catch(fn func()) (ie *InvariantError) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		e, ok := r.(*InvariantError)
		if !ok {
			panic(r)
		}

		ie = e
	}()

	fn()

	return nil
}
