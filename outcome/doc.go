// Package outcome classifies the result of every parse attempt.
//
// A parser reports success with a nil error. Failures are reported as an
// [*Error] whose [Kind] tells enclosing combinators what to do next:
//
//   - [KindBacktrack]: this parser did not match. An enclosing ordered choice
//     may rewind and try an alternative.
//   - [KindCut]: the parser committed to this grammar branch and then failed.
//     No sibling alternative is tried.
//   - [KindIncomplete]: the stream is partial and more input is required
//     before a decision can be made. [Error.Needed] reports how much, when
//     known.
//
// # Error Contents
//
// An [Error] carries the offset where the failure was detected, an ordered
// list of expectations ("expected `,`"), and a chain of context [Frame]
// values appended by annotation combinators as the error propagates outward
// (innermost first). Domain-specific payloads are attached as the error's
// cause with [Error.WithCause] and remain reachable through [errors.Is] and
// [errors.As].
//
// Any non-nil error that is not an [*Error] is interpreted by [From] as a
// backtrack at the stream's current offset with that error as its cause.
//
// # Programmer Errors
//
// Violations of the engine's own invariants (a repetition whose body
// succeeds without consuming input, inverted repetition bounds, a checkpoint
// restored into the wrong stream) are not parse failures. They panic with
// an [*InvariantError] so they cannot be silently mishandled.
package outcome
