// Package parser defines the parser protocol and the combinators that
// compose parsers into grammars.
//
// A [Parser] reads from a [stream.Stream] and returns an output value or an
// error classified by package outcome. Combinators build new parsers from
// existing ones by ordinary value composition:
//
//	call := parser.Seq2(
//		parser.Cut(token.Literal[rune]("func(")),
//		parser.Context("argument_list", args),
//	)
//
// # Propagation
//
// Sequencing ([Seq2], [Preceded], [Delimited], ...) stops at the first
// failure and returns it unchanged. Only two combinators reclassify a
// failure: [Alt] reads a backtrack as "try the next alternative", and [Cut]
// promotes a backtrack to a cut. [Context] records where a rule was entered
// without changing the kind of the failure.
//
// # Rewinding
//
// A bare parser makes no promise about the stream position after it fails.
// Combinators that retry ([Alt], [Opt], the repetition family, [Not],
// [Peek]) take a [stream.Checkpoint] before each attempt and reset to it.
//
// # Entry Points
//
// [Parse] and [ParsePrefix] run a parser over a complete stream.
// [ParsePartial] runs it over a partial stream and reports when more input
// is required; the caller appends data and calls it again. Both agree on
// every input: feeding a document in chunks yields the same result as
// parsing it whole.
//
// # Programmer Errors
//
// A repetition whose body succeeds without consuming input, inverted
// repetition bounds, and calling an entry point with the wrong stream mode
// panic with an [*outcome.InvariantError].
package parser
