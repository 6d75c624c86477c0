package ascii

import (
	"strconv"

	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/token"
)

// DecUint parses an unsigned decimal integer. Values that overflow uint64
// backtrack with the [strconv.NumError] as cause.
func DecUint[T Token, S Slice]() parser.Parser[T, S, uint64] {
	return parser.TryMap(Digit1[T, S](), func(s S) (uint64, error) {
		return strconv.ParseUint(string(s), 10, 64)
	})
}

// DecInt parses a decimal integer with an optional sign.
func DecInt[T Token, S Slice]() parser.Parser[T, S, int64] {
	lit := parser.Recognize(parser.Seq2(
		parser.Opt(token.OneOf[T, S]('+', '-')),
		Digit1[T, S](),
	))

	return parser.TryMap(lit, func(s S) (int64, error) {
		return strconv.ParseInt(string(s), 10, 64)
	})
}

// HexUint parses an unsigned hexadecimal integer without prefix.
func HexUint[T Token, S Slice]() parser.Parser[T, S, uint64] {
	return parser.TryMap(HexDigit1[T, S](), func(s S) (uint64, error) {
		return strconv.ParseUint(string(s), 16, 64)
	})
}

// Float parses a decimal floating-point literal with optional sign,
// fraction, and exponent.
func Float[T Token, S Slice]() parser.Parser[T, S, float64] {
	sign := parser.Opt(token.OneOf[T, S]('+', '-'))
	frac := parser.Opt(parser.Preceded(Char[T, S]('.'), Digit0[T, S]()))
	exp := parser.Opt(parser.Seq3(
		token.OneOf[T, S]('e', 'E'),
		parser.Opt(token.OneOf[T, S]('+', '-')),
		Digit1[T, S](),
	))

	lit := parser.Expect("number", parser.Recognize(parser.Seq4(sign, Digit1[T, S](), frac, exp)))

	return parser.TryMap(lit, func(s S) (float64, error) {
		return strconv.ParseFloat(string(s), 64)
	})
}

// DigitFold parses one or more decimal digits token by token, folding them
// into a value with f. It is the building block for custom integer
// encodings that should not go through a slice.
func DigitFold[T Token, S Slice, A any](init func() A, f func(A, int) A) parser.Parser[T, S, A] {
	digit := token.Satisfy[T, S]("digit", IsDigit[T])

	return parser.Fold(1, parser.Unbounded, digit, init, func(acc A, c T) A {
		return f(acc, int(c-'0'))
	})
}
