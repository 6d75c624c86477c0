// Package ascii provides character-class and numeric-literal parsers for
// byte and text streams.
//
// Every parser is generic over the token type (byte or rune) and the slice
// type ([]byte or string), so the same grammar code serves both
// [stream.Bytes] and [stream.Text]. Classes are ASCII only; a rune outside
// ASCII never matches.
package ascii

import (
	"fmt"

	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/token"
)

// Token is the token type of byte and text streams.
type Token interface{ ~byte | ~rune }

// Slice is the slice type of byte and text streams.
type Slice interface{ ~[]byte | ~string }

// IsDigit reports whether c is '0' through '9'.
func IsDigit[T Token](c T) bool { return c >= '0' && c <= '9' }

// IsHexDigit reports whether c is a hexadecimal digit.
func IsHexDigit[T Token](c T) bool {
	return IsDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// IsAlpha reports whether c is an ASCII letter.
func IsAlpha[T Token](c T) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

// IsAlphanumeric reports whether c is an ASCII letter or digit.
func IsAlphanumeric[T Token](c T) bool { return IsAlpha(c) || IsDigit(c) }

// IsSpace reports whether c is a space or horizontal tab.
func IsSpace[T Token](c T) bool { return c == ' ' || c == '\t' }

// IsMultispace reports whether c is a space, tab, carriage return, or
// line feed.
func IsMultispace[T Token](c T) bool { return IsSpace(c) || c == '\r' || c == '\n' }

func class[T Token, S Slice](desc string, lo int, pred func(T) bool) parser.Parser[T, S, S] {
	p := token.TakeWhileMN[T, S](lo, parser.Unbounded, pred)
	if lo == 0 {
		return p
	}

	return parser.Expect(desc, p)
}

// Digit0 matches zero or more decimal digits.
func Digit0[T Token, S Slice]() parser.Parser[T, S, S] { return class[T, S]("digit", 0, IsDigit[T]) }

// Digit1 matches one or more decimal digits.
func Digit1[T Token, S Slice]() parser.Parser[T, S, S] { return class[T, S]("digit", 1, IsDigit[T]) }

// HexDigit0 matches zero or more hexadecimal digits.
func HexDigit0[T Token, S Slice]() parser.Parser[T, S, S] {
	return class[T, S]("hexadecimal digit", 0, IsHexDigit[T])
}

// HexDigit1 matches one or more hexadecimal digits.
func HexDigit1[T Token, S Slice]() parser.Parser[T, S, S] {
	return class[T, S]("hexadecimal digit", 1, IsHexDigit[T])
}

// Alpha0 matches zero or more letters.
func Alpha0[T Token, S Slice]() parser.Parser[T, S, S] { return class[T, S]("letter", 0, IsAlpha[T]) }

// Alpha1 matches one or more letters.
func Alpha1[T Token, S Slice]() parser.Parser[T, S, S] { return class[T, S]("letter", 1, IsAlpha[T]) }

// Alphanumeric1 matches one or more letters or digits.
func Alphanumeric1[T Token, S Slice]() parser.Parser[T, S, S] {
	return class[T, S]("letter or digit", 1, IsAlphanumeric[T])
}

// Space0 matches zero or more spaces and tabs.
func Space0[T Token, S Slice]() parser.Parser[T, S, S] { return class[T, S]("space", 0, IsSpace[T]) }

// Space1 matches one or more spaces and tabs.
func Space1[T Token, S Slice]() parser.Parser[T, S, S] { return class[T, S]("space", 1, IsSpace[T]) }

// Multispace0 matches zero or more whitespace characters including line
// breaks.
func Multispace0[T Token, S Slice]() parser.Parser[T, S, S] {
	return class[T, S]("whitespace", 0, IsMultispace[T])
}

// Multispace1 matches one or more whitespace characters including line
// breaks.
func Multispace1[T Token, S Slice]() parser.Parser[T, S, S] {
	return class[T, S]("whitespace", 1, IsMultispace[T])
}

// Char matches the single character c.
func Char[T Token, S Slice](c T) parser.Parser[T, S, T] {
	return token.Satisfy[T, S](fmt.Sprintf("%q", rune(c)), func(t T) bool { return t == c })
}

// Tag matches the literal text lit.
func Tag[T Token, S Slice](lit string) parser.Parser[T, S, S] {
	return token.Literal[T](S(lit))
}

// LineEnding matches "\n" or "\r\n".
func LineEnding[T Token, S Slice]() parser.Parser[T, S, S] {
	return parser.Expect("line ending", parser.Alt(Tag[T, S]("\n"), Tag[T, S]("\r\n")))
}

// NotLineEnding matches everything up to the next line ending or the end of
// input.
func NotLineEnding[T Token, S Slice]() parser.Parser[T, S, S] {
	return token.TakeTill[T, S](func(c T) bool { return c == '\r' || c == '\n' })
}

// Lexeme runs p and then skips trailing whitespace, including line breaks.
func Lexeme[T Token, S Slice, O any](p parser.Parser[T, S, O]) parser.Parser[T, S, O] {
	return parser.Terminated(p, Multispace0[T, S]())
}

// Trim runs p between optional leading and trailing whitespace.
func Trim[T Token, S Slice, O any](p parser.Parser[T, S, O]) parser.Parser[T, S, O] {
	return parser.Delimited(Multispace0[T, S](), p, Multispace0[T, S]())
}
