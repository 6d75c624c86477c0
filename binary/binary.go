// Package binary provides parsers for fixed-width integers, length-prefixed
// data, and bit fields over byte streams.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/stream"
	"github.com/ardnew/knit/token"
)

// Parser is a parser over a byte stream.
type Parser[O any] = parser.Parser[byte, []byte, O]

// Unsigned is the set of integer types usable as length prefixes.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

func fixed[O any](n int, decode func([]byte) O) Parser[O] {
	return parser.Map(token.Take[byte, []byte](n), decode)
}

// U8 parses one byte.
func U8() Parser[uint8] { return fixed(1, func(b []byte) uint8 { return b[0] }) }

// I8 parses one byte as a signed integer.
func I8() Parser[int8] { return fixed(1, func(b []byte) int8 { return int8(b[0]) }) }

// BEU16 parses a big-endian uint16.
func BEU16() Parser[uint16] { return fixed(2, binary.BigEndian.Uint16) }

// BEU32 parses a big-endian uint32.
func BEU32() Parser[uint32] { return fixed(4, binary.BigEndian.Uint32) }

// BEU64 parses a big-endian uint64.
func BEU64() Parser[uint64] { return fixed(8, binary.BigEndian.Uint64) }

// LEU16 parses a little-endian uint16.
func LEU16() Parser[uint16] { return fixed(2, binary.LittleEndian.Uint16) }

// LEU32 parses a little-endian uint32.
func LEU32() Parser[uint32] { return fixed(4, binary.LittleEndian.Uint32) }

// LEU64 parses a little-endian uint64.
func LEU64() Parser[uint64] { return fixed(8, binary.LittleEndian.Uint64) }

// BEI16 parses a big-endian int16.
func BEI16() Parser[int16] {
	return fixed(2, func(b []byte) int16 { return int16(binary.BigEndian.Uint16(b)) })
}

// BEI32 parses a big-endian int32.
func BEI32() Parser[int32] {
	return fixed(4, func(b []byte) int32 { return int32(binary.BigEndian.Uint32(b)) })
}

// LEI16 parses a little-endian int16.
func LEI16() Parser[int16] {
	return fixed(2, func(b []byte) int16 { return int16(binary.LittleEndian.Uint16(b)) })
}

// LEI32 parses a little-endian int32.
func LEI32() Parser[int32] {
	return fixed(4, func(b []byte) int32 { return int32(binary.LittleEndian.Uint32(b)) })
}

// ErrLength is the cause of a failure on a length or count prefix that does
// not fit in an int.
var ErrLength = errors.New("length prefix exceeds addressable size")

// prefixed parses a length with length and continues with the parser next
// builds for it. A length above [math.MaxInt] backtracks at the offset of
// the prefix in both complete and partial mode, since no amount of further
// input could satisfy it.
func prefixed[N Unsigned, O any](length Parser[N], next func(int) Parser[O]) Parser[O] {
	return parser.Func[byte, []byte, O](func(in stream.Stream[byte, []byte]) (O, error) {
		var zero O

		start := in.Offset()

		n, err := length.ParseNext(in)
		if err != nil {
			return zero, err
		}

		if uint64(n) > math.MaxInt {
			return zero, outcome.Backtrack(start).
				WithCause(fmt.Errorf("%w: %d", ErrLength, uint64(n)))
		}

		return next(int(n)).ParseNext(in)
	})
}

// LengthTake parses a length with length and then returns that many bytes.
// The result aliases the input buffer.
func LengthTake[N Unsigned](length Parser[N]) Parser[[]byte] {
	return prefixed(length, token.Take[byte, []byte])
}

// LengthRepeat parses a count with count and then runs p that many times.
func LengthRepeat[N Unsigned, O any](count Parser[N], p Parser[O]) Parser[[]O] {
	return prefixed(count, func(n int) Parser[[]O] { return parser.RepeatN(n, p) })
}

// LengthValue parses a length with length and runs p over exactly that many
// bytes. Offsets in errors from p refer to the enclosing stream.
func LengthValue[N Unsigned, O any](length Parser[N], p Parser[O]) Parser[O] {
	return parser.AndThen(LengthTake(length), Open, p)
}

// Open returns a complete byte stream over b.
func Open(b []byte) stream.Stream[byte, []byte] { return stream.NewBytes(b) }
