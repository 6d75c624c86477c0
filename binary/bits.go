package binary

import (
	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/stream"
	"github.com/ardnew/knit/token"
)

// BitParser is a parser over a bit stream.
type BitParser[O any] = parser.Parser[bool, stream.BitSlice, O]

// Bits runs a bit-level parser over the byte stream. After p succeeds the
// byte stream advances past every byte p touched, so a partially consumed
// trailing byte is skipped.
//
// Error offsets are converted to the byte containing the failing bit, and a
// known bit shortfall is rounded up to whole bytes.
func Bits[O any](p BitParser[O]) Parser[O] {
	return parser.Func[byte, []byte, O](func(in stream.Stream[byte, []byte]) (O, error) {
		var zero O

		start := in.Offset()
		buf, _ := in.PeekSlice(in.Len())

		bits := stream.NewBits(buf)
		if in.IsPartial() {
			bits = stream.NewPartialBits(buf)
		}

		out, err := p.ParseNext(bits)
		if err != nil {
			e := outcome.From(err, bits.Offset())

			e.Offset = start + e.Offset/8
			for i := range e.Context {
				e.Context[i].Offset = start + e.Context[i].Offset/8
			}

			if e.Kind == outcome.KindIncomplete && e.Needed.IsKnown() {
				e.Needed = outcome.Size((int(e.Needed) + 7) / 8)
			}

			return zero, e
		}

		if _, err := in.NextSlice((bits.Offset() + 7) / 8); err != nil {
			return zero, err
		}

		return out, nil
	})
}

// Bit parses a single bit.
func Bit() BitParser[bool] { return token.Any[bool, stream.BitSlice]() }

// TakeBits parses n bits as an unsigned big-endian integer. n must not
// exceed 64.
func TakeBits(n int) BitParser[uint64] {
	outcome.Assert(n >= 0 && n <= 64, "TakeBits", "width %d out of range [0, 64]", n)

	return parser.Map(token.Take[bool, stream.BitSlice](n), stream.BitSlice.Uint64)
}

// BitTag matches the low n bits of value, most significant first.
func BitTag(value uint64, n int) BitParser[stream.BitSlice] {
	return token.Literal[bool](stream.BitPattern(value, n))
}
