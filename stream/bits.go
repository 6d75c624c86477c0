package stream

import (
	"strings"

	"github.com/ardnew/knit/outcome"
)

// BitSlice is a view of n consecutive bits of a byte buffer, starting at bit
// index start (bit 0 is the most significant bit of data[0]).
// It never copies the buffer it views.
type BitSlice struct {
	data  []byte
	start int
	n     int
}

// BitPattern returns the low n bits of value as a BitSlice, most significant
// bit first. It is intended for building literals to match against a [Bits]
// stream.
func BitPattern(value uint64, n int) BitSlice {
	outcome.Assert(n >= 0 && n <= 64, "BitPattern", "width %d out of range [0, 64]", n)

	data := make([]byte, (n+7)/8)
	for i := range n {
		if value>>(n-1-i)&1 == 1 {
			data[i/8] |= 0x80 >> (i % 8)
		}
	}

	return BitSlice{data: data, n: n}
}

// Len returns the number of bits in the slice.
func (s BitSlice) Len() int { return s.n }

// Bit returns bit i of the slice.
func (s BitSlice) Bit(i int) bool {
	if i < 0 || i >= s.n {
		outcome.Violate("BitSlice.Bit", "index %d out of range [0, %d)", i, s.n)
	}

	return bitAt(s.data, s.start+i)
}

// Bytes returns the underlying buffer and the bit index of the slice's first
// bit within it.
func (s BitSlice) Bytes() ([]byte, int) { return s.data, s.start }

// Uint64 returns the slice interpreted as an unsigned big-endian integer.
// Slices longer than 64 bits keep only their low 64 bits.
func (s BitSlice) Uint64() uint64 {
	var v uint64
	for i := range s.n {
		v <<= 1
		if bitAt(s.data, s.start+i) {
			v |= 1
		}
	}

	return v
}

// Equal reports whether s and o hold the same bit sequence.
func (s BitSlice) Equal(o BitSlice) bool {
	if s.n != o.n {
		return false
	}

	for i := range s.n {
		if bitAt(s.data, s.start+i) != bitAt(o.data, o.start+i) {
			return false
		}
	}

	return true
}

// String returns the bits as a string of '0' and '1'.
func (s BitSlice) String() string {
	var sb strings.Builder

	sb.Grow(s.n)

	for i := range s.n {
		if bitAt(s.data, s.start+i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	return sb.String()
}

func bitAt(data []byte, i int) bool {
	return data[i/8]&(0x80>>(i%8)) != 0
}

// Bits is a [Stream] of individual bits over a byte buffer, most significant
// bit first. Offsets and lengths are measured in bits.
type Bits struct {
	data  []byte
	nbits int // bits available in data
	pos   int // cursor in bits, relative to data
	base  int // absolute bit offset of data[0]
	mode  Mode
}

var _ Stream[bool, BitSlice] = (*Bits)(nil)

// NewBits returns a complete bit stream over b.
func NewBits(b []byte) *Bits {
	return &Bits{data: b, nbits: 8 * len(b), mode: Complete}
}

// NewPartialBits returns a partial bit stream over b, which may later be
// extended with [Bits.Append].
func NewPartialBits(b []byte) *Bits {
	return &Bits{data: b, nbits: 8 * len(b), mode: Partial}
}

// Mode implements [Stream].
func (b *Bits) Mode() Mode { return b.mode }

// IsPartial implements [Stream].
func (b *Bits) IsPartial() bool { return b.mode == Partial }

// Offset implements [Stream].
func (b *Bits) Offset() int { return b.base + b.pos }

// Len implements [Stream].
func (b *Bits) Len() int { return b.nbits - b.pos }

// Aligned reports whether the cursor sits on a byte boundary.
func (b *Bits) Aligned() bool { return b.Offset()%8 == 0 }

// PeekToken implements [Stream].
func (b *Bits) PeekToken() (bool, bool) {
	if b.pos >= b.nbits {
		return false, false
	}

	return bitAt(b.data, b.pos), true
}

// NextToken implements [Stream].
func (b *Bits) NextToken() (bool, bool) {
	v, ok := b.PeekToken()
	if ok {
		b.pos++
	}

	return v, ok
}

// PeekSlice implements [Stream]. n counts bits.
func (b *Bits) PeekSlice(n int) (BitSlice, error) {
	if n < 0 {
		outcome.Violate("Bits.PeekSlice", "negative length %d", n)
	}

	if n > b.Len() {
		return BitSlice{}, short(b.mode, b.Offset(), b.Len(), n)
	}

	return b.view(b.pos, n), nil
}

// NextSlice implements [Stream]. n counts bits.
func (b *Bits) NextSlice(n int) (BitSlice, error) {
	s, err := b.PeekSlice(n)
	if err == nil {
		b.pos += n
	}

	return s, err
}

func (b *Bits) view(start, n int) BitSlice {
	lo, hi := start/8, (start+n+7)/8

	return BitSlice{data: b.data[lo:hi:hi], start: start % 8, n: n}
}

// Checkpoint implements [Stream].
func (b *Bits) Checkpoint() Checkpoint { return checkpoint(b, b.Offset()) }

// Reset implements [Stream].
func (b *Bits) Reset(cp Checkpoint) {
	b.pos = restore(b, cp, b.base, b.base+b.nbits, "Bits.Reset")
}

// OffsetFrom implements [Stream].
func (b *Bits) OffsetFrom(cp Checkpoint) int {
	return b.pos - restore(b, cp, b.base, b.Offset(), "Bits.OffsetFrom")
}

// SliceFrom implements [Stream].
func (b *Bits) SliceFrom(cp Checkpoint) BitSlice {
	start := restore(b, cp, b.base, b.Offset(), "Bits.SliceFrom")

	return b.view(start, b.pos-start)
}

// Compare implements [Stream].
func (b *Bits) Compare(lit BitSlice) (Match, int) {
	have := min(b.Len(), lit.n)
	for i := range have {
		if bitAt(b.data, b.pos+i) != bitAt(lit.data, lit.start+i) {
			return Mismatch, lit.n
		}
	}

	return compare(b.mode, have == lit.n, have < lit.n), lit.n
}

// FindSlice implements [Stream].
func (b *Bits) FindSlice(lit BitSlice) int {
	for i := 0; i+lit.n <= b.Len(); i++ {
		if b.view(b.pos+i, lit.n).Equal(lit) {
			return i
		}
	}

	return -1
}

// Append extends a partial stream with whole bytes.
func (b *Bits) Append(p []byte) {
	outcome.Assert(b.mode == Partial, "Bits.Append", "stream is complete")

	b.data = append(b.data, p...)
	b.nbits += 8 * len(p)
}

// Finish marks a partial stream complete: no more data will arrive.
func (b *Bits) Finish() { b.mode = Complete }

// Compact releases the whole bytes consumed before the cursor. Absolute
// offsets are preserved, but checkpoints taken before the retained byte
// become invalid.
func (b *Bits) Compact() {
	drop := b.pos / 8
	b.data = b.data[drop:]
	b.nbits -= 8 * drop
	b.pos -= 8 * drop
	b.base += 8 * drop
}
