package stream

import (
	"bytes"

	"github.com/ardnew/knit/outcome"
)

// Bytes is a [Stream] of bytes.
type Bytes struct {
	buf  []byte
	pos  int // cursor, relative to buf
	base int // absolute offset of buf[0]
	mode Mode
}

var _ Stream[byte, []byte] = (*Bytes)(nil)

// NewBytes returns a complete stream over b. The stream does not copy b.
func NewBytes(b []byte) *Bytes {
	return &Bytes{buf: b, mode: Complete}
}

// NewPartialBytes returns a partial stream over b, which may later be
// extended with [Bytes.Append].
func NewPartialBytes(b []byte) *Bytes {
	return &Bytes{buf: b, mode: Partial}
}

// Mode implements [Stream].
func (b *Bytes) Mode() Mode { return b.mode }

// IsPartial implements [Stream].
func (b *Bytes) IsPartial() bool { return b.mode == Partial }

// Offset implements [Stream].
func (b *Bytes) Offset() int { return b.base + b.pos }

// Len implements [Stream].
func (b *Bytes) Len() int { return len(b.buf) - b.pos }

// Remaining returns the unconsumed input. The result aliases the buffer.
func (b *Bytes) Remaining() []byte {
	return b.buf[b.pos:len(b.buf):len(b.buf)]
}

// PeekToken implements [Stream].
func (b *Bytes) PeekToken() (byte, bool) {
	if b.pos >= len(b.buf) {
		return 0, false
	}

	return b.buf[b.pos], true
}

// NextToken implements [Stream].
func (b *Bytes) NextToken() (byte, bool) {
	c, ok := b.PeekToken()
	if ok {
		b.pos++
	}

	return c, ok
}

// PeekSlice implements [Stream].
func (b *Bytes) PeekSlice(n int) ([]byte, error) {
	if n < 0 {
		outcome.Violate("Bytes.PeekSlice", "negative length %d", n)
	}

	if n > b.Len() {
		return nil, short(b.mode, b.Offset(), b.Len(), n)
	}

	return b.buf[b.pos : b.pos+n : b.pos+n], nil
}

// NextSlice implements [Stream].
func (b *Bytes) NextSlice(n int) ([]byte, error) {
	s, err := b.PeekSlice(n)
	if err == nil {
		b.pos += n
	}

	return s, err
}

// Checkpoint implements [Stream].
func (b *Bytes) Checkpoint() Checkpoint { return checkpoint(b, b.Offset()) }

// Reset implements [Stream].
func (b *Bytes) Reset(cp Checkpoint) {
	b.pos = restore(b, cp, b.base, b.base+len(b.buf), "Bytes.Reset")
}

// OffsetFrom implements [Stream].
func (b *Bytes) OffsetFrom(cp Checkpoint) int {
	return b.pos - restore(b, cp, b.base, b.Offset(), "Bytes.OffsetFrom")
}

// SliceFrom implements [Stream].
func (b *Bytes) SliceFrom(cp Checkpoint) []byte {
	start := restore(b, cp, b.base, b.Offset(), "Bytes.SliceFrom")

	return b.buf[start:b.pos:b.pos]
}

// Compare implements [Stream].
func (b *Bytes) Compare(lit []byte) (Match, int) {
	rest := b.buf[b.pos:]

	return compare(b.mode,
		bytes.HasPrefix(rest, lit),
		len(rest) < len(lit) && bytes.HasPrefix(lit, rest),
	), len(lit)
}

// FindSlice implements [Stream].
func (b *Bytes) FindSlice(lit []byte) int {
	return bytes.Index(b.buf[b.pos:], lit)
}

// Append extends a partial stream with p. Slices returned earlier remain
// valid and unchanged.
func (b *Bytes) Append(p []byte) {
	outcome.Assert(b.mode == Partial, "Bytes.Append", "stream is complete")

	b.buf = append(b.buf, p...)
}

// Finish marks a partial stream complete: no more data will arrive.
func (b *Bytes) Finish() { b.mode = Complete }

// Compact releases the consumed prefix of the buffer. Absolute offsets are
// preserved, but checkpoints taken before the cursor become invalid.
func (b *Bytes) Compact() {
	b.base += b.pos
	b.buf = b.buf[b.pos:]
	b.pos = 0
}
