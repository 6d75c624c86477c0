package stream

import (
	"strings"
	"unicode/utf8"

	"github.com/ardnew/knit/outcome"
)

// Text is a [Stream] of runes decoded from UTF-8 text. Offsets and slice
// lengths are measured in bytes; slices are substrings of the input.
//
// Invalid UTF-8 decodes as [utf8.RuneError] of width 1. In Partial mode a
// truncated multi-byte sequence at the end of the buffer is reported as
// "no token yet" rather than as an error rune.
type Text struct {
	buf  string
	pos  int
	base int
	mode Mode
}

var _ Stream[rune, string] = (*Text)(nil)

// NewText returns a complete stream over s.
func NewText(s string) *Text {
	return &Text{buf: s, mode: Complete}
}

// NewPartialText returns a partial stream over s, which may later be extended
// with [Text.Append].
func NewPartialText(s string) *Text {
	return &Text{buf: s, mode: Partial}
}

// Mode implements [Stream].
func (t *Text) Mode() Mode { return t.mode }

// IsPartial implements [Stream].
func (t *Text) IsPartial() bool { return t.mode == Partial }

// Offset implements [Stream].
func (t *Text) Offset() int { return t.base + t.pos }

// Len implements [Stream].
func (t *Text) Len() int { return len(t.buf) - t.pos }

// Remaining returns the unconsumed input.
func (t *Text) Remaining() string { return t.buf[t.pos:] }

func (t *Text) decode() (rune, int) {
	rest := t.buf[t.pos:]
	if rest == "" {
		return 0, 0
	}

	if t.mode == Partial && !utf8.FullRuneInString(rest) {
		return 0, 0
	}

	return utf8.DecodeRuneInString(rest)
}

// PeekToken implements [Stream].
func (t *Text) PeekToken() (rune, bool) {
	r, size := t.decode()

	return r, size > 0
}

// NextToken implements [Stream].
func (t *Text) NextToken() (rune, bool) {
	r, size := t.decode()
	t.pos += size

	return r, size > 0
}

// PeekSlice implements [Stream]. n counts bytes.
func (t *Text) PeekSlice(n int) (string, error) {
	if n < 0 {
		outcome.Violate("Text.PeekSlice", "negative length %d", n)
	}

	if n > t.Len() {
		return "", short(t.mode, t.Offset(), t.Len(), n)
	}

	return t.buf[t.pos : t.pos+n], nil
}

// NextSlice implements [Stream]. n counts bytes.
func (t *Text) NextSlice(n int) (string, error) {
	s, err := t.PeekSlice(n)
	if err == nil {
		t.pos += n
	}

	return s, err
}

// Checkpoint implements [Stream].
func (t *Text) Checkpoint() Checkpoint { return checkpoint(t, t.Offset()) }

// Reset implements [Stream].
func (t *Text) Reset(cp Checkpoint) {
	t.pos = restore(t, cp, t.base, t.base+len(t.buf), "Text.Reset")
}

// OffsetFrom implements [Stream].
func (t *Text) OffsetFrom(cp Checkpoint) int {
	return t.pos - restore(t, cp, t.base, t.Offset(), "Text.OffsetFrom")
}

// SliceFrom implements [Stream].
func (t *Text) SliceFrom(cp Checkpoint) string {
	return t.buf[restore(t, cp, t.base, t.Offset(), "Text.SliceFrom"):t.pos]
}

// Compare implements [Stream].
func (t *Text) Compare(lit string) (Match, int) {
	rest := t.buf[t.pos:]

	return compare(t.mode,
		strings.HasPrefix(rest, lit),
		len(rest) < len(lit) && strings.HasPrefix(lit, rest),
	), len(lit)
}

// FindSlice implements [Stream].
func (t *Text) FindSlice(lit string) int {
	return strings.Index(t.buf[t.pos:], lit)
}

// Append extends a partial stream with s. Substrings returned earlier remain
// valid.
func (t *Text) Append(s string) {
	outcome.Assert(t.mode == Partial, "Text.Append", "stream is complete")

	t.buf += s
}

// Finish marks a partial stream complete: no more data will arrive.
func (t *Text) Finish() { t.mode = Complete }

// Compact releases the consumed prefix of the buffer. Absolute offsets are
// preserved, but checkpoints taken before the cursor become invalid.
func (t *Text) Compact() {
	t.base += t.pos
	t.buf = t.buf[t.pos:]
	t.pos = 0
}
