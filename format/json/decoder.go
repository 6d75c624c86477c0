package json

import (
	"io"

	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/stream"
)

// ChunkSize is the number of bytes a [Decoder] reads at a time.
const ChunkSize = 4096

// Decoder parses a sequence of whitespace-separated JSON values from input
// that arrives in pieces. Each value is returned as soon as it is complete,
// and consumed input is released.
//
// Input comes either from the reader given to [NewDecoder] or, when that
// is nil, from [Decoder.Feed] and [Decoder.Close].
type Decoder struct {
	r    io.Reader
	buf  []byte
	in   *stream.Text
	next textParser[any]
	skip textParser[string]
}

// NewDecoder returns a Decoder reading from r. A nil r makes the caller
// responsible for supplying input.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:    r,
		in:   stream.NewPartialText(""),
		next: parser.Preceded(ws(), Value()),
		skip: ws(),
	}
}

// Feed appends p to the buffered input.
func (d *Decoder) Feed(p []byte) { d.in.Append(string(p)) }

// Close marks the end of input.
func (d *Decoder) Close() { d.in.Finish() }

// Offset returns the offset of the first byte not yet consumed.
func (d *Decoder) Offset() int { return d.in.Offset() }

// Buffered returns the number of bytes held but not yet consumed.
func (d *Decoder) Buffered() int { return d.in.Len() }

// Next returns the next value.
//
// At the end of input Next returns [io.EOF]. Without a reader, running out
// of fed input returns an incomplete [*outcome.Error]; feed more and call
// Next again.
func (d *Decoder) Next() (any, error) {
	for {
		if !d.in.IsPartial() {
			return d.last()
		}

		v, err := parser.ParsePartial(d.next, d.in)
		if err == nil {
			d.in.Compact()

			return v, nil
		}

		if !outcome.IsIncomplete(err) || d.r == nil {
			return nil, err
		}

		if err := d.fill(); err != nil {
			return nil, err
		}
	}
}

// last parses from the final, complete buffer.
func (d *Decoder) last() (any, error) {
	if _, err := parser.ParsePrefix(d.skip, d.in); err != nil {
		return nil, err
	}

	if d.in.Len() == 0 {
		return nil, io.EOF
	}

	v, err := parser.ParsePrefix(d.next, d.in)
	if err != nil {
		return nil, err
	}

	d.in.Compact()

	return v, nil
}

func (d *Decoder) fill() error {
	if d.buf == nil {
		d.buf = make([]byte, ChunkSize)
	}

	n, err := d.r.Read(d.buf)
	if n > 0 {
		d.Feed(d.buf[:n])
	}

	switch {
	case err == io.EOF:
		d.Close()
	case err != nil:
		return err
	}

	return nil
}
