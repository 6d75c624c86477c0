package httpreq

import (
	"io"

	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/pkg"
	"github.com/ardnew/knit/stream"
)

// DefaultMaxHead is the default limit on buffered bytes of one request head.
const DefaultMaxHead = 64 << 10

// ErrHeadTooLarge is returned when a request head exceeds the limit.
var ErrHeadTooLarge = pkg.MakeErrorf("request head too large")

// Reader reads request heads from a byte stream as they arrive.
type Reader struct {
	r    io.Reader
	in   *stream.Bytes
	buf  []byte
	head byteParser[Request]
	max  int
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:    r,
		in:   stream.NewPartialBytes(nil),
		head: Head(),
		max:  DefaultMaxHead,
	}
}

// SetMaxHead sets the limit on the size of one request head.
func (r *Reader) SetMaxHead(n int) { r.max = n }

// Offset returns the offset of the first byte not yet consumed.
func (r *Reader) Offset() int { return r.in.Offset() }

// Next returns the next request head, or [io.EOF] once the input ends on a
// request boundary.
func (r *Reader) Next() (*Request, error) {
	for {
		if r.in.IsPartial() {
			req, err := parser.ParsePartial(r.head, r.in)
			if err == nil {
				r.in.Compact()

				return &req, nil
			}

			if !outcome.IsIncomplete(err) {
				return nil, err
			}

			if r.in.Len() >= r.max {
				return nil, ErrHeadTooLarge.Wrapf("%d bytes at offset %d", r.in.Len(), r.in.Offset())
			}

			if err := r.fill(); err != nil {
				return nil, err
			}

			continue
		}

		if r.in.Len() == 0 {
			return nil, io.EOF
		}

		req, err := parser.ParsePrefix(r.head, r.in)
		if err != nil {
			return nil, err
		}

		r.in.Compact()

		return &req, nil
	}
}

func (r *Reader) fill() error {
	if r.buf == nil {
		r.buf = make([]byte, 4096)
	}

	n, err := r.r.Read(r.buf)
	if n > 0 {
		r.in.Append(r.buf[:n])
	}

	switch {
	case err == io.EOF:
		r.in.Finish()
	case err != nil:
		return err
	}

	return nil
}
