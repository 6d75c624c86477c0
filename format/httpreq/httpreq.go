// Package httpreq parses HTTP/1.x request heads: the request line and the
// header block up to the blank line that ends it. Message bodies are left to
// the caller.
//
// Every field aliases the input buffer.
package httpreq

import (
	"bytes"

	"github.com/ardnew/knit/ascii"
	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/stream"
	"github.com/ardnew/knit/token"
)

type byteParser[O any] = parser.Parser[byte, []byte, O]

// Request is a parsed request head.
type Request struct {
	Method  []byte
	URI     []byte
	Version []byte // digits and dots after "HTTP/"
	Headers []Header
}

// Header is one header field. A value folded over several lines has one
// element per line.
type Header struct {
	Name  []byte
	Value [][]byte
}

// Header returns the value of the first header named name, compared without
// case, with folded lines joined by a single space.
func (r *Request) Header(name string) ([]byte, bool) {
	for _, h := range r.Headers {
		if bytes.EqualFold(h.Name, []byte(name)) {
			return bytes.Join(h.Value, []byte{' '}), true
		}
	}

	return nil, false
}

// Parse parses one or more pipelined request heads that make up all of data.
func Parse(data []byte) ([]Request, error) {
	return parser.Parse(parser.Repeat1(Head()), stream.NewBytes(data))
}

// IsToken reports whether c may appear in a method or header name.
func IsToken(c byte) bool {
	if c < 32 || c > 126 {
		return false
	}

	return bytes.IndexByte([]byte(`()<>@,;:\"/[]?={} `), c) < 0
}

func isVersion(c byte) bool { return ascii.IsDigit(c) || c == '.' }

func isHorizontalSpace(c byte) bool { return c == ' ' || c == '\t' }

func isNotLineEnding(c byte) bool { return c != '\r' && c != '\n' }

func lineEnding() byteParser[[]byte] { return ascii.LineEnding[byte, []byte]() }

// Head parses a request line, at least one header, and the terminating
// blank line.
func Head() byteParser[Request] {
	return parser.Context("request", parser.Map(
		parser.Seq3(RequestLine(), parser.Repeat1(HeaderField()), lineEnding()),
		func(q parser.Triple[Request, []Header, []byte]) Request {
			r := q.First
			r.Headers = q.Second

			return r
		},
	))
}

// RequestLine parses "METHOD SP URI SP HTTP/VERSION CRLF".
func RequestLine() byteParser[Request] {
	sp := token.TakeWhile1[byte, []byte](func(c byte) bool { return c == ' ' })

	method := parser.Expect("method", token.TakeWhile1[byte, []byte](IsToken))
	uri := parser.Expect("request target", token.TakeWhile1[byte, []byte](func(c byte) bool {
		return c != ' ' && isNotLineEnding(c)
	}))
	version := parser.Preceded(
		ascii.Tag[byte, []byte]("HTTP/"),
		parser.Expect("version", token.TakeWhile1[byte, []byte](isVersion)),
	)

	return parser.Context("request line", parser.Map(
		parser.Seq4(
			method,
			parser.Cut(parser.Preceded(sp, uri)),
			parser.Cut(parser.Preceded(sp, version)),
			parser.Cut(lineEnding()),
		),
		func(q parser.Quad[[]byte, []byte, []byte, []byte]) Request {
			return Request{Method: q.First, URI: q.Second, Version: q.Third}
		},
	))
}

// HeaderField parses "name:" followed by one or more value lines, each
// starting with horizontal space.
func HeaderField() byteParser[Header] {
	line := parser.Delimited(
		token.TakeWhile1[byte, []byte](isHorizontalSpace),
		token.TakeWhile1[byte, []byte](isNotLineEnding),
		lineEnding(),
	)

	return parser.Context("header", parser.Map(
		parser.SeparatedPair(
			token.TakeWhile1[byte, []byte](IsToken),
			ascii.Char[byte, []byte](':'),
			parser.Cut(parser.Expect("header value", parser.Repeat1(line))),
		),
		func(p parser.Pair[[]byte, [][]byte]) Header { return Header{Name: p.First, Value: p.Second} },
	))
}
