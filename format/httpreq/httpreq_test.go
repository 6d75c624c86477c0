package httpreq

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/stream"
)

const pipelined = "GET /index.html HTTP/1.1\r\n" +
	"Host: www.example.com\r\n" +
	"User-Agent: knit\r\n" +
	"Accept: text/html,\r\n" +
	"\tapplication/xhtml+xml\r\n" +
	"\r\n" +
	"POST /submit?x=1 HTTP/1.0\n" +
	"Content-Length:  12\n" +
	"\n"

func TestParse(t *testing.T) {
	reqs, err := Parse([]byte(pipelined))
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	get := reqs[0]
	assert.Equal(t, "GET", string(get.Method))
	assert.Equal(t, "/index.html", string(get.URI))
	assert.Equal(t, "1.1", string(get.Version))
	require.Len(t, get.Headers, 3)
	assert.Equal(t, "Accept", string(get.Headers[2].Name))
	assert.Len(t, get.Headers[2].Value, 2)

	accept, ok := get.Header("accept")
	assert.True(t, ok)
	assert.Equal(t, "text/html, application/xhtml+xml", string(accept))

	_, ok = get.Header("cookie")
	assert.False(t, ok)

	post := reqs[1]
	assert.Equal(t, "POST", string(post.Method))
	assert.Equal(t, "/submit?x=1", string(post.URI))

	length, ok := post.Header("Content-Length")
	assert.True(t, ok)
	assert.Equal(t, "12", string(length))
}

func TestZeroCopy(t *testing.T) {
	src := []byte("GET / HTTP/1.1\r\nHost: a\r\n\r\n")

	reqs, err := Parse(src)
	require.NoError(t, err)
	assert.Same(t, &src[0], &reqs[0].Method[0])
	assert.Same(t, &src[22], &reqs[0].Headers[0].Value[0][0])
}

func TestIsToken(t *testing.T) {
	for _, c := range []byte("GETabcXYZ019-_.!#$%&'*+^`|~") {
		assert.True(t, IsToken(c), "%q", c)
	}

	for _, c := range []byte("()<>@,;:\\\"/[]?={} \t\r\n\x7f\x80") {
		assert.False(t, IsToken(c), "%q", c)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		kind   outcome.Kind
		offset int
		expect string
		labels []string
	}{
		{"bad version", "GET / HTTX/1.1\r\n", outcome.KindCut, 6, `"HTTP/"`, []string{"request line", "request"}},
		{"missing target", "GET  \r\n", outcome.KindCut, 5, "request target", []string{"request line", "request"}},
		{"header without value", "GET / HTTP/1.1\r\nHost:x\r\n\r\n", outcome.KindCut, 21, "header value", []string{"header", "request"}},
		{"no headers", "GET / HTTP/1.1\r\n\r\n", outcome.KindBacktrack, 16, "", []string{"header", "request"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(Head(), stream.NewBytes([]byte(tt.src)))

			var e *outcome.Error
			require.True(t, errors.As(err, &e), "got %v", err)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.offset, e.Offset)

			if tt.expect != "" {
				assert.Contains(t, e.Expected, tt.expect)
			}

			assert.Equal(t, tt.labels, e.Labels())
		})
	}
}

func TestPartial(t *testing.T) {
	src := []byte(pipelined)

	// Every strict prefix of a single head needs more input.
	head := strings.Index(pipelined, "\r\n\r\n") + 4

	for n := range head {
		in := stream.NewPartialBytes(src[:n])

		_, err := parser.ParsePartial(Head(), in)
		require.True(t, outcome.IsIncomplete(err), "prefix %d: %v", n, err)
	}

	in := stream.NewPartialBytes(src[:head])

	req, err := parser.ParsePartial(Head(), in)
	require.NoError(t, err)
	assert.Equal(t, "GET", string(req.Method))
	assert.Equal(t, head, in.Offset())
}

func TestReader(t *testing.T) {
	r := NewReader(iotest.OneByteReader(strings.NewReader(pipelined)))

	var methods []string

	for {
		req, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)

		methods = append(methods, string(req.Method))
	}

	assert.Equal(t, []string{"GET", "POST"}, methods)
	assert.Equal(t, len(pipelined), r.Offset())
}

func TestReader_Truncated(t *testing.T) {
	r := NewReader(strings.NewReader("GET / HTTP/1.1\r\nHost: a\r\n"))

	_, err := r.Next()
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}

func TestReader_TooLarge(t *testing.T) {
	r := NewReader(strings.NewReader("GET /" + strings.Repeat("a", 100)))
	r.SetMaxHead(32)

	_, err := r.Next()
	assert.ErrorIs(t, err, ErrHeadTooLarge)
}
