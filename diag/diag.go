// Package diag renders parse failures against the source they came from.
//
// Given the input and an [outcome.Error], [Render] prints the line and
// column of the failure, what was expected, the chain of rules being
// parsed, and the offending source line with a caret under the failure:
//
//	config.ini:3:7: cut: expected "=" while parsing entry while parsing section
//	  3 | color blue
//	    |       ^
//
// Offsets are byte offsets into the source. Columns count grapheme clusters,
// and the caret is aligned by display width so wide and combining runes
// line up in a terminal.
package diag

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	rw "github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/ardnew/knit/outcome"
)

// Position identifies a location in a source buffer.
type Position struct {
	Offset int // byte offset, clamped to the source
	Line   int // 1-based
	Column int // 1-based, in grapheme clusters

	// byte range of the line containing Offset, without its terminator
	lineStart, lineEnd int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Locate returns the position of offset within src. Lines end at "\n"; a
// preceding "\r" is not part of the line.
func Locate(src []byte, offset int) Position {
	offset = max(0, min(offset, len(src)))

	p := Position{Offset: offset, Line: 1}

	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			p.Line++
			p.lineStart = i + 1
		}
	}

	p.lineEnd = len(src)
	if i := bytes.IndexByte(src[offset:], '\n'); i >= 0 {
		p.lineEnd = offset + i
	}

	if p.lineEnd > p.lineStart && src[p.lineEnd-1] == '\r' {
		p.lineEnd--
	}

	p.Column = uniseg.GraphemeClusterCount(string(src[p.lineStart:min(offset, p.lineEnd)])) + 1

	return p
}

// Message describes a failure without its location:
//
//	expected X while parsing Y while parsing Z
//
// Incomplete failures describe the missing input instead, and a cause is
// appended after a colon.
func Message(e *outcome.Error) string {
	var parts []string

	switch {
	case e.Kind == outcome.KindIncomplete:
		parts = append(parts, "unexpected end of input, need "+e.Needed.String()+" more")
		if len(e.Expected) > 0 {
			parts = append(parts, "expected "+outcome.ExpectedString(e.Expected))
		}

	case len(e.Expected) > 0:
		parts = append(parts, "expected "+outcome.ExpectedString(e.Expected))

	default:
		parts = append(parts, "syntax error")
	}

	for _, f := range e.Context {
		parts = append(parts, "while parsing "+f.Label)
	}

	msg := strings.Join(parts, " ")
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

// Report is a rendered failure, ready to print.
type Report struct {
	Name  string
	Pos   Position
	Kind  outcome.Kind
	Text  string // result of Message
	Line  string // source line, tabs expanded
	Caret int    // display column of the caret, 0-based
	Width int    // display width of the underlined span, at least 1
}

// NewReport builds the report for err against src. A nil err yields nil.
func NewReport(name string, src []byte, err error, opts ...Option) *Report {
	e := outcome.From(err, 0)
	if e == nil {
		return nil
	}

	cfg := makeConfig(opts...)
	pos := Locate(src, e.Offset)

	line := string(src[pos.lineStart:pos.lineEnd])
	prefix := line[:min(pos.Offset-pos.lineStart, len(line))]

	width := 1
	if rest := line[len(prefix):]; rest != "" {
		cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(rest, -1)
		width = max(1, rw.StringWidth(expand(cluster, cfg.tabWidth)))
	}

	return &Report{
		Name:  name,
		Pos:   pos,
		Kind:  e.Kind,
		Text:  Message(e),
		Line:  expand(line, cfg.tabWidth),
		Caret: rw.StringWidth(expand(prefix, cfg.tabWidth)),
		Width: width,
	}
}

// Render writes the report for err against src to w. Colors follow the
// terminal capabilities of w unless overridden with [WithRenderer].
func Render(w io.Writer, name string, src []byte, err error, opts ...Option) error {
	r := NewReport(name, src, err, opts...)
	if r == nil {
		return nil
	}

	cfg := makeConfig(opts...)
	if cfg.renderer == nil {
		cfg.renderer = lipgloss.NewRenderer(w)
	}

	_, werr := io.WriteString(w, r.render(newStyles(cfg.renderer)))

	return werr
}

// String renders the report without color.
func (r *Report) String() string {
	return r.render(newStyles(lipgloss.NewRenderer(io.Discard)))
}

func (r *Report) render(s styles) string {
	var sb strings.Builder

	loc := r.Pos.String()
	if r.Name != "" {
		loc = r.Name + ":" + loc
	}

	fmt.Fprintf(&sb, "%s: %s: %s\n",
		s.location.Render(loc), s.kind(r.Kind).Render(r.Kind.String()), r.Text)

	num := strconv.Itoa(r.Pos.Line)
	pad := strings.Repeat(" ", len(num))

	fmt.Fprintf(&sb, "  %s %s\n", s.gutter.Render(num+" |"), r.Line)
	fmt.Fprintf(&sb, "  %s %s%s\n", s.gutter.Render(pad+" |"),
		strings.Repeat(" ", r.Caret), s.caret.Render("^"+strings.Repeat("~", r.Width-1)))

	return sb.String()
}

// expand replaces tabs with spaces up to the next multiple of width.
func expand(s string, width int) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}

	var sb strings.Builder

	col := 0

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]

		if r == '\t' {
			n := width - col%width
			sb.WriteString(strings.Repeat(" ", n))
			col += n

			continue
		}

		sb.WriteRune(r)
		col += rw.RuneWidth(r)
	}

	return sb.String()
}
