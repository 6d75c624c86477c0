// Package ini parses INI configuration files.
//
//	; comment
//	name = knit
//
//	[log]
//	level  = debug   # trailing comment
//	format = "json"
//
// Entries before the first section header belong to the unnamed global
// section. Keys and values alias the parsed buffer; they are valid as long
// as it is not modified.
package ini

import (
	"bytes"

	"github.com/ardnew/knit/ascii"
	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/stream"
	"github.com/ardnew/knit/token"
)

type byteParser[O any] = parser.Parser[byte, []byte, O]

// Entry is a key/value pair.
type Entry struct {
	Key    []byte
	Value  []byte
	Offset int // offset of the key
}

// Section is a named group of entries. The global section has a nil Name.
type Section struct {
	Name    []byte
	Offset  int // offset of the header, or of the first global entry
	Entries []Entry
}

// File is a parsed INI document.
type File struct {
	Sections []Section
}

// Lookup returns the value of the last entry named key in the last section
// named section. An empty section selects global entries.
func (f *File) Lookup(section, key string) ([]byte, bool) {
	for i := len(f.Sections) - 1; i >= 0; i-- {
		s := f.Sections[i]
		if string(s.Name) != section {
			continue
		}

		for j := len(s.Entries) - 1; j >= 0; j-- {
			if string(s.Entries[j].Key) == key {
				return s.Entries[j].Value, true
			}
		}
	}

	return nil, false
}

// Flatten returns every entry keyed by "section.key", or by "key" for
// global entries. Later entries override earlier ones.
func (f *File) Flatten() map[string]string {
	m := make(map[string]string)

	for _, s := range f.Sections {
		prefix := ""
		if s.Name != nil {
			prefix = string(s.Name) + "."
		}

		for _, e := range s.Entries {
			m[prefix+string(e.Key)] = string(e.Value)
		}
	}

	return m
}

// Parse parses src.
func Parse(src []byte) (*File, error) {
	return parser.Parse(Grammar(), stream.NewBytes(src))
}

// Grammar returns the parser for a complete INI document.
func Grammar() byteParser[*File] {
	entries := parser.Repeat0(parser.Terminated(KeyValue(), filler()))

	section := parser.Context("section", parser.Map(
		parser.Seq2(parser.WithSpan(Header()), parser.Preceded(filler(), entries)),
		func(p parser.Pair[parser.Pair[[]byte, parser.Range], []Entry]) Section {
			return Section{Name: p.First.First, Offset: p.First.Second.Start, Entries: p.Second}
		},
	))

	global := parser.Map(entries, func(es []Entry) []Section {
		if len(es) == 0 {
			return nil
		}

		return []Section{{Offset: es[0].Offset, Entries: es}}
	})

	file := parser.Map(
		parser.Seq2(global, parser.Repeat0(section)),
		func(p parser.Pair[[]Section, []Section]) *File {
			return &File{Sections: append(p.First, p.Second...)}
		},
	)

	return parser.Delimited(
		filler(),
		file,
		parser.Expect("section or entry", parser.Eof[byte, []byte]()),
	)
}

func isKey(c byte) bool {
	return ascii.IsAlphanumeric(c) || c == '-' || c == '_' || c == '.'
}

func char(c byte) byteParser[byte] { return ascii.Char[byte, []byte](c) }

func space() byteParser[[]byte] { return ascii.Space0[byte, []byte]() }

func comment() byteParser[[]byte] {
	return parser.Recognize(parser.Seq2(
		token.OneOf[byte, []byte](';', '#'),
		ascii.NotLineEnding[byte, []byte](),
	))
}

// filler skips blank space, line breaks, and comment lines.
func filler() byteParser[int] {
	return parser.Count(0, parser.Unbounded, parser.Alt(
		ascii.Multispace1[byte, []byte](),
		comment(),
	))
}

// lineEnd matches optional trailing space and comment, then a line ending
// or the end of input.
func lineEnd() byteParser[struct{}] {
	end := parser.Expect("end of line", parser.Alt(
		parser.Void(ascii.LineEnding[byte, []byte]()),
		parser.Eof[byte, []byte](),
	))

	return parser.Void(parser.Seq3(space(), parser.Opt(comment()), end))
}

// Header parses a section header line and returns the section name.
func Header() byteParser[[]byte] {
	name := parser.Map(
		token.TakeWhile1[byte, []byte](func(c byte) bool { return c != ']' && c != '\r' && c != '\n' }),
		func(b []byte) []byte { return bytes.TrimSpace(b) },
	)

	return parser.Preceded(
		char('['),
		parser.Cut(parser.Terminated(parser.Expect("section name", name), parser.Seq2(char(']'), lineEnd()))),
	)
}

// KeyValue parses one "key = value" line.
func KeyValue() byteParser[Entry] {
	key := parser.Expect("key", token.TakeWhile1[byte, []byte](isKey))

	quoted := parser.Preceded(
		char('"'),
		parser.Cut(parser.Terminated(
			token.TakeTill[byte, []byte](func(c byte) bool { return c == '"' || c == '\r' || c == '\n' }),
			char('"'),
		)),
	)

	bare := parser.Map(
		token.TakeTill[byte, []byte](func(c byte) bool { return c == ';' || c == '#' || c == '\r' || c == '\n' }),
		func(b []byte) []byte { return bytes.TrimRight(b, " \t") },
	)

	return parser.Context("entry", parser.Map(
		parser.WithSpan(parser.Seq4(
			key,
			parser.Cut(parser.Delimited(space(), char('='), space())),
			parser.Alt(quoted, bare),
			lineEnd(),
		)),
		func(p parser.Pair[parser.Quad[[]byte, byte, []byte, struct{}], parser.Range]) Entry {
			return Entry{Key: p.First.First, Value: p.First.Third, Offset: p.Second.Start}
		},
	))
}
