// Package json is a JSON grammar built from knit combinators.
//
// Values decode to nil, bool, float64, string, []any, and [Object], which
// keeps members in document order. The grammar commits after every opening
// delimiter, so a malformed document reports the innermost failing rule
// instead of "expected value".
package json

import (
	stdjson "encoding/json"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/knit/ascii"
	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/stream"
	"github.com/ardnew/knit/token"
)

type textParser[O any] = parser.Parser[rune, string, O]

// Member is one name/value pair of an [Object].
type Member struct {
	Key   string
	Value any
}

// Object is a JSON object with members in document order. Duplicate keys
// are kept.
type Object []Member

// Get returns the value of the last member named key.
func (o Object) Get(key string) (any, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Key == key {
			return o[i].Value, true
		}
	}

	return nil, false
}

// MarshalJSON encodes o with its members in order.
func (o Object) MarshalJSON() ([]byte, error) {
	var sb strings.Builder

	sb.WriteByte('{')

	for i, m := range o {
		if i > 0 {
			sb.WriteByte(',')
		}

		k, err := stdjson.Marshal(m.Key)
		if err != nil {
			return nil, err
		}

		v, err := stdjson.Marshal(m.Value)
		if err != nil {
			return nil, err
		}

		sb.Write(k)
		sb.WriteByte(':')
		sb.Write(v)
	}

	sb.WriteByte('}')

	return []byte(sb.String()), nil
}

// MarshalYAML encodes o as an ordered YAML mapping.
func (o Object) MarshalYAML() (any, error) {
	ms := make(yaml.MapSlice, len(o))
	for i, m := range o {
		ms[i] = yaml.MapItem{Key: m.Key, Value: m.Value}
	}

	return ms, nil
}

func char(c rune) textParser[rune] { return ascii.Char[rune, string](c) }

func ws() textParser[string] { return ascii.Multispace0[rune, string]() }

// Value parses a single JSON value without surrounding whitespace.
func Value() textParser[any] {
	var v textParser[any]

	v = parser.Lazy(func() textParser[any] {
		return parser.Expect("value", parser.Alt(
			parser.Value[rune, string, string, any](nil, token.Literal[rune]("null")),
			parser.Value[rune, string, string, any](true, token.Literal[rune]("true")),
			parser.Value[rune, string, string, any](false, token.Literal[rune]("false")),
			parser.Map(String(), func(s string) any { return s }),
			parser.Map(Number(), func(f float64) any { return f }),
			parser.Map(array(v), func(a []any) any {
				if a == nil {
					return []any{}
				}

				return a
			}),
			parser.Map(object(v), func(o Object) any { return o }),
		))
	})

	return v
}

// Document parses a complete JSON text: one value with optional
// surrounding whitespace and nothing after it.
func Document() textParser[any] {
	return parser.AllConsuming(parser.Delimited(ws(), Value(), ws()))
}

// Parse decodes the JSON text src.
func Parse(src string) (any, error) {
	return parser.Parse(Document(), stream.NewText(src))
}

// Number parses a JSON number.
func Number() textParser[float64] {
	digit := ascii.IsDigit[rune]

	integer := parser.Alt(
		token.Literal[rune]("0"),
		parser.Recognize(parser.Seq2(
			token.Satisfy[rune, string]("digit", func(r rune) bool { return r >= '1' && r <= '9' }),
			token.TakeWhile[rune, string](digit),
		)),
	)

	frac := parser.Opt(parser.Preceded(char('.'), parser.Cut(ascii.Digit1[rune, string]())))
	exp := parser.Opt(parser.Preceded(
		token.OneOf[rune, string]('e', 'E'),
		parser.Cut(parser.Seq2(parser.Opt(token.OneOf[rune, string]('+', '-')), ascii.Digit1[rune, string]())),
	))

	lit := parser.Recognize(parser.Seq4(parser.Opt(char('-')), integer, frac, exp))

	return parser.Expect("number", parser.TryMap(lit, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	}))
}

// String parses a quoted JSON string and decodes its escapes.
func String() textParser[string] {
	plain := token.TakeWhile1[rune, string](func(r rune) bool {
		return r != '"' && r != '\\' && r >= 0x20
	})

	piece := parser.Alt(plain, parser.Preceded(char('\\'), parser.Cut(escape())))

	body := parser.Fold(0, parser.Unbounded, piece,
		func() *strings.Builder { return &strings.Builder{} },
		func(sb *strings.Builder, s string) *strings.Builder {
			sb.WriteString(s)

			return sb
		},
	)

	return parser.Context("string", parser.Preceded(
		char('"'),
		parser.Cut(parser.Terminated(
			parser.Map(body, (*strings.Builder).String),
			char('"'),
		)),
	))
}

var escapes = map[rune]string{
	'"': `"`, '\\': `\`, '/': "/",
	'b': "\b", 'f': "\f", 'n': "\n", 'r': "\r", 't': "\t",
}

// escape parses the escape sequence after a backslash.
func escape() textParser[string] {
	cases := make(map[rune]textParser[string], len(escapes)+1)
	for c, s := range escapes {
		cases[c] = parser.Succeed[rune, string](s)
	}

	cases['u'] = unicodeEscape()

	return parser.Expect("escape sequence", parser.Dispatch(token.Any[rune, string](), cases, nil))
}

func unicodeEscape() textParser[string] {
	hex := parser.TryMap(token.Take[rune, string](4), func(s string) (rune, error) {
		v, err := strconv.ParseUint(s, 16, 16)

		return rune(v), err
	})

	single := parser.Verify(hex, func(r rune) bool { return !utf16.IsSurrogate(r) })

	pair := parser.Map(
		parser.Verify(
			parser.SeparatedPair(hex, token.Literal[rune](`\u`), hex),
			func(p parser.Pair[rune, rune]) bool {
				return p.First >= 0xD800 && p.First < 0xDC00 && p.Second >= 0xDC00 && p.Second < 0xE000
			},
		),
		func(p parser.Pair[rune, rune]) rune { return utf16.DecodeRune(p.First, p.Second) },
	)

	return parser.Map(parser.Alt(single, pair), func(r rune) string { return string(r) })
}

func array(value textParser[any]) textParser[[]any] {
	elems := parser.Separated(0, parser.Unbounded, value, parser.Delimited(ws(), char(','), ws()))

	return parser.Context("array", parser.Preceded(
		parser.Seq2(char('['), ws()),
		parser.Cut(parser.Terminated(elems, parser.Seq2(ws(), char(']')))),
	))
}

func object(value textParser[any]) textParser[Object] {
	member := parser.Map(
		parser.SeparatedPair(String(), parser.Cut(parser.Delimited(ws(), char(':'), ws())), value),
		func(p parser.Pair[string, any]) Member { return Member{Key: p.First, Value: p.Second} },
	)

	members := parser.Map(
		parser.Separated(0, parser.Unbounded, member, parser.Delimited(ws(), char(','), ws())),
		func(ms []Member) Object { return Object(ms) },
	)

	return parser.Context("object", parser.Preceded(
		parser.Seq2(char('{'), ws()),
		parser.Cut(parser.Terminated(members, parser.Seq2(ws(), char('}')))),
	))
}
