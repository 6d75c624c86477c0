// Package format registers the grammars built on knit under stable names so
// that commands can select them by name or file extension.
//
// Parse results are plain values ready for encoding: nil, bool, float64,
// string, []any, and [json.Object] for ordered mappings.
package format

import (
	"bytes"
	"io"
	"iter"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/knit/format/arith"
	"github.com/ardnew/knit/format/httpreq"
	"github.com/ardnew/knit/format/ini"
	"github.com/ardnew/knit/format/json"
	"github.com/ardnew/knit/pkg"
)

// Decoder yields successive values from a stream. Next returns [io.EOF]
// when the stream ends cleanly.
type Decoder interface {
	Next() (any, error)
}

// Format describes a registered grammar.
type Format struct {
	Name        string
	Description string
	Extensions  []string

	// Parse parses a complete document.
	Parse func(src []byte) (any, error)

	// Decode returns a Decoder reading values from r as input arrives. It is
	// nil for formats without a streaming form.
	Decode func(r io.Reader) Decoder
}

// Streams reports whether f has a streaming form.
func (f Format) Streams() bool { return f.Decode != nil }

var registry = []Format{
	{
		Name:        "json",
		Description: "JSON values (RFC 8259)",
		Extensions:  []string{".json"},
		Parse:       func(src []byte) (any, error) { return json.Parse(string(src)) },
		Decode:      func(r io.Reader) Decoder { return json.NewDecoder(r) },
	},
	{
		Name:        "ini",
		Description: "INI configuration files",
		Extensions:  []string{".ini", ".cfg", ".conf"},
		Parse: func(src []byte) (any, error) {
			f, err := ini.Parse(src)
			if err != nil {
				return nil, err
			}

			return iniValue(f), nil
		},
	},
	{
		Name:        "arith",
		Description: "arithmetic expressions, cross-checked with expr-lang",
		Extensions:  []string{".expr", ".calc"},
		Parse: func(src []byte) (any, error) {
			e, err := arith.Parse(string(src))
			if err != nil {
				return nil, err
			}

			v, err := arith.Verify(e, nil)
			if err != nil {
				return nil, err
			}

			return json.Object{{Key: "expr", Value: e.String()}, {Key: "value", Value: v}}, nil
		},
	},
	{
		Name:        "http",
		Description: "HTTP/1.x request heads",
		Extensions:  []string{".http"},
		Parse: func(src []byte) (any, error) {
			reqs, err := httpreq.Parse(src)
			if err != nil {
				return nil, err
			}

			out := make([]any, len(reqs))
			for i := range reqs {
				out[i] = requestValue(&reqs[i])
			}

			return out, nil
		},
		Decode: func(r io.Reader) Decoder { return requestDecoder{httpreq.NewReader(r)} },
	},
}

// All returns every registered format in registration order.
func All() iter.Seq[Format] { return slices.Values(registry) }

// Names returns the registered format names in registration order.
func Names() []string {
	names := make([]string, len(registry))
	for i, f := range registry {
		names[i] = f.Name
	}

	return names
}

// Lookup returns the format named name. An unknown name yields
// [pkg.ErrUnknownFormat] with the closest registered name, if any.
func Lookup(name string) (Format, error) {
	for _, f := range registry {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}

	if s, ok := Suggest(name); ok {
		return Format{}, pkg.ErrUnknownFormat.Wrapf("%q (did you mean %q?)", name, s)
	}

	return Format{}, pkg.ErrUnknownFormat.Wrapf("%q (known: %s)", name, strings.Join(Names(), ", "))
}

// Detect returns the format registered for the extension of path.
func Detect(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range registry {
		if slices.Contains(f.Extensions, ext) {
			return f, true
		}
	}

	return Format{}, false
}

// Suggest returns the registered name that best fuzzy-matches name.
func Suggest(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	matches := fuzzy.Find(strings.ToLower(name), Names())
	if len(matches) == 0 {
		return "", false
	}

	return matches[0].Str, true
}

func iniValue(f *ini.File) json.Object {
	var out json.Object

	for _, s := range f.Sections {
		entries := make(json.Object, len(s.Entries))
		for i, e := range s.Entries {
			entries[i] = json.Member{Key: string(e.Key), Value: string(e.Value)}
		}

		if s.Name == nil {
			out = append(out, entries...)

			continue
		}

		out = append(out, json.Member{Key: string(s.Name), Value: entries})
	}

	return out
}

func requestValue(r *httpreq.Request) json.Object {
	headers := make(json.Object, len(r.Headers))
	for i, h := range r.Headers {
		headers[i] = json.Member{Key: string(h.Name), Value: string(bytes.Join(h.Value, []byte{' '}))}
	}

	return json.Object{
		{Key: "method", Value: string(r.Method)},
		{Key: "uri", Value: string(r.URI)},
		{Key: "version", Value: string(r.Version)},
		{Key: "headers", Value: headers},
	}
}

type requestDecoder struct{ r *httpreq.Reader }

func (d requestDecoder) Next() (any, error) {
	req, err := d.r.Next()
	if err != nil {
		return nil, err
	}

	return requestValue(req), nil
}
