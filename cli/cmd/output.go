package cmd

import (
	"context"
	stdjson "encoding/json"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Output encodings.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// encoder writes parse results to an output stream. Successive YAML values
// are separated into documents; JSON values are newline-delimited.
type encoder struct {
	w      io.Writer
	output string
	indent int
	count  int
}

func newEncoder(w io.Writer, output string, indent int) *encoder {
	return &encoder{w: w, output: output, indent: indent}
}

// Encode writes v.
func (e *encoder) Encode(ctx context.Context, v any) error {
	defer func() { e.count++ }()

	if e.output == OutputYAML {
		return e.yaml(ctx, v)
	}

	return e.json(v)
}

func (e *encoder) json(v any) error {
	enc := stdjson.NewEncoder(e.w)
	enc.SetEscapeHTML(false)

	if e.indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", e.indent))
	}

	if err := enc.Encode(v); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

func (e *encoder) yaml(ctx context.Context, v any) error {
	var opts []yaml.EncodeOption
	if e.indent > 0 {
		opts = append(opts, yaml.Indent(e.indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	if e.count > 0 {
		if _, err := io.WriteString(e.w, "---\n"); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	if _, err := e.w.Write(data); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
