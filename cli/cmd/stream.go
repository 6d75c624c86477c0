package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/knit/format"
	"github.com/ardnew/knit/log"
	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/pkg"
)

// Stream parses a sequence of values from input as it arrives and prints
// each value as soon as it is complete.
type Stream struct {
	Format string `help:"Input format (default: detect from file extension)" placeholder:"NAME" short:"f"`
	Output string `default:"json" enum:"json,yaml" help:"Output encoding"                        short:"o"`
	Indent int    `default:"0"                     help:"Indent width; 0 selects compact output" short:"i"`

	Source string `arg:"" default:"-" help:"Input file or '-' for stdin" name:"source"`
}

// Run executes the stream command.
func (s *Stream) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	con := consoleFrom(ctx)
	in := input{Path: s.Source}

	var fixed *format.Format

	if s.Format != "" {
		f, err := format.Lookup(s.Format)
		if err != nil {
			return ErrSelectFormat.Wrap(err)
		}

		fixed = &f
	}

	f, err := selectFormat(fixed, in)
	if err != nil {
		return err
	}

	if !f.Streams() {
		return ErrSelectFormat.
			With(slog.String("format", f.Name)).
			Wrap(pkg.ErrUnknownFormat.Wrapf("%s has no streaming form (use parse)", f.Name))
	}

	r, err := openRaw(in, con.In)
	if err != nil {
		return err
	}
	defer r.Close()

	dec := f.Decode(r)
	enc := newEncoder(con.Out, s.Output, s.Indent)

	for n := 0; ; n++ {
		if err := context.Cause(ctx); err != nil {
			return err
		}

		v, err := dec.Next()
		if errors.Is(err, io.EOF) {
			log.DebugContext(ctx, "stream end",
				slog.String("source", in.Name()),
				slog.Int("values", n),
			)

			return nil
		}

		if err != nil {
			return streamError(in, n, err)
		}

		if err := enc.Encode(ctx, v); err != nil {
			return err
		}
	}
}

// streamError annotates a decode failure with its position. Consumed input
// is released while streaming, so there is no source excerpt to show.
func streamError(in input, n int, err error) error {
	var e *outcome.Error
	if !errors.As(err, &e) {
		return ErrReadInput.With(slog.String("path", in.Name())).Wrap(err)
	}

	return pkg.ErrParse.Wrapf("%s: value %d: %s at offset %d", in.Name(), n+1, e.Kind, e.Offset).Wrap(err)
}

// Formats lists the registered formats.
type Formats struct{}

// Run executes the formats command.
func (Formats) Run(ctx context.Context) error {
	con := consoleFrom(ctx)

	for f := range format.All() {
		mode := "parse"
		if f.Streams() {
			mode = "parse, stream"
		}

		if _, err := fmt.Fprintf(con.Out, "%-6s %-14s %-20v %s\n",
			f.Name, mode, f.Extensions, f.Description); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return nil
}
