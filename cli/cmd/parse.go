package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/knit/diag"
	"github.com/ardnew/knit/format"
	"github.com/ardnew/knit/log"
	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/pkg"
)

// Parse parses whole documents and prints each result.
type Parse struct {
	Format string   `help:"Input format (default: detect from file extension)" placeholder:"NAME" short:"f"`
	Output string   `default:"json" enum:"json,yaml" help:"Output encoding"                            short:"o"`
	Indent int      `default:"2"                     help:"Indent width; 0 selects compact output"     short:"i"`
	Jobs   int      `default:"0"                     help:"Inputs parsed concurrently (0: one per CPU)" short:"j"`
	Glob   []string `help:"Also parse files matching a doublestar pattern" placeholder:"PATTERN" short:"g"`

	Sources []string `arg:"" help:"Input files or '-' for stdin" name:"source" optional:""`
}

// parsed is the outcome of parsing one input.
type parsed struct {
	in    input
	src   []byte
	value any
	err   error
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	con := consoleFrom(ctx)

	inputs, err := p.inputs(ctx)
	if err != nil {
		return err
	}

	var fixed *format.Format

	if p.Format != "" {
		f, err := format.Lookup(p.Format)
		if err != nil {
			return ErrSelectFormat.Wrap(err)
		}

		fixed = &f
	}

	// Resolve every format before reading anything.
	formats := make([]format.Format, len(inputs))
	for i, in := range inputs {
		if formats[i], err = selectFormat(fixed, in); err != nil {
			return err
		}
	}

	results := make([]parsed, len(inputs))

	var cache format.Cache

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.jobs())

	for i, in := range inputs {
		g.Go(func() error {
			src, err := readAll(in, con.In)
			if err != nil {
				return err
			}

			value, hit, err := cache.Parse(formats[i], src)

			log.TraceContext(gctx, "parse input",
				slog.String("source", in.Name()),
				slog.String("format", formats[i].Name),
				slog.Int("bytes", len(src)),
				slog.Bool("cache_hit", hit),
			)

			results[i] = parsed{in: in, src: src, value: value, err: err}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	enc := newEncoder(con.Out, p.Output, p.Indent)
	failed := 0

	for _, r := range results {
		if r.err != nil {
			failed++

			if err := report(ctx, con.Err, r); err != nil {
				return err
			}

			continue
		}

		if err := enc.Encode(ctx, r.value); err != nil {
			return err
		}
	}

	if failed > 0 {
		return pkg.ErrParse.Wrapf("%d of %d inputs", failed, len(results))
	}

	return nil
}

// inputs returns the inputs named by the command line. With no sources and
// no patterns, it reads stdin.
func (p *Parse) inputs(ctx context.Context) ([]input, error) {
	if len(p.Sources) == 0 && len(p.Glob) == 0 {
		return []input{{Path: stdinSource}}, nil
	}

	inputs, err := collect(ctx, p.Sources, p.Glob)
	if err != nil {
		return nil, err
	}

	if len(inputs) == 0 {
		return nil, pkg.ErrNoInput
	}

	return inputs, nil
}

func (p *Parse) jobs() int {
	if p.Jobs > 0 {
		return p.Jobs
	}

	return runtime.GOMAXPROCS(0)
}

// selectFormat returns fixed if set and otherwise the format registered for
// the extension of in.
func selectFormat(fixed *format.Format, in input) (format.Format, error) {
	if fixed != nil {
		return *fixed, nil
	}

	if in.Path == stdinSource {
		return format.Format{}, ErrSelectFormat.Wrap(pkg.ErrUnknownFormat.Wrapf("stdin requires --format"))
	}

	f, ok := format.Detect(in.Path)
	if !ok {
		return format.Format{}, ErrSelectFormat.
			With(slog.String("path", in.Path)).
			Wrap(pkg.ErrUnknownFormat.Wrapf("no format for extension %q (use --format)", filepath.Ext(in.Path)))
	}

	return f, nil
}

// report writes the diagnostic for a failed input to w.
func report(ctx context.Context, w io.Writer, r parsed) error {
	log.DebugContext(ctx, "parse failed",
		slog.String("source", r.in.Name()),
		slog.Any("error", r.err),
	)

	var err error

	var e *outcome.Error
	if errors.As(r.err, &e) {
		err = diag.Render(w, r.in.Name(), r.src, r.err, diag.WithRenderer(lipgloss.NewRenderer(w)))
	} else {
		_, err = fmt.Fprintf(w, "%s: %v\n", r.in.Name(), r.err)
	}

	if err != nil {
		return ErrWriteOutput.With(slog.String("source", r.in.Name())).Wrap(err)
	}

	return nil
}
