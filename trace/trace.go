// Package trace instruments parsers with entry and exit records logged at
// [log.LevelTrace].
//
// Wrapping a rule costs one level check per call when tracing is disabled,
// so traced grammars can stay traced in production builds.
package trace

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/ardnew/knit/log"
	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/stream"
)

// PreviewLen is the maximum number of units of upcoming input included in
// an entry record.
const PreviewLen = 16

// Tracer writes trace records for the parsers it wraps. Nesting depth is
// shared by every parser wrapped with the same Tracer, so a Tracer should
// only be used by one parse at a time.
type Tracer struct {
	logger log.Logger
	ctx    context.Context
	depth  atomic.Int32
}

// New returns a Tracer writing to logger. A zero logger selects the
// package-level default logger at each call.
func New(ctx context.Context, logger log.Logger) *Tracer {
	if ctx == nil {
		ctx = context.Background()
	}

	return &Tracer{logger: logger, ctx: ctx}
}

var std = New(context.Background(), log.Logger{})

func (t *Tracer) target() log.Logger {
	if t.logger.Logger == nil {
		return log.Default()
	}

	return t.logger
}

// Trace wraps p with the default Tracer, which logs through the
// package-level logger.
func Trace[T, S, O any](name string, p parser.Parser[T, S, O]) parser.Parser[T, S, O] {
	return Wrap(std, name, p)
}

// Wrap returns a parser that behaves exactly like p and logs an "enter"
// record before and a "leave" record after every invocation. A [parser.Cut]
// inside p commits an enclosing sequence just as it would unwrapped.
func Wrap[T, S, O any](t *Tracer, name string, p parser.Parser[T, S, O]) parser.Parser[T, S, O] {
	return parser.Forward(p, parser.Func[T, S, O](func(in stream.Stream[T, S]) (O, error) {
		logger := t.target()
		if !logger.Allows(t.ctx, log.LevelTrace) {
			return p.ParseNext(in)
		}

		depth := int(t.depth.Add(1))
		defer t.depth.Add(-1)

		start := in.Offset()

		logger.TraceContext(t.ctx, "enter",
			slog.String("parser", name),
			slog.Int("depth", depth),
			slog.Int("offset", start),
			slog.String("input", preview(in)),
		)

		out, err := p.ParseNext(in)

		attrs := []slog.Attr{
			slog.String("parser", name),
			slog.Int("depth", depth),
			slog.Int("offset", in.Offset()),
			slog.Int("consumed", in.Offset()-start),
		}

		if err != nil {
			attrs = append(attrs,
				slog.String("result", outcome.KindOf(err).String()),
				slog.Any("error", outcome.From(err, in.Offset())),
			)
		} else {
			attrs = append(attrs,
				slog.String("result", "ok"),
				slog.String("output", fmt.Sprintf("%v", out)),
			)
		}

		logger.TraceContext(t.ctx, "leave", attrs...)

		return out, err
	}))
}

func preview[T, S any](in stream.Stream[T, S]) string {
	n := min(in.Len(), PreviewLen)

	s, err := in.PeekSlice(n)
	if err != nil {
		return ""
	}

	q := fmt.Sprintf("%q", any(s))
	if in.Len() > n {
		q += "..."
	}

	return q
}
