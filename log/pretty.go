package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of one output. Colors are dropped when the
// writer is not a terminal.
type palette struct {
	time, source, key, message lipgloss.Style
	level                      map[slog.Level]lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	color := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return palette{
		time:    color("8"),
		source:  color("8"),
		key:     color("6"),
		message: r.NewStyle().Bold(true),
		level: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): color("5"),
			slog.Level(LevelDebug): color("4"),
			slog.Level(LevelInfo):  color("2"),
			slog.Level(LevelWarn):  color("3"),
			slog.Level(LevelError): color("1").Bold(true),
		},
	}
}

// prettyHandler writes one colorized line per record:
//
//	TIME LEVEL source message key=value group.key=value
type prettyHandler struct {
	opts   slog.HandlerOptions
	style  palette
	mu     *sync.Mutex
	w      io.Writer
	prefix string // qualified group name, with trailing dot
	attrs  []byte // preformatted attributes from WithAttrs
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		style: newPalette(w),
		mu:    &sync.Mutex{},
		w:     w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	field := func(a slog.Attr, style lipgloss.Style) {
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Equal(slog.Attr{}) {
			return
		}

		buf.WriteString(style.Render(a.Value.String()))
		buf.WriteByte(' ')
	}

	if !r.Time.IsZero() {
		field(slog.Time(slog.TimeKey, r.Time), h.style.time)
	}

	field(slog.Any(slog.LevelKey, r.Level), h.levelStyle(r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			field(slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)), h.style.source)
		}
	}

	buf.WriteString(h.style.message.Render(r.Message))
	buf.Write(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	h2 := *h

	buf := bytes.NewBuffer(append([]byte(nil), h.attrs...))
	for _, a := range attrs {
		h.appendAttr(buf, h.prefix, a)
	}

	h2.attrs = buf.Bytes()

	return &h2
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	h2 := *h
	h2.prefix = h.prefix + name + "."

	return &h2
}

func (h *prettyHandler) levelStyle(level slog.Level) lipgloss.Style {
	if s, ok := h.style.level[level]; ok {
		return s
	}

	return h.style.level[slog.Level(LevelError)]
}

// appendAttr writes a as " key=value". Groups are flattened with dotted keys
// and values implementing slog.LogValuer are resolved first.
func (h *prettyHandler) appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		group := prefix
		if a.Key != "" {
			group += a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			h.appendAttr(buf, group, ga)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.style.key.Render(prefix + a.Key))
	buf.WriteByte('=')
	buf.WriteString(quote(a.Value))
}

// quote renders v, quoting strings that would otherwise be ambiguous.
func quote(v slog.Value) string {
	var s string

	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		return v.String()
	}

	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.Quote(s)
	}

	return s
}
