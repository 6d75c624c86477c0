package repl

import (
	"context"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/knit/diag"
	"github.com/ardnew/knit/format"
	"github.com/ardnew/knit/log"
	"github.com/ardnew/knit/outcome"
)

// action tells the terminal model what to do after a command.
type action int

const (
	actionNone action = iota
	actionClear
	actionQuit
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "formats", "format", "clear", "quit"}

// escapes turns the escape sequences typed on one line into the control
// characters multi-line formats need.
var escapes = strings.NewReplacer(`\n`, "\n", `\r`, "\r", `\t`, "\t", `\\`, `\`)

// Session evaluates REPL input against the selected format. It holds no
// terminal state.
type Session struct {
	ctx      context.Context
	format   format.Format
	cache    format.Cache
	logger   log.Logger
	renderer *lipgloss.Renderer
}

// NewSession returns a Session parsing with f.
func NewSession(ctx context.Context, f format.Format, logger log.Logger) *Session {
	return &Session{ctx: ctx, format: f, logger: logger, renderer: lipgloss.DefaultRenderer()}
}

// Format returns the selected format.
func (s *Session) Format() format.Format { return s.format }

// Eval parses line with the selected format and returns the result encoded
// as compact JSON. Escape sequences \n, \r, \t, and \\ in line are decoded
// first.
func (s *Session) Eval(line string) (string, error) {
	src := []byte(escapes.Replace(line))

	v, hit, err := s.cache.Parse(s.format, src)

	s.logger.TraceContext(s.ctx, "repl eval",
		slog.String("format", s.format.Name),
		slog.Int("bytes", len(src)),
		slog.Bool("cache_hit", hit),
		slog.Bool("ok", err == nil),
	)

	if err != nil {
		return "", err
	}

	out, err := stdjson.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(out), nil
}

// Explain renders err from evaluating line. Parse failures get a source
// excerpt with a caret.
func (s *Session) Explain(line string, err error) string {
	var e *outcome.Error
	if !errors.As(err, &e) {
		return "error: " + err.Error()
	}

	var sb strings.Builder

	_ = diag.Render(&sb, s.format.Name, []byte(escapes.Replace(line)), e, diag.WithRenderer(s.renderer))

	return strings.TrimRight(sb.String(), "\n")
}

// Command runs a control-mode command.
func (s *Session) Command(line string) (string, action, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", actionNone, nil
	}

	name, args := fields[0], fields[1:]

	s.logger.TraceContext(s.ctx, "repl command",
		slog.String("command", name),
		slog.Any("args", args),
	)

	switch name {
	case "q", "quit", "exit":
		return "", actionQuit, nil

	case "c", "clear":
		return "", actionClear, nil

	case "h", "help":
		return helpMessage(), actionNone, nil

	case "formats":
		return s.listFormats(), actionNone, nil

	case "f", "format":
		if len(args) != 1 {
			return "", actionNone, fmt.Errorf("%w: format NAME", ErrUsage)
		}

		f, err := format.Lookup(args[0])
		if err != nil {
			return "", actionNone, err
		}

		s.format = f

		return "format: " + f.Name, actionNone, nil
	}

	return "", actionNone, fmt.Errorf("unknown command %q (try 'help')", name)
}

func (s *Session) listFormats() string {
	var b strings.Builder

	for f := range format.All() {
		mark := " "
		if f.Name == s.format.Name {
			mark = "*"
		}

		fmt.Fprintf(&b, "%s %-6s %s\n", mark, f.Name, f.Description)
	}

	return strings.TrimRight(b.String(), "\n")
}

func helpMessage() string {
	return `Commands (press Esc to toggle mode):

  help            Print this message
  formats         List registered formats
  format NAME     Parse input with format NAME
  clear           Clear screen
  quit            Exit REPL

Usage:
  Type input to parse it with the current format
  Write \n, \r, and \t for line breaks and tabs in multi-line formats
  Press Tab / Shift-Tab to cycle through completions in command mode
  Use Up/Down arrows for history navigation
  Press Ctrl+C on empty line or Ctrl+D to exit`
}
