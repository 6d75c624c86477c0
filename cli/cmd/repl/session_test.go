package repl

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/knit/format"
	"github.com/ardnew/knit/log"
	"github.com/ardnew/knit/pkg"
)

func newTestSession(t *testing.T, name string) *Session {
	t.Helper()

	f, err := format.Lookup(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return NewSession(context.Background(), f, log.Make(io.Discard))
}

func newTestModel(t *testing.T) model {
	t.Helper()

	return newModel(context.Background(), newTestSession(t, "json"), NewHistory(""), log.Make(io.Discard))
}

func TestSessionEval(t *testing.T) {
	tests := []struct {
		format string
		line   string
		want   string
	}{
		{"json", `{"b": [1, 2.5], "a": null}`, `{"b":[1,2.5],"a":null}`},
		{"arith", "2 * (3 + 4)", `{"expr":"(2 * (3 + 4))","value":14}`},
		{"ini", `[log]\nlevel = debug`, `{"log":{"level":"debug"}}`},
		{"http", `GET / HTTP/1.1\r\nHost: x\r\n\r\n`,
			`[{"method":"GET","uri":"/","version":"1.1","headers":{"Host":"x"}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			s := newTestSession(t, tt.format)

			got, err := s.Eval(tt.line)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSessionEvalCached(t *testing.T) {
	s := newTestSession(t, "json")

	for range 3 {
		if _, err := s.Eval("[1]"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if n := s.cache.Len(); n != 1 {
		t.Errorf("expected 1 cached entry, got %d", n)
	}
}

func TestSessionExplain(t *testing.T) {
	s := newTestSession(t, "json")

	_, err := s.Eval(`{"a" 1}`)
	if err == nil {
		t.Fatal("expected error")
	}

	got := s.Explain(`{"a" 1}`, err)
	for _, want := range []string{"json:1:6", `{"a" 1}`, "^"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected report to contain %q, got:\n%s", want, got)
		}
	}

	if got := s.Explain("x", errors.New("boom")); got != "error: boom" {
		t.Errorf("expected plain error, got %q", got)
	}
}

func TestSessionCommand(t *testing.T) {
	tests := []struct {
		line    string
		action  action
		out     string
		wantErr error
	}{
		{"quit", actionQuit, "", nil},
		{"q", actionQuit, "", nil},
		{"exit", actionQuit, "", nil},
		{"clear", actionClear, "", nil},
		{"format arith", actionNone, "format: arith", nil},
		{"f INI", actionNone, "format: ini", nil},
		{"format", actionNone, "", ErrUsage},
		{"format jsn", actionNone, "", pkg.ErrUnknownFormat},
		{"", actionNone, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s := newTestSession(t, "json")

			out, act, err := s.Command(tt.line)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if act != tt.action || out != tt.out {
				t.Errorf("expected (%q, %d), got (%q, %d)", tt.out, tt.action, out, act)
			}
		})
	}
}

func TestSessionCommandFormatSwitch(t *testing.T) {
	s := newTestSession(t, "json")

	if _, _, err := s.Command("format arith"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Format().Name != "arith" {
		t.Errorf("expected arith, got %s", s.Format().Name)
	}

	list, _, err := s.Command("formats")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(list, "* arith") {
		t.Errorf("expected arith marked current, got:\n%s", list)
	}

	if _, _, err := s.Command("bogus"); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestModelModeToggle(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("[1,")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)

	if m.mode != modeCtrl {
		t.Fatalf("expected command mode, got %d", m.mode)
	}

	if m.input.Value() != "" {
		t.Errorf("expected empty command input, got %q", m.input.Value())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)

	if m.mode != modeEval || m.input.Value() != "[1," {
		t.Errorf("expected restored eval input, got mode %d input %q", m.mode, m.input.Value())
	}
}

func TestModelTabCompletion(t *testing.T) {
	m := newTestModel(t)
	m = m.switchToMode(modeCtrl)

	for _, r := range "qu" {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(model)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)

	if got := m.input.Value(); got != "quit" {
		t.Errorf("expected quit, got %q", got)
	}
}

func TestModelHistoryRecall(t *testing.T) {
	m := newTestModel(t)

	if err := m.history.Add("[1]", modeEval); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := m.history.Add("formats", modeCtrl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.historyIdx = m.history.Len()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(model)

	if m.mode != modeCtrl || m.input.Value() != "formats" {
		t.Errorf("expected command formats, got mode %d input %q", m.mode, m.input.Value())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(model)

	if m.mode != modeEval || m.input.Value() != "[1]" {
		t.Errorf("expected eval [1], got mode %d input %q", m.mode, m.input.Value())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)

	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("expected cleared input past newest entry, got %q at %d", m.input.Value(), m.historyIdx)
	}
}
