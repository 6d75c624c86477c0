package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"second_word", "format js", 9, "js", 7, 9},
		{"mid_word", "formats", 3, "formats", 0, 7},
		{"at_start", "help", 0, "help", 0, 4},
		{"empty_after_space", "format ", 7, "", 7, 7},
		{"between_spaces", "a  b", 2, "", 2, 2},
		{"tab_separated", "f\tin", 4, "in", 2, 4},
		{"multibyte", "format ✓x", 11, "✓x", 7, 11},
		{"cursor_clamped_high", "quit", 99, "quit", 0, 4},
		{"cursor_clamped_low", "quit", -1, "quit", 0, 4},
		{"empty", "", 0, "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      []string
	}{
		{"first_word", "fo", 0, ctrlCommands},
		{"format_arg", "format j", 7, []string{"json", "ini", "arith", "http"}},
		{"short_alias_arg", "f ", 2, []string{"json", "ini", "arith", "http"}},
		{"help_arg", "help x", 5, nil},
		{"third_word", "format json x", 12, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := candidates(tt.input, tt.wordStart)
			if !slices.Equal(got, tt.want) {
				t.Errorf("candidates(%q, %d) = %v, want %v", tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestComputeMatches(t *testing.T) {
	tests := []struct {
		name  string
		mode  inputMode
		input string
		want  []string
	}{
		{"eval_mode_never_completes", modeEval, "fo", nil},
		{"command_prefix", modeCtrl, "qu", []string{"quit"}},
		{"fuzzy_command", modeCtrl, "fmts", []string{"formats"}},
		{"all_formats_after_space", modeCtrl, "format ", []string{"json", "ini", "arith", "http"}},
		{"format_prefix", modeCtrl, "format ht", []string{"http"}},
		{"empty_first_word", modeCtrl, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			m.mode = tt.mode
			m.input.SetValue(tt.input)
			m.input.SetCursor(len(tt.input))

			matches, _, end := m.computeMatches()
			if end != len(tt.input) {
				t.Errorf("expected word end %d, got %d", len(tt.input), end)
			}

			var got []string
			for _, match := range matches {
				got = append(got, match.Str)
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRenderCandidateBar(t *testing.T) {
	var matches fuzzy.Matches
	for i, s := range []string{"alpha", "bravo", "charlie", "delta"} {
		matches = append(matches, fuzzy.Match{Str: s, Index: i})
	}

	if got := renderCandidateBar(matches, -1, false, 0); got != "" {
		t.Errorf("expected empty bar for zero width, got %q", got)
	}

	full := renderCandidateBar(matches, -1, false, 80)
	for _, m := range matches {
		if !strings.Contains(full, m.Str) {
			t.Errorf("expected bar to contain %q, got %q", m.Str, full)
		}
	}

	narrow := renderCandidateBar(matches, 1, true, 16)
	if !strings.Contains(narrow, "...") {
		t.Errorf("expected ellipsis in narrow bar, got %q", narrow)
	}

	if strings.Contains(narrow, "charlie") {
		t.Errorf("expected charlie to be elided, got %q", narrow)
	}

	if w := lipgloss.Width(narrow); w >= lipgloss.Width(full) {
		t.Errorf("expected narrow bar (%d) to be shorter than full bar (%d)", w, lipgloss.Width(full))
	}
}
