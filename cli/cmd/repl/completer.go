package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/knit/format"
)

// wordBounds returns the whitespace-delimited word at the cursor position
// and its byte boundaries within input. The word is empty when the cursor
// sits between spaces or at either end next to one.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if unicode.IsSpace(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if unicode.IsSpace(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// candidates returns the completion candidates for the word starting at
// wordStart: command names for the first word and format names for the
// argument of "format".
func candidates(input string, wordStart int) []string {
	prior := strings.Fields(input[:wordStart])

	switch {
	case len(prior) == 0:
		return ctrlCommands
	case len(prior) == 1 && (prior[0] == "format" || prior[0] == "f"):
		return format.Names()
	}

	return nil
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. Completion applies only in command mode.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())
	if m.mode != modeCtrl {
		return nil, wordStart, wordEnd
	}

	list := candidates(input, wordStart)
	if len(list) == 0 {
		return nil, wordStart, wordEnd
	}

	if word == "" {
		// After "format ", offer every name.
		if wordStart == 0 {
			return nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(list))
		for i, c := range list {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, wordStart, wordEnd
	}

	return fuzzy.Find(word, list), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit within the given terminal width. The selected candidate (when tabbing)
// uses the selected style.
func renderCandidateBar(matches fuzzy.Matches, suggIdx int, tabActive bool, width int) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, highlightStyle
	if selected {
		base, highlight = selectedStyle, selectedHighlightStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
