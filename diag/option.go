package diag

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/knit/outcome"
)

// DefaultTabWidth is the tab stop used when expanding source lines.
const DefaultTabWidth = 4

type config struct {
	renderer *lipgloss.Renderer
	tabWidth int
}

// Option configures rendering.
type Option func(config) config

func makeConfig(opts ...Option) config {
	cfg := config{tabWidth: DefaultTabWidth}
	for _, opt := range opts {
		if opt != nil {
			cfg = opt(cfg)
		}
	}

	return cfg
}

// WithRenderer sets the lipgloss renderer that decides the color profile.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(c config) config {
		c.renderer = r

		return c
	}
}

// WithTabWidth sets the tab stop width. Values below 1 are ignored.
func WithTabWidth(n int) Option {
	return func(c config) config {
		if n > 0 {
			c.tabWidth = n
		}

		return c
	}
}

type styles struct {
	location, gutter, caret lipgloss.Style
	kinds                   map[outcome.Kind]lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	color := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return styles{
		location: r.NewStyle().Bold(true),
		gutter:   color("8"),
		caret:    color("1").Bold(true),
		kinds: map[outcome.Kind]lipgloss.Style{
			outcome.KindBacktrack:  color("3"),
			outcome.KindCut:        color("1").Bold(true),
			outcome.KindIncomplete: color("5"),
		},
	}
}

func (s styles) kind(k outcome.Kind) lipgloss.Style {
	if st, ok := s.kinds[k]; ok {
		return st
	}

	return s.location
}
