// Package styles holds the lipgloss styles of the dump viewer and the
// colored tree output.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/foldlog/internal/modlog"
)

// Styles is a complete set of styles built from one palette.
type Styles struct {
	Title     lipgloss.Style
	Header    lipgloss.Style
	Muted     lipgloss.Style
	Selected  lipgloss.Style
	FoldPoint lipgloss.Style
	Details   lipgloss.Style
	HelpBar   lipgloss.Style
	HelpKey   lipgloss.Style
	StatusBar lipgloss.Style
	ErrorMsg  lipgloss.Style

	levels map[modlog.Level]lipgloss.Style
}

// New builds styles from p.
func New(p *ColorPalette) *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(p.Border),

		Muted: lipgloss.NewStyle().Foreground(p.Muted),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text).
			Background(p.Surface),

		FoldPoint: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true),

		Details: lipgloss.NewStyle().
			Foreground(p.Muted).
			PaddingLeft(4),

		HelpBar: lipgloss.NewStyle().Foreground(p.Muted),

		HelpKey: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Secondary),

		StatusBar: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.Surface).
			Padding(0, 1),

		ErrorMsg: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Error),

		levels: map[modlog.Level]lipgloss.Style{
			modlog.LevelError:     lipgloss.NewStyle().Bold(true).Foreground(p.Error),
			modlog.LevelWarning:   lipgloss.NewStyle().Foreground(p.Warning),
			modlog.LevelInfo:      lipgloss.NewStyle().Foreground(p.Info),
			modlog.LevelDebug:     lipgloss.NewStyle().Foreground(p.Debug),
			modlog.LevelVerbose:   lipgloss.NewStyle().Foreground(p.Verbose),
			modlog.LevelFrameOnly: lipgloss.NewStyle().Foreground(p.Frame),
		},
	}
}

// ForTheme builds styles for a built-in theme name.
func ForTheme(name string) *Styles {
	return New(PaletteFor(name))
}

// Plain returns styles that render text unchanged, for pipes and files.
func Plain() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Title:     plain,
		Header:    plain,
		Muted:     plain,
		Selected:  plain,
		FoldPoint: plain,
		Details:   plain.PaddingLeft(4),
		HelpBar:   plain,
		HelpKey:   plain,
		StatusBar: plain,
		ErrorMsg:  plain,
		levels:    map[modlog.Level]lipgloss.Style{},
	}
}

// Level returns the style for entries at level l.
func (s *Styles) Level(l modlog.Level) lipgloss.Style {
	if st, ok := s.levels[l]; ok {
		return st
	}
	return lipgloss.NewStyle()
}
