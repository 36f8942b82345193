package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// ThemeName represents a named color theme.
type ThemeName string

// Available theme names.
const (
	ThemeDefault ThemeName = "default" // Purple/green dark theme
	ThemeNord    ThemeName = "nord"    // Nord theme - cool blue-gray
	ThemeDracula ThemeName = "dracula" // Dracula theme colors
	ThemeMonokai ThemeName = "monokai" // Classic Monokai editor colors
)

// BuiltinThemes returns all built-in theme names.
func BuiltinThemes() []string {
	return []string{
		string(ThemeDefault),
		string(ThemeNord),
		string(ThemeDracula),
		string(ThemeMonokai),
	}
}

// IsValidTheme checks if a theme name is a built-in theme.
func IsValidTheme(name string) bool {
	return slices.Contains(BuiltinThemes(), name)
}

// ColorPalette defines the color scheme for a theme.
// All colors should meet WCAG AA contrast requirements (4.5:1 ratio).
type ColorPalette struct {
	// Primary accent color (titles, selection)
	Primary lipgloss.Color
	// Secondary accent color (key hints)
	Secondary lipgloss.Color
	// Muted color (de-emphasized text, fold points)
	Muted lipgloss.Color
	// Surface color (status bar background)
	Surface lipgloss.Color
	// Text color (primary text)
	Text lipgloss.Color
	// Border color (separators)
	Border lipgloss.Color

	// Level colors
	Error   lipgloss.Color
	Warning lipgloss.Color
	Info    lipgloss.Color
	Debug   lipgloss.Color
	Verbose lipgloss.Color
	Frame   lipgloss.Color
}

// DefaultPalette returns the default purple/green dark theme palette.
func DefaultPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#A78BFA"), // Purple (violet-400)
		Secondary: lipgloss.Color("#10B981"), // Green
		Muted:     lipgloss.Color("#9CA3AF"), // Gray
		Surface:   lipgloss.Color("#1F2937"), // Dark surface
		Text:      lipgloss.Color("#F9FAFB"), // Light text
		Border:    lipgloss.Color("#6B7280"), // Gray-500

		Error:   lipgloss.Color("#F87171"), // Red (red-400)
		Warning: lipgloss.Color("#F59E0B"), // Amber
		Info:    lipgloss.Color("#F9FAFB"), // Light text
		Debug:   lipgloss.Color("#60A5FA"), // Blue
		Verbose: lipgloss.Color("#9CA3AF"), // Gray
		Frame:   lipgloss.Color("#F472B6"), // Pink
	}
}

// NordPalette returns the Nord theme palette.
func NordPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#88C0D0"), // Frost cyan
		Secondary: lipgloss.Color("#A3BE8C"), // Aurora green
		Muted:     lipgloss.Color("#D8DEE9"), // Snow storm
		Surface:   lipgloss.Color("#3B4252"), // Polar night
		Text:      lipgloss.Color("#ECEFF4"),
		Border:    lipgloss.Color("#4C566A"),

		Error:   lipgloss.Color("#BF616A"),
		Warning: lipgloss.Color("#EBCB8B"),
		Info:    lipgloss.Color("#ECEFF4"),
		Debug:   lipgloss.Color("#81A1C1"),
		Verbose: lipgloss.Color("#D8DEE9"),
		Frame:   lipgloss.Color("#B48EAD"),
	}
}

// DraculaPalette returns the Dracula theme palette.
func DraculaPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#BD93F9"), // Purple
		Secondary: lipgloss.Color("#50FA7B"), // Green
		Muted:     lipgloss.Color("#6272A4"), // Comment
		Surface:   lipgloss.Color("#44475A"), // Current line
		Text:      lipgloss.Color("#F8F8F2"),
		Border:    lipgloss.Color("#6272A4"),

		Error:   lipgloss.Color("#FF5555"),
		Warning: lipgloss.Color("#FFB86C"),
		Info:    lipgloss.Color("#F8F8F2"),
		Debug:   lipgloss.Color("#8BE9FD"),
		Verbose: lipgloss.Color("#6272A4"),
		Frame:   lipgloss.Color("#FF79C6"),
	}
}

// MonokaiPalette returns the classic Monokai palette.
func MonokaiPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#AE81FF"), // Purple
		Secondary: lipgloss.Color("#A6E22E"), // Green
		Muted:     lipgloss.Color("#75715E"), // Comment
		Surface:   lipgloss.Color("#3E3D32"),
		Text:      lipgloss.Color("#F8F8F2"),
		Border:    lipgloss.Color("#75715E"),

		Error:   lipgloss.Color("#F92672"),
		Warning: lipgloss.Color("#E6DB74"),
		Info:    lipgloss.Color("#F8F8F2"),
		Debug:   lipgloss.Color("#66D9EF"),
		Verbose: lipgloss.Color("#75715E"),
		Frame:   lipgloss.Color("#FD971F"),
	}
}

// PaletteFor returns the palette of a built-in theme, falling back to the
// default palette for unknown names.
func PaletteFor(name string) *ColorPalette {
	switch ThemeName(name) {
	case ThemeNord:
		return NordPalette()
	case ThemeDracula:
		return DraculaPalette()
	case ThemeMonokai:
		return MonokaiPalette()
	default:
		return DefaultPalette()
	}
}
