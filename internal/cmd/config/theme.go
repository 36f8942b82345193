package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/foldlog/internal/tui/styles"
)

func newThemeCmd() *cobra.Command {
	themeCmd := &cobra.Command{
		Use:   "theme",
		Short: "List color themes",
		Long: `List the color themes available to the viewer and to colored 'show'
output. Select one with viewer.theme or 'foldlog view --theme'.`,
	}

	themeCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all available themes",
			Args:  cobra.NoArgs,
			RunE:  runThemeList,
		},
		&cobra.Command{
			Use:   "info <theme-name>",
			Short: "Show the colors of a theme",
			Args:  cobra.ExactArgs(1),
			RunE:  runThemeInfo,
		},
	)
	return themeCmd
}

func runThemeList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Built-in themes:")
	for _, name := range styles.BuiltinThemes() {
		fmt.Fprintf(out, "  - %s\n", name)
	}
	return nil
}

func runThemeInfo(cmd *cobra.Command, args []string) error {
	name := args[0]
	if !styles.IsValidTheme(name) {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(styles.BuiltinThemes(), ", "))
	}
	p := styles.PaletteFor(name)

	colors := []struct {
		role  string
		color lipgloss.Color
	}{
		{"primary", p.Primary},
		{"secondary", p.Secondary},
		{"muted", p.Muted},
		{"surface", p.Surface},
		{"text", p.Text},
		{"border", p.Border},
		{"error", p.Error},
		{"warning", p.Warning},
		{"info", p.Info},
		{"debug", p.Debug},
		{"verbose", p.Verbose},
		{"frame", p.Frame},
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Theme: %s\n\n", name)
	for _, c := range colors {
		fmt.Fprintf(out, "  %-10s %s\n", c.role, string(c.color))
	}
	return nil
}
