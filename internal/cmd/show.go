package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/foldlog/internal/dump"
	"github.com/Iron-Ham/foldlog/internal/modlog"
	"github.com/Iron-Ham/foldlog/internal/tui"
	"github.com/Iron-Ham/foldlog/internal/tui/styles"
)

type showFlags struct {
	flat      bool
	byModule  bool
	collated  bool
	foldLevel string
	level     string
	format    string
	modules   []string
	grep      string
	details   bool
	index     int
	all       bool
	noFrames  bool
	noColor   bool
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	flags := &showFlags{}

	cmd := &cobra.Command{
		Use:   "show [session-file]",
		Short: "Print dumps from a session file",
		Long: `Print the dumps of a session file as a fold tree. Without a file the
newest session file in the dump directory is used, and without --dump or
--all its newest dump is shown.

Nodes whose most severe child is at or above --fold-level are expanded;
everything else is folded into a single line.`,
		Example: `  foldlog show
  foldlog show --fold-level DEBUG --details
  foldlog show --by-module --module 'net.*'
  foldlog show --all --format csv > dumps.csv
  foldlog show .foldlog/dumps/dump_20260304-050607.890_4242.json --dump 0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args, opts, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.flat, "flat", false, "Print entries one per line without folding")
	cmd.Flags().BoolVar(&flags.byModule, "by-module", false, "Group entries by module")
	cmd.Flags().BoolVar(&flags.collated, "collated", false, "Show one timeline across modules")
	cmd.Flags().StringVar(&flags.foldLevel, "fold-level", "", "Expand nodes at this level or more severe (default from viewer.fold_level)")
	cmd.Flags().StringVar(&flags.level, "level", "", "Only show entries at this level or more severe")
	cmd.Flags().StringVar(&flags.format, "format", "", "Export entries instead of printing a tree: "+strings.Join(dump.ExportFormats(), ", "))
	cmd.Flags().StringSliceVarP(&flags.modules, "module", "m", nil, "Only show modules matching these glob patterns")
	cmd.Flags().StringVarP(&flags.grep, "grep", "g", "", "Only show entries containing this text")
	cmd.Flags().BoolVar(&flags.details, "details", false, "Print frame details below frame entries")
	cmd.Flags().IntVar(&flags.index, "dump", -1, "Dump index to show, counted from 0; negative counts from the newest")
	cmd.Flags().BoolVar(&flags.all, "all", false, "Show every dump in the file")
	cmd.Flags().BoolVar(&flags.noFrames, "no-frames", false, "Hide frame snapshots")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	cmd.MarkFlagsMutuallyExclusive("by-module", "collated")
	cmd.MarkFlagsMutuallyExclusive("dump", "all")

	return cmd
}

func runShow(cmd *cobra.Command, args []string, opts *rootOptions, flags *showFlags) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	path, err := opts.sessionFile(cfg, args)
	if err != nil {
		return err
	}

	threshold := cfg.ViewerFoldLevel()
	if flags.foldLevel != "" {
		if threshold, err = modlog.ParseLevel(flags.foldLevel); err != nil {
			return fmt.Errorf("invalid --fold-level: %w", err)
		}
	}
	filter := dump.Filter{
		Modules:         flags.modules,
		MessageContains: flags.grep,
		SkipFrames:      flags.noFrames,
	}
	if flags.level != "" {
		if filter.MaxLevel, err = modlog.ParseLevel(flags.level); err != nil {
			return fmt.Errorf("invalid --level: %w", err)
		}
	}
	if flags.format != "" && !isExportFormat(flags.format) {
		return fmt.Errorf("unsupported format %q (supported: %s)", flags.format, strings.Join(dump.ExportFormats(), ", "))
	}

	collated := cfg.Viewer.Collated
	switch {
	case flags.byModule:
		collated = false
	case flags.collated:
		collated = true
	}

	dumps, problems := dump.LoadDumps(path, nil)
	for _, p := range problems {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", p)
	}
	if len(dumps) == 0 {
		return fmt.Errorf("no dumps in %s", path)
	}

	selected, err := selectDumps(dumps, flags.index, flags.all)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.format != "" {
		var entries []modlog.Entry
		for _, d := range selected {
			filtered, err := dump.FilterEntries(d.Entries(collated), filter)
			if err != nil {
				return err
			}
			entries = append(entries, filtered...)
		}
		return dump.ExportEntries(out, entries, flags.format)
	}

	st := styles.Plain()
	if !flags.noColor && isTerminal(out) {
		st = styles.ForTheme(cfg.Viewer.Theme)
	}

	for i, d := range selected {
		if i > 0 {
			fmt.Fprintln(out)
		}
		entries, err := dump.FilterEntries(d.Entries(collated), filter)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, st.Header.Render(dumpHeader(d, len(dumps), len(entries))))
		if flags.flat {
			printFlat(out, entries, d.ModuleWidth, flags.details, st)
			continue
		}
		fmt.Fprint(out, tui.RenderTree(dump.BuildTree(entries, collated), tui.RenderOptions{
			Threshold:   threshold,
			ModuleWidth: d.ModuleWidth,
			Details:     flags.details,
			Styles:      st,
		}))
	}
	return nil
}

// selectDumps picks the dumps to show. A negative index counts back from the
// newest dump.
func selectDumps(dumps []*dump.Data, index int, all bool) ([]*dump.Data, error) {
	if all {
		return dumps, nil
	}
	i := index
	if i < 0 {
		i += len(dumps)
	}
	if i < 0 || i >= len(dumps) {
		return nil, fmt.Errorf("dump %d out of range: file has %d dumps", index, len(dumps))
	}
	return dumps[i : i+1], nil
}

func dumpHeader(d *dump.Data, total, shown int) string {
	return fmt.Sprintf("== dump %d/%d · %s · %s · %d entries",
		d.Index+1, total, d.Reason, d.Timestamp.Format("2006-01-02 15:04:05.000"), shown)
}

func printFlat(out io.Writer, entries []modlog.Entry, moduleWidth int, details bool, st *styles.Styles) {
	for _, e := range entries {
		fmt.Fprintln(out, tui.FormatEntry(e, moduleWidth, st))
		if !details || e.Frame == nil || e.Frame.Details == "" || !e.IsFrame() {
			continue
		}
		for _, line := range strings.Split(e.Frame.Details, "\n") {
			fmt.Fprintln(out, "    "+line)
		}
	}
}

func isExportFormat(format string) bool {
	for _, f := range dump.ExportFormats() {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
