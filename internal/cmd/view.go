package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/foldlog/internal/logging"
	"github.com/Iron-Ham/foldlog/internal/modlog"
	"github.com/Iron-Ham/foldlog/internal/tui"
	"github.com/Iron-Ham/foldlog/internal/tui/styles"
)

type viewFlags struct {
	foldLevel string
	byModule  bool
	follow    bool
	theme     string
}

func newViewCmd(opts *rootOptions) *cobra.Command {
	flags := &viewFlags{}

	cmd := &cobra.Command{
		Use:   "view [session-file]",
		Short: "Browse dumps interactively",
		Long: `Open a session file in the interactive fold-tree viewer. Without a file
the newest session file in the dump directory is opened.

The viewer reloads when the file grows. With --follow it also switches to
newer session files as they appear in the same directory.

Press / to filter the dump: words match entry text and module:<glob> words
select modules (for example "reset module:net.*"). An empty filter shows
everything again.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, args, opts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.foldLevel, "fold-level", "", "Initial fold level (default from viewer.fold_level)")
	cmd.Flags().BoolVar(&flags.byModule, "by-module", false, "Start in the module view")
	cmd.Flags().BoolVarP(&flags.follow, "follow", "f", false, "Switch to newer session files as they are written")
	cmd.Flags().StringVar(&flags.theme, "theme", "", "Color theme (default from viewer.theme)")

	return cmd
}

func runView(cmd *cobra.Command, args []string, opts *rootOptions, flags *viewFlags) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}

	threshold := cfg.ViewerFoldLevel()
	if flags.foldLevel != "" {
		if threshold, err = modlog.ParseLevel(flags.foldLevel); err != nil {
			return fmt.Errorf("invalid --fold-level: %w", err)
		}
	}
	theme := cfg.Viewer.Theme
	if flags.theme != "" {
		if !styles.IsValidTheme(flags.theme) {
			return fmt.Errorf("unknown theme %q", flags.theme)
		}
		theme = flags.theme
	}

	path, err := opts.sessionFile(cfg, args)
	if err != nil {
		return err
	}

	// The viewer owns the terminal, so diagnostics go to the log file or nowhere
	logger := logging.NopLogger()
	if cfg.Diagnostics.File {
		dir, err := opts.dumpDir(cfg)
		if err != nil {
			return err
		}
		if logger, err = logging.NewLogger(dir, cfg.Diagnostics.Level, cfg.Diagnostics.Rotation()); err != nil {
			return err
		}
		defer func() { _ = logger.Close() }()
	}

	app := tui.New(path, tui.Options{
		Collated:  cfg.Viewer.Collated && !flags.byModule,
		Threshold: threshold,
		Follow:    flags.follow,
		Styles:    styles.ForTheme(theme),
	}, logger)
	return app.Run()
}
