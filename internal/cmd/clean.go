package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/foldlog/internal/dump"
)

type cleanFlags struct {
	keep   int
	dryRun bool
}

func newCleanCmd(opts *rootOptions) *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove old session files",
		Long: `Remove all but the newest session files from the dump directory.

The number kept defaults to dump.keep_count. Use --dry-run to see what
would be removed without removing anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, opts, flags)
		},
	}

	cmd.Flags().IntVar(&flags.keep, "keep", -1, "Number of session files to keep (default from dump.keep_count)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show what would be removed without making changes")

	return cmd
}

func runClean(cmd *cobra.Command, opts *rootOptions, flags *cleanFlags) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	dir, err := opts.dumpDir(cfg)
	if err != nil {
		return err
	}

	keep := cfg.Dump.KeepCount
	if cmd.Flags().Changed("keep") {
		if flags.keep < 0 {
			return fmt.Errorf("--keep must be at least 0, got %d", flags.keep)
		}
		keep = flags.keep
	}

	out := cmd.OutOrStdout()
	if keep < 0 {
		fmt.Fprintln(out, "Cleanup is disabled (dump.keep_count is -1). Nothing to clean up.")
		return nil
	}

	if flags.dryRun {
		files, err := dump.ListDumps(dir)
		if err != nil {
			return err
		}
		if len(files) <= keep {
			fmt.Fprintln(out, "No old session files found. Nothing to clean up.")
			return nil
		}
		fmt.Fprintf(out, "Would remove %d session file(s):\n", len(files)-keep)
		for _, f := range files[:len(files)-keep] {
			fmt.Fprintf(out, "  %s\n", filepath.Base(f))
		}
		fmt.Fprintln(out, "\nDry run mode - no changes made.")
		return nil
	}

	removed, err := dump.CleanupOldDumps(dir, keep, diagnostics(cmd, cfg))
	for _, f := range removed {
		fmt.Fprintf(out, "  removed %s\n", filepath.Base(f))
	}
	if len(removed) == 0 && err == nil {
		fmt.Fprintln(out, "No old session files found. Nothing to clean up.")
		return nil
	}
	fmt.Fprintf(out, "Removed %d session file(s), kept up to %d.\n", len(removed), keep)
	return err
}
