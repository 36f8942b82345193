package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/foldlog/internal/watch"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print session files as dumps are written",
		Long: `Watch the dump directory and print a line whenever a session file is
created or grows. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}
}

func runWatch(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	dir, err := opts.dumpDir(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	detections := make(chan watch.Detection, 16)
	w, err := watch.New(dir,
		watch.WithLogger(diagnostics(cmd, cfg)),
		watch.WithCallback(func(d watch.Detection) {
			select {
			case detections <- d:
			case <-ctx.Done():
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.Start()
	defer w.Stop()

	fmt.Fprintf(out, "Watching %s (%d existing session files). Press Ctrl+C to stop.\n", w.Dir(), len(w.Known()))

	// Print from this goroutine so writes to out never race
	for {
		select {
		case <-ctx.Done():
			return nil
		case d := <-detections:
			kind := "grew"
			if d.Created {
				kind = "new "
			}
			fmt.Fprintf(out, "%s %s  %s  %s\n",
				time.Now().Format("15:04:05"), kind, filepath.Base(d.Path), formatSize(d.Size))
		}
	}
}
