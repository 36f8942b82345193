package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/foldlog/internal/dump"
	"github.com/Iron-Ham/foldlog/internal/session"
)

type dumpsFlags struct {
	json bool
}

func newDumpsCmd(opts *rootOptions) *cobra.Command {
	flags := &dumpsFlags{}

	cmd := &cobra.Command{
		Use:   "dumps",
		Short: "List session files",
		Long: `List the session files in the dump directory, oldest first:
- File name and creation time
- Owning process id and whether it is still running
- Number of dumps and file size`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDumps(cmd, opts, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.json, "json", false, "Print the list as JSON")

	return cmd
}

func runDumps(cmd *cobra.Command, opts *rootOptions, flags *dumpsFlags) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	dir, err := opts.dumpDir(cfg)
	if err != nil {
		return err
	}

	sessions, err := session.ListSessions(dir)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if flags.json {
		if sessions == nil {
			sessions = []*session.Info{}
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(sessions)
	}

	printSessions(out, dir, sessions)
	return nil
}

func printSessions(out io.Writer, dir string, sessions []*session.Info) {
	fmt.Fprintln(out, strings.Repeat("─", 78))
	fmt.Fprintf(out, "Session files in %s\n", dir)
	fmt.Fprintln(out, strings.Repeat("─", 78))

	if len(sessions) == 0 {
		fmt.Fprintln(out, "\nNo session files found.")
		fmt.Fprintln(out, "Run 'foldlog demo' to create one.")
		return
	}

	fmt.Fprintf(out, "%-40s %-23s %7s %5s %9s  %s\n", "NAME", "CREATED", "PID", "DUMPS", "SIZE", "STATUS")
	for _, s := range sessions {
		created := "-"
		if !s.Created.IsZero() {
			created = s.Created.Format("2006-01-02 15:04:05.000")
		}
		status := "finished"
		switch {
		case s.Corrupt:
			status = "corrupt"
		case s.Live:
			status = "live"
		}
		fmt.Fprintf(out, "%-40s %-23s %7d %5d %9s  %s\n",
			s.Name, created, s.PID, s.Dumps, formatSize(s.Size), status)
	}
}

// latestDump returns the newest session file in dir.
func latestDump(dir string) (string, error) {
	path, err := dump.LatestDump(dir)
	if err != nil {
		return "", fmt.Errorf("no session files in %s (pass a file or run 'foldlog demo'): %w", filepath.Clean(dir), err)
	}
	return path, nil
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
