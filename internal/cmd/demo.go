package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/foldlog/internal/dump"
	"github.com/Iron-Ham/foldlog/internal/event"
	"github.com/Iron-Ham/foldlog/internal/modlog"
	"github.com/Iron-Ham/foldlog/internal/session"
)

type demoFlags struct {
	frames  int
	errorAt int
	quiet   bool
}

// demoModules are the modules the demo simulates.
var demoModules = []string{"audio", "net.tcp", "render"}

func newDemoCmd(opts *rootOptions) *cobra.Command {
	flags := &demoFlags{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Write a sample session file",
		Long: `Simulate a small application with three modules through the real
logging pipeline and write its dumps to a new session file:

- an ERROR dump when a module prints an error (with logging.dump_on_error)
- a MANUAL dump after the last frame
- an APP_CLOSE dump when the session closes (with dump.on_close)

Use 'foldlog show' or 'foldlog view' to look at the result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, opts, flags)
		},
	}

	cmd.Flags().IntVar(&flags.frames, "frames", 24, "Number of frames to simulate")
	cmd.Flags().IntVar(&flags.errorAt, "error-at", 18, "Frame at which net.tcp prints an error (0 for none)")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Do not print live module output")

	return cmd
}

func runDemo(cmd *cobra.Command, opts *rootOptions, flags *demoFlags) error {
	if flags.frames < 1 {
		return fmt.Errorf("--frames must be at least 1, got %d", flags.frames)
	}
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	var live io.Writer = cmd.ErrOrStderr()
	if flags.quiet {
		live = io.Discard
	}
	counters := &modlog.Counters{}
	s, err := session.Open(cfg, session.Options{
		BaseDir:     cwd,
		Diagnostics: diagnostics(cmd, cfg),
		Output:      live,
		Counters:    counters,
	})
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	out := cmd.OutOrStdout()
	s.Bus().Subscribe(event.TypeDumpSaved, func(e event.Event) {
		if saved, ok := e.(event.DumpSavedEvent); ok {
			fmt.Fprintf(out, "dump %d saved (%s, %d modules)\n", saved.Index, saved.Reason, saved.Modules)
		}
	})

	loggers := make(map[string]*modlog.Logger, len(demoModules))
	for _, id := range demoModules {
		l, err := s.Logger(id)
		if err != nil {
			_ = s.Close()
			return err
		}
		// Keep frame snapshots so the dumps have something to expand
		if err := l.SetLevels(l.PrintLevel(), modlog.LevelFrameOnly); err != nil {
			_ = s.Close()
			return err
		}
		loggers[id] = l
	}

	simulate(s, loggers, flags)

	if _, err := s.Dump(dump.ReasonManual); err != nil {
		_ = s.Close()
		return fmt.Errorf("failed to write dump: %w", err)
	}
	path := s.Path()
	if err := s.Close(); err != nil {
		return err
	}

	info, err := session.GetSessionInfo(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nWrote %d dumps to %s\n", info.Dumps, path)
	fmt.Fprintf(out, "Errors: %d, warnings: %d\n", counters.Errors(), counters.Warnings())
	fmt.Fprintf(out, "Run 'foldlog show %s' to inspect it.\n", path)
	return nil
}

// simulate drives the demo modules through flags.frames frames. The output
// is deterministic so repeated runs produce comparable dumps.
func simulate(s *session.Session, loggers map[string]*modlog.Logger, flags *demoFlags) {
	audio, net, render := loggers["audio"], loggers["net.tcp"], loggers["render"]

	net.Info("connecting to 10.0.0.7:4000")
	net.Debug("socket buffer 64 KiB")
	net.Info("connected")
	audio.Info("output device opened: 48000 Hz stereo")

	for frame := 1; frame <= flags.frames; frame++ {
		s.Tick()
		for _, id := range demoModules {
			loggers[id].StartFrame()
			loggers[id].AppendFrameTitle(fmt.Sprintf("frame %d", frame))
		}

		render.InFrame(fmt.Sprintf("draw calls %d", 40+frame%7))
		render.InFrame(fmt.Sprintf("triangles %d", 12000+frame*37%900))
		render.Verbosef("present took %d us", 900+frame*13%250)

		net.InFrame(fmt.Sprintf("rx %d bytes", 512*(frame%5+1)))
		net.Verbosef("ack seq %d", frame*10)
		if frame%4 == 0 {
			net.Debugf("retransmit seq %d", frame*10-3)
			net.Verbose("window shrunk to 8")
		}

		audio.InFrame(fmt.Sprintf("queued %d samples", 800+frame%3*160))
		if frame%5 == 0 {
			audio.Infof("buffer refilled at frame %d", frame)
			audio.Debug("refill latency 3 ms")
		}
		if frame%8 == 0 {
			audio.Warningf("underrun: %d samples late", frame*3)
		}

		if frame == flags.errorAt {
			net.Warning("no ack for 3 frames")
			net.Errorf("connection reset by peer after %d frames", frame)
			net.Info("reconnecting")
		}

		for _, id := range demoModules {
			loggers[id].EndFrame()
		}
	}
}
