package session

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/Iron-Ham/foldlog/internal/config"
	"github.com/Iron-Ham/foldlog/internal/dump"
	"github.com/Iron-Ham/foldlog/internal/errors"
	"github.com/Iron-Ham/foldlog/internal/event"
	"github.com/Iron-Ham/foldlog/internal/logging"
	"github.com/Iron-Ham/foldlog/internal/modlog"
)

// Options configures Open. Zero values select the defaults described on
// each field.
type Options struct {
	// BaseDir resolves a relative dump directory. Defaults to the working
	// directory.
	BaseDir string
	// Diagnostics receives foldlog's own diagnostics. Defaults to a logger
	// built from the diagnostics section of the config, owned and closed by
	// the session.
	Diagnostics *logging.Logger
	// Output receives live module output. Defaults to stderr.
	Output io.Writer
	// Sink replaces the live output logger entirely.
	Sink modlog.Sink
	// Bus carries session events. Defaults to a new bus.
	Bus *event.Bus
	// Counters collects error and warning counts. Defaults to the global
	// counters.
	Counters *modlog.Counters
	// Now is the dump clock. Defaults to time.Now.
	Now func() time.Time
}

// Session ties the pieces of one application run together: the module
// registry, the session file writer, the event bus and the configuration.
type Session struct {
	cfg    *config.Config
	dir    string
	diag   *logging.Logger
	owns   bool
	sink   modlog.Sink
	bus    *event.Bus
	reg    *modlog.Registry
	writer *dump.Writer

	mu     sync.Mutex
	closed bool
}

// Open starts a session with cfg. The dump directory is created lazily by
// the first dump.
func Open(cfg *config.Config, opts Options) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, config.ValidationErrors(errs)
	}

	baseDir := opts.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		baseDir = wd
	}

	s := &Session{
		cfg:  cfg,
		dir:  cfg.Dump.ResolveDir(baseDir),
		diag: opts.Diagnostics,
		sink: opts.Sink,
		bus:  opts.Bus,
	}

	if s.diag == nil {
		logDir := ""
		if cfg.Diagnostics.File {
			logDir = s.dir
		}
		diag, err := logging.NewLogger(logDir, cfg.Diagnostics.Level, cfg.Diagnostics.Rotation())
		if err != nil {
			return nil, err
		}
		s.diag = diag
		s.owns = true
	}
	if s.sink == nil {
		out := opts.Output
		if out == nil {
			out = os.Stderr
		}
		s.sink = logging.NewConsoleLogger(out, logging.LevelFrame, true)
	}
	if s.bus == nil {
		s.bus = event.NewBus(s.diag)
	}

	regOpts := []modlog.Option{modlog.WithSink(s.sink)}
	if opts.Counters != nil {
		regOpts = append(regOpts, modlog.WithCounters(opts.Counters))
	}
	s.reg = modlog.NewRegistry(cfg.ModuleSettings(""), regOpts...)
	s.reg.Open()

	s.writer = dump.NewWriter(s.dir, dump.WriterOptions{
		DevMode:    cfg.Dump.DevMode,
		LatestName: cfg.Dump.LatestName,
		Notifier: dump.NotifierFunc(func(path string, reason dump.Reason) {
			s.bus.Publish(event.NewDumpReadyEvent(path, reason.String()))
		}),
		Logger: s.diag,
		Now:    opts.Now,
	})

	s.diag.Info("session opened", "dump_dir", s.dir, "dev_mode", cfg.Dump.DevMode)
	return s, nil
}

// Dir returns the dump directory.
func (s *Session) Dir() string { return s.dir }

// Path returns the session file, or "" before the first dump.
func (s *Session) Path() string { return s.writer.Path() }

// Bus returns the session's event bus.
func (s *Session) Bus() *event.Bus { return s.bus }

// Registry returns the session's module registry.
func (s *Session) Registry() *modlog.Registry { return s.reg }

// Diagnostics returns the diagnostics logger.
func (s *Session) Diagnostics() *logging.Logger { return s.diag }

// Config returns the session configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// Logger returns the logger for module id, registering it with its
// configured settings on first use. Printed errors trigger an ERROR dump when
// the module dumps on error.
func (s *Session) Logger(id string) (*modlog.Logger, error) {
	if l, ok := s.reg.Get(id); ok {
		return l, nil
	}

	settings := s.cfg.ModuleSettings(id)
	l, err := s.reg.Register(id, settings,
		modlog.WithDumpHook(func(_ *modlog.Logger, e modlog.Entry) {
			// Failures are already reported on the bus and in diagnostics
			_, _ = s.Dump(dump.ReasonError)
		}),
		modlog.WithWarningHook(func(e modlog.Entry) {
			s.diag.WithModule(e.Module).Warn(e.Message, "frame", e.FrameNumber)
		}),
	)
	if errors.Is(err, errors.ErrDuplicateModule) {
		// Lost a registration race; the winner's logger is equivalent
		if l, ok := s.reg.Get(id); ok {
			return l, nil
		}
	}
	if err != nil {
		return nil, err
	}

	s.diag.WithModule(id).Debug("module registered",
		"print_level", settings.PrintLevel, "archive_level", settings.ArchiveLevel)
	s.bus.Publish(event.NewModuleRegisteredEvent(id, settings.PrintLevel.String(), settings.ArchiveLevel.String()))
	return l, nil
}

// Tick advances the shared frame counter.
func (s *Session) Tick() int64 { return s.reg.Tick() }

// Dump appends the history of every registered module to the session file
// and returns its path. Failures are reported, never fatal to the caller's
// logging.
func (s *Session) Dump(reason dump.Reason) (string, error) {
	snaps := s.reg.Snapshot()
	path, err := s.writer.Save(snaps, reason)
	if err != nil {
		s.bus.Publish(event.NewDumpFailedEvent(reason.String(), err))
		return "", err
	}
	s.bus.Publish(event.NewDumpSavedEvent(path, reason.String(), len(snaps), s.writer.Saved()-1))
	return path, nil
}

// Close ends the session: it writes an APP_CLOSE dump when configured,
// stops accepting registrations and prunes old session files. It is safe to
// call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	var errs []error
	if s.cfg.Dump.OnClose && s.reg.Len() > 0 {
		if _, err := s.Dump(dump.ReasonAppClose); err != nil {
			errs = append(errs, err)
		}
	}
	s.reg.Close()

	if _, err := dump.CleanupOldDumps(s.dir, s.cfg.Dump.KeepCount, s.diag); err != nil {
		errs = append(errs, err)
	}

	s.diag.Info("session closed", "dumps", s.writer.Saved(), "path", s.writer.Path())
	if s.owns {
		if err := s.diag.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
