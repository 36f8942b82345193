package modlog

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Iron-Ham/foldlog/internal/errors"
	"github.com/Iron-Ham/foldlog/internal/ring"
)

// Sink receives live output. *logging.Logger satisfies it.
type Sink interface {
	Log(level slog.Level, msg string, args ...any)
}

// Config holds the per-module settings of a Logger.
type Config struct {
	// PrintLevel is the least important level emitted live.
	PrintLevel Level
	// ArchiveLevel is the least important level retained in history.
	ArchiveLevel Level
	// HistorySize is the capacity of the message history.
	HistorySize int
	// FrameHistorySize is the capacity of the frame history.
	FrameHistorySize int
	// DumpOnError requests a full-history dump when an error is printed.
	DumpOnError bool
	// MirrorWarnings forwards printed warnings to the warning hook.
	MirrorWarnings bool
}

// DefaultConfig returns the settings used when a module has no overrides:
// warnings and errors are printed, everything but frames is retained.
func DefaultConfig() Config {
	return Config{
		PrintLevel:       LevelWarning,
		ArchiveLevel:     LevelVerbose,
		HistorySize:      256,
		FrameHistorySize: 32,
		DumpOnError:      true,
	}
}

// Snapshot is a point-in-time copy of one logger's retained history.
type Snapshot struct {
	History ring.Snapshot[Entry] `json:"log_history"`
	Frames  ring.Snapshot[Entry] `json:"frame_history"`
}

// Option configures a Logger.
type Option func(*Logger)

// WithSink sets the live output destination. Without a sink nothing is
// emitted live.
func WithSink(s Sink) Option {
	return func(l *Logger) { l.sink = s }
}

// WithClock sets the clock used to stamp entries.
func WithClock(c Clock) Option {
	return func(l *Logger) { l.clock = c }
}

// WithCounters sets the error/warning counters. Defaults to GlobalCounters.
func WithCounters(c *Counters) Option {
	return func(l *Logger) { l.counters = c }
}

// WithDumpHook sets the function called when a printed error requests a
// dump. The hook runs without the logger's lock held.
func WithDumpHook(fn func(*Logger, Entry)) Option {
	return func(l *Logger) { l.onDump = fn }
}

// WithWarningHook sets the secondary channel for printed warnings.
func WithWarningHook(fn func(Entry)) Option {
	return func(l *Logger) { l.onWarning = fn }
}

// Logger is the per-module logger. It records leveled messages and frame
// snapshots into two ring buffers according to its archive threshold and
// emits them live according to its print threshold.
//
// Logger is safe for concurrent use; one mutex guards thresholds and frame
// capture state.
type Logger struct {
	id string

	mu             sync.Mutex
	printLevel     Level
	archiveLevel   Level
	dumpOnError    bool
	mirrorWarnings bool
	frame          *FrameLog
	frameOpenedAt  int64
	frameNumber    int64

	history *ring.Buffer[Entry]
	frames  *ring.Buffer[Entry]

	sink      Sink
	clock     Clock
	counters  *Counters
	onDump    func(*Logger, Entry)
	onWarning func(Entry)
}

// New creates a Logger for module id.
func New(id string, cfg Config, opts ...Option) (*Logger, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.NewLoggerError("module id is empty", nil)
	}
	if err := validateThresholds(cfg.PrintLevel, cfg.ArchiveLevel); err != nil {
		return nil, errors.NewLoggerError("invalid thresholds", err).WithModule(id)
	}
	history, err := ring.New[Entry](cfg.HistorySize)
	if err != nil {
		return nil, errors.NewLoggerError("history buffer", err).WithModule(id)
	}
	frames, err := ring.New[Entry](cfg.FrameHistorySize)
	if err != nil {
		return nil, errors.NewLoggerError("frame buffer", err).WithModule(id)
	}

	l := &Logger{
		id:             id,
		printLevel:     cfg.PrintLevel,
		archiveLevel:   cfg.ArchiveLevel,
		dumpOnError:    cfg.DumpOnError,
		mirrorWarnings: cfg.MirrorWarnings,
		history:        history,
		frames:         frames,
		counters:       GlobalCounters(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.clock == nil {
		l.clock = NewMonotonicClock()
	}
	return l, nil
}

func validateThresholds(print, archive Level) error {
	if !print.Valid() {
		return fmt.Errorf("print level: %w: %d", errors.ErrInvalidLevel, int(print))
	}
	if !archive.Valid() {
		return fmt.Errorf("archive level: %w: %d", errors.ErrInvalidLevel, int(archive))
	}
	return nil
}

// ID returns the module id.
func (l *Logger) ID() string { return l.id }

// Levels returns the print and archive thresholds.
func (l *Logger) Levels() (print, archive Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.printLevel, l.archiveLevel
}

// PrintLevel returns the live output threshold.
func (l *Logger) PrintLevel() Level {
	p, _ := l.Levels()
	return p
}

// ArchiveLevel returns the history retention threshold.
func (l *Logger) ArchiveLevel() Level {
	_, a := l.Levels()
	return a
}

// SetLevels changes both thresholds.
func (l *Logger) SetLevels(print, archive Level) error {
	if err := validateThresholds(print, archive); err != nil {
		return errors.NewLoggerError("invalid thresholds", err).WithModule(l.id)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.printLevel = print
	l.archiveLevel = archive
	return nil
}

// Start clears both histories and any frame in progress.
func (l *Logger) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.history.Clear()
	l.frames.Clear()
	l.frame = nil
}

// Error records an error-level message.
func (l *Logger) Error(msg string) { l.record(LevelError, msg) }

// Warning records a warning-level message.
func (l *Logger) Warning(msg string) { l.record(LevelWarning, msg) }

// Info records an info-level message.
func (l *Logger) Info(msg string) { l.record(LevelInfo, msg) }

// Debug records a debug-level message.
func (l *Logger) Debug(msg string) { l.record(LevelDebug, msg) }

// Verbose records a verbose-level message.
func (l *Logger) Verbose(msg string) { l.record(LevelVerbose, msg) }

// Errorf formats and records an error-level message.
func (l *Logger) Errorf(format string, args ...any) { l.Error(fmt.Sprintf(format, args...)) }

// Warningf formats and records a warning-level message.
func (l *Logger) Warningf(format string, args ...any) { l.Warning(fmt.Sprintf(format, args...)) }

// Infof formats and records an info-level message.
func (l *Logger) Infof(format string, args ...any) { l.Info(fmt.Sprintf(format, args...)) }

// Debugf formats and records a debug-level message.
func (l *Logger) Debugf(format string, args ...any) { l.Debug(fmt.Sprintf(format, args...)) }

// Verbosef formats and records a verbose-level message.
func (l *Logger) Verbosef(format string, args ...any) { l.Verbose(fmt.Sprintf(format, args...)) }

// PrintAtLevel dispatches msg to the method matching level. FRAME_ONLY adds
// msg as a frame detail. SILENT and undefined levels are reported through the
// error path and rejected.
func (l *Logger) PrintAtLevel(msg string, level Level) error {
	switch level {
	case LevelError:
		l.Error(msg)
	case LevelWarning:
		l.Warning(msg)
	case LevelInfo:
		l.Info(msg)
	case LevelDebug:
		l.Debug(msg)
	case LevelVerbose:
		l.Verbose(msg)
	case LevelFrameOnly:
		l.InFrame(msg)
	default:
		l.Errorf("cannot print at level %s: %s", level, msg)
		return errors.NewLoggerError(fmt.Sprintf("print at level %s", level), errors.ErrInvalidLevel).WithModule(l.id)
	}
	return nil
}

// AssertThat records msg as an error and aborts the current operation when
// cond is false. The abort is a panic carrying *errors.AssertionError; use
// RecoverFatal at the operation boundary.
func (l *Logger) AssertThat(cond bool, msg string) {
	if cond {
		return
	}
	l.ThrowAssert(msg)
}

// ThrowAssert records msg as an error and unconditionally aborts the current
// operation.
func (l *Logger) ThrowAssert(msg string) {
	l.Error("assertion failed: " + msg)
	panic(errors.NewAssertionError(l.id, msg))
}

// record applies the archive and print policies for one message.
func (l *Logger) record(level Level, msg string) {
	l.counters.observe(level)

	l.mu.Lock()
	e := Entry{
		Timestamp:   l.clock.Micros(),
		Level:       level,
		Module:      l.id,
		Message:     msg,
		FrameNumber: l.clock.Frame(),
	}
	if level == LevelError && l.frame != nil && !l.frame.IsComplete {
		provisional := *l.frame
		e.Frame = &provisional
	}
	print := l.printLevel.Allows(level)
	dump := print && level == LevelError && l.dumpOnError
	mirror := print && level == LevelWarning && l.mirrorWarnings
	// Pushing under l.mu keeps history in timestamp order.
	if l.archiveLevel.Allows(level) {
		l.history.Push(e)
	}
	l.mu.Unlock()

	if !print {
		return
	}
	l.emit(e)
	if dump && l.onDump != nil {
		l.onDump(l, e)
	}
	if mirror && l.onWarning != nil {
		l.onWarning(e)
	}
}

func (l *Logger) emit(e Entry) {
	if l.sink == nil {
		return
	}
	if e.IsFrame() {
		var title, details string
		if e.Frame != nil {
			title, details = e.Frame.Title, e.Frame.Details
		}
		l.sink.Log(e.Level.Slog(), title, "module", e.Module, "frame", e.FrameNumber, "details", details)
		return
	}
	l.sink.Log(e.Level.Slog(), e.Message, "module", e.Module, "frame", e.FrameNumber)
}

// History returns the retained messages, oldest first.
func (l *Logger) History() []Entry {
	return l.history.All()
}

// FrameHistory returns the retained frame snapshots, oldest first.
func (l *Logger) FrameHistory() []Entry {
	return l.frames.All()
}

// Snapshot returns a copy of both histories for persistence.
func (l *Logger) Snapshot() Snapshot {
	return Snapshot{
		History: l.history.Snapshot(),
		Frames:  l.frames.Snapshot(),
	}
}
