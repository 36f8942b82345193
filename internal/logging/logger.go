package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Log levels supported by the logger
const (
	LevelFrame   = "FRAME"
	LevelVerbose = "VERBOSE"
	LevelDebug   = "DEBUG"
	LevelInfo    = "INFO"
	LevelWarn    = "WARN"
	LevelError   = "ERROR"
)

// slog levels below DEBUG used by module loggers.
const (
	SlogVerbose = slog.LevelDebug - 4
	SlogFrame   = slog.LevelDebug - 8
)

// FileName is the name of the diagnostics log inside its directory.
const FileName = "diagnostics.log"

// Logger provides structured logging with context attributes.
// It is safe for concurrent use.
type Logger struct {
	logger *slog.Logger
	closer io.Closer
	mu     *sync.Mutex // Protects closer; shared with children
	attrs  []slog.Attr
}

// NewLogger creates a Logger that writes JSON-formatted records to
// {dir}/diagnostics.log, rotating it according to rotation.
//
// The level parameter controls which records are written:
//   - FRAME: everything, including frame snapshots
//   - VERBOSE: verbose module output and up
//   - DEBUG, INFO, WARN, ERROR: as in log/slog
//
// If dir is empty, human-readable text is written to stderr instead.
func NewLogger(dir string, level string, rotation RotationConfig) (*Logger, error) {
	if dir == "" {
		return NewConsoleLogger(os.Stderr, level, false), nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	rw, err := NewRotatingWriter(filepath.Join(dir, FileName), rotation)
	if err != nil {
		return nil, err
	}

	handler := slog.NewJSONHandler(rw, &slog.HandlerOptions{
		Level:       parseLevel(level),
		ReplaceAttr: replaceLevelName,
	})

	return &Logger{
		logger: slog.New(handler),
		closer: rw,
		mu:     &sync.Mutex{},
	}, nil
}

// NewConsoleLogger creates a Logger that writes text records to w. Timestamps
// are dropped when compact is set, which suits interactive output.
func NewConsoleLogger(w io.Writer, level string, compact bool) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if compact && len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return replaceLevelName(groups, a)
		},
	})
	return &Logger{
		logger: slog.New(handler),
		mu:     &sync.Mutex{},
	}
}

// parseLevel converts a string log level to slog.Level.
// Defaults to INFO if the level string is not recognized.
func parseLevel(level string) slog.Level {
	switch ParseLevel(level) {
	case LevelFrame:
		return SlogFrame
	case LevelVerbose:
		return SlogVerbose
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// replaceLevelName renders the sub-DEBUG levels by name instead of "DEBUG-4".
func replaceLevelName(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}
	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch {
	case lvl <= SlogFrame:
		a.Value = slog.StringValue(LevelFrame)
	case lvl <= SlogVerbose:
		a.Value = slog.StringValue(LevelVerbose)
	}
	return a
}

// WithModule returns a child Logger that tags records with a module id.
func (l *Logger) WithModule(id string) *Logger {
	return l.withAttr(slog.String("module", id))
}

// WithDump returns a child Logger that tags records with a dump file path.
func (l *Logger) WithDump(path string) *Logger {
	return l.withAttr(slog.String("dump", path))
}

// With returns a new Logger with arbitrary key-value attributes.
// Keys and values are provided as alternating arguments.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}

	newAttrs := make([]slog.Attr, 0, len(l.attrs)+len(args)/2)
	newAttrs = append(newAttrs, l.attrs...)
	for i := 0; i < len(args)-1; i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		newAttrs = append(newAttrs, slog.Any(key, args[i+1]))
	}

	return &Logger{
		logger: l.logger,
		closer: l.closer,
		mu:     l.mu,
		attrs:  newAttrs,
	}
}

func (l *Logger) withAttr(attr slog.Attr) *Logger {
	newAttrs := make([]slog.Attr, len(l.attrs)+1)
	copy(newAttrs, l.attrs)
	newAttrs[len(l.attrs)] = attr

	return &Logger{
		logger: l.logger,
		closer: l.closer,
		mu:     l.mu,
		attrs:  newAttrs,
	}
}

// Debug logs a message at DEBUG level with optional key-value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.Log(slog.LevelDebug, msg, args...)
}

// Info logs a message at INFO level with optional key-value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.Log(slog.LevelInfo, msg, args...)
}

// Warn logs a message at WARN level with optional key-value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.Log(slog.LevelWarn, msg, args...)
}

// Error logs a message at ERROR level with optional key-value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.Log(slog.LevelError, msg, args...)
}

// Log logs a message at an arbitrary slog level. Module loggers use it as
// their live output sink.
func (l *Logger) Log(level slog.Level, msg string, args ...any) {
	allArgs := make([]any, 0, len(l.attrs)*2+len(args))
	for _, attr := range l.attrs {
		allArgs = append(allArgs, attr.Key, attr.Value.Any())
	}
	allArgs = append(allArgs, args...)

	l.logger.Log(context.Background(), level, msg, allArgs...)
}

// Close flushes and closes the log file. Loggers writing to a terminal have
// nothing to close.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// NopLogger returns a Logger that discards all log output.
func NopLogger() *Logger {
	return &Logger{
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		mu:     &sync.Mutex{},
	}
}

// ParseLevel normalizes a level string. Returns LevelInfo if the level string
// is not recognized.
func ParseLevel(level string) string {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case LevelFrame, "FRAME_ONLY":
		return LevelFrame
	case LevelVerbose, "TRACE":
		return LevelVerbose
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "WARNING":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// ValidLevels returns the list of valid log level strings.
func ValidLevels() []string {
	return []string{LevelFrame, LevelVerbose, LevelDebug, LevelInfo, LevelWarn, LevelError}
}

// IsValidLevel reports whether level names one of ValidLevels.
func IsValidLevel(level string) bool {
	upper := strings.ToUpper(strings.TrimSpace(level))
	for _, v := range ValidLevels() {
		if upper == v {
			return true
		}
	}
	return upper == "WARNING" || upper == "TRACE" || upper == "FRAME_ONLY"
}
