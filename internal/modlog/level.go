package modlog

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Iron-Ham/foldlog/internal/errors"
)

// Level is an ordinal severity. Lower values are more important: a threshold
// comparison "level <= threshold" means the level is at least as important as
// the threshold.
type Level int

// Levels, most severe first.
const (
	LevelSilent Level = iota
	LevelError
	LevelWarning
	LevelInfo
	LevelDebug
	LevelVerbose
	// LevelFrameOnly marks frame snapshots. Frame entries carry no message of
	// their own; their content is the embedded FrameLog.
	LevelFrameOnly
)

var levelNames = [...]string{
	LevelSilent:    "SILENT",
	LevelError:     "ERROR",
	LevelWarning:   "WARNING",
	LevelInfo:      "INFO",
	LevelDebug:     "DEBUG",
	LevelVerbose:   "VERBOSE",
	LevelFrameOnly: "FRAME_ONLY",
}

// String returns the wire name of the level.
func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= LevelSilent && l <= LevelFrameOnly
}

// Allows reports whether an event at level ev passes a threshold of l.
func (l Level) Allows(ev Level) bool {
	return ev <= l
}

// Slog maps the level onto log/slog levels for live output. VERBOSE and
// FRAME_ONLY sit below slog's DEBUG.
func (l Level) Slog() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarning:
		return slog.LevelWarn
	case LevelInfo:
		return slog.LevelInfo
	case LevelDebug:
		return slog.LevelDebug
	case LevelVerbose:
		return slog.LevelDebug - 4
	default:
		return slog.LevelDebug - 8
	}
}

// ParseLevel converts a level name to a Level. Names are matched case
// insensitively and a few common aliases are accepted.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SILENT", "OFF", "NONE":
		return LevelSilent, nil
	case "ERROR", "ERR":
		return LevelError, nil
	case "WARNING", "WARN":
		return LevelWarning, nil
	case "INFO":
		return LevelInfo, nil
	case "DEBUG":
		return LevelDebug, nil
	case "VERBOSE", "TRACE":
		return LevelVerbose, nil
	case "FRAME_ONLY", "FRAME":
		return LevelFrameOnly, nil
	}
	return LevelSilent, fmt.Errorf("%w: %q", errors.ErrInvalidLevel, s)
}

// ValidLevels returns the wire names of all levels, most severe first.
func ValidLevels() []string {
	return append([]string(nil), levelNames[:]...)
}

// MarshalText encodes the level as its wire name.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", errors.ErrInvalidLevel, int(l))
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText decodes a wire name. Unknown names are an error so that a
// record carrying one can be skipped.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
