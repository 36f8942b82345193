package dump

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/foldlog/internal/modlog"
)

// Filter defines criteria for selecting entries from a dump. Criteria are
// combined with AND logic; zero values disable a criterion.
type Filter struct {
	// MaxLevel keeps entries at least as important as this level.
	// LevelSilent disables level filtering.
	MaxLevel modlog.Level

	// Modules keeps entries whose module matches any of these glob patterns
	// (for example "net.*" or "audio"). Empty means every module.
	Modules []string

	// MessageContains keeps entries whose text contains this substring,
	// compared case-insensitively.
	MessageContains string

	// Since and Until bound the entry timestamps in microseconds. Zero means
	// unbounded.
	Since int64
	Until int64

	// SkipFrames drops frame snapshots.
	SkipFrames bool
}

// IsEmpty reports whether the filter selects everything.
func (f Filter) IsEmpty() bool {
	return f.MaxLevel == modlog.LevelSilent &&
		len(f.Modules) == 0 &&
		f.MessageContains == "" &&
		f.Since == 0 &&
		f.Until == 0 &&
		!f.SkipFrames
}

// Matcher is a compiled Filter.
type Matcher struct {
	filter   Filter
	patterns []glob.Glob
	needle   string
}

// Compile validates the filter's module patterns.
func (f Filter) Compile() (*Matcher, error) {
	m := &Matcher{filter: f, needle: strings.ToLower(f.MessageContains)}
	for _, p := range f.Modules {
		g, err := glob.Compile(p, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid module pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, g)
	}
	return m, nil
}

// Match reports whether e satisfies every criterion.
func (m *Matcher) Match(e modlog.Entry) bool {
	f := m.filter

	if f.SkipFrames && e.IsFrame() {
		return false
	}
	if f.MaxLevel != modlog.LevelSilent && !f.MaxLevel.Allows(e.Level) {
		return false
	}
	if f.Since != 0 && e.Timestamp < f.Since {
		return false
	}
	if f.Until != 0 && e.Timestamp > f.Until {
		return false
	}
	if len(m.patterns) > 0 && !m.matchModule(e.Module) {
		return false
	}
	if m.needle != "" && !strings.Contains(strings.ToLower(entryText(e)), m.needle) {
		return false
	}
	return true
}

func (m *Matcher) matchModule(module string) bool {
	for _, g := range m.patterns {
		if g.Match(module) {
			return true
		}
	}
	return false
}

// entryText is the searchable text of an entry: the message, plus the frame
// title and details when present.
func entryText(e modlog.Entry) string {
	if e.Frame == nil {
		return e.Message
	}
	return e.Message + "\n" + e.Frame.Title + "\n" + e.Frame.Details
}

// FilterEntries returns the entries that match f, preserving order.
func FilterEntries(entries []modlog.Entry, f Filter) ([]modlog.Entry, error) {
	if f.IsEmpty() {
		return entries, nil
	}
	m, err := f.Compile()
	if err != nil {
		return nil, err
	}

	var filtered []modlog.Entry
	for _, e := range entries {
		if m.Match(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}
