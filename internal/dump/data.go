package dump

import (
	"math"
	"sort"
	"time"

	"github.com/Iron-Ham/foldlog/internal/fold"
	"github.com/Iron-Ham/foldlog/internal/modlog"
)

// Dump is one persisted element of a session file.
type Dump struct {
	Timestamp   float64                    `json:"timestamp"` // unix seconds
	Reason      Reason                     `json:"reason"`
	ModuleWidth int                        `json:"module_width"`
	Loggers     map[string]modlog.Snapshot `json:"loggers"`
}

// NewDump builds a Dump from logger snapshots taken at now.
func NewDump(snaps map[string]modlog.Snapshot, reason Reason, now time.Time) Dump {
	if snaps == nil {
		snaps = map[string]modlog.Snapshot{}
	}
	return Dump{
		Timestamp:   float64(now.UnixMilli()) / 1000,
		Reason:      reason,
		ModuleWidth: moduleWidth(snaps),
		Loggers:     snaps,
	}
}

func moduleWidth(snaps map[string]modlog.Snapshot) int {
	width := 0
	for id := range snaps {
		if len(id) > width {
			width = len(id)
		}
	}
	return width
}

// Data is one dump loaded back from a session file, ready for presentation.
type Data struct {
	// Path is the session file the dump was read from.
	Path string
	// Index is the dump's position in the session file.
	Index       int
	Timestamp   time.Time
	Reason      Reason
	ModuleWidth int
	Loggers     map[string]modlog.Snapshot
}

func unixSeconds(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(math.Round(frac*1e3))*int64(time.Millisecond))
}

// Modules returns the module ids in alphabetical order.
func (d *Data) Modules() []string {
	ids := make([]string, 0, len(d.Loggers))
	for id := range d.Loggers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// moduleEntries returns one module's messages and frames in timestamp order.
func (d *Data) moduleEntries(id string) []modlog.Entry {
	snap := d.Loggers[id]
	entries := make([]modlog.Entry, 0, len(snap.History.Items)+len(snap.Frames.Items))
	for _, e := range snap.History.Items {
		e.Module = id
		entries = append(entries, e)
	}
	for _, e := range snap.Frames.Items {
		e.Module = id
		entries = append(entries, e)
	}
	sortByTimestamp(entries)
	return entries
}

// Entries returns the dump's entries. The collated view is one timeline of
// every module sorted by timestamp. The module view groups entries by
// module in alphabetical order, each module in timestamp order.
func (d *Data) Entries(collated bool) []modlog.Entry {
	var out []modlog.Entry
	for _, id := range d.Modules() {
		out = append(out, d.moduleEntries(id)...)
	}
	if collated {
		sortByTimestamp(out)
	}
	return out
}

// Tree returns the fold tree of the chosen view. In the module view each
// module is folded on its own so no module's entries end up owned by
// another's.
func (d *Data) Tree(collated bool) *fold.Node {
	return BuildTree(d.Entries(collated), collated)
}

// BuildTree folds entries laid out as Entries lays them out, for example
// after filtering. Module view entries are folded one module run at a time.
func BuildTree(entries []modlog.Entry, collated bool) *fold.Node {
	if collated {
		return fold.Build(entries)
	}
	var trees []*fold.Node
	start := 0
	for i := 1; i <= len(entries); i++ {
		if i == len(entries) || entries[i].Module != entries[start].Module {
			trees = append(trees, fold.Build(entries[start:i]))
			start = i
		}
	}
	return fold.Join(trees...)
}

// EntryCount returns the number of entries across all modules.
func (d *Data) EntryCount() int {
	n := 0
	for _, snap := range d.Loggers {
		n += len(snap.History.Items) + len(snap.Frames.Items)
	}
	return n
}

func sortByTimestamp(entries []modlog.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp < entries[j].Timestamp
	})
}
