package dump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Iron-Ham/foldlog/internal/errors"
	"github.com/Iron-Ham/foldlog/internal/logging"
	"github.com/Iron-Ham/foldlog/internal/modlog"
	"github.com/Iron-Ham/foldlog/internal/ring"
)

// rawDump mirrors Dump but defers decoding of entries so that one bad entry
// does not take down its whole dump.
type rawDump struct {
	Timestamp   *float64             `json:"timestamp"`
	Reason      string               `json:"reason"`
	ModuleWidth int                  `json:"module_width"`
	Loggers     map[string]rawLogger `json:"loggers"`
}

type rawLogger struct {
	History rawHistory `json:"log_history"`
	Frames  rawHistory `json:"frame_history"`
}

type rawHistory struct {
	Capacity int               `json:"capacity"`
	Items    []json.RawMessage `json:"items"`
}

// LoadDumps reads every dump in the session file at path, in file order.
//
// Failures never abort the caller. A missing, unreadable or malformed file,
// or one whose top level is not an array, yields no dumps and one error. An
// element that is not a dump is skipped with one warning, as is an entry
// with an unknown level; the rest of the file still loads. Every problem is
// also reported to diag, which may be nil.
func LoadDumps(path string, diag *logging.Logger) ([]*Data, []error) {
	if diag == nil {
		diag = logging.NopLogger()
	}
	log := diag.WithDump(path)

	content, err := os.ReadFile(path)
	if err != nil {
		var derr *errors.DumpError
		if os.IsNotExist(err) {
			derr = errors.NewDumpError("cannot load dumps", errors.ErrDumpNotFound).WithPath(path)
		} else {
			derr = errors.NewDumpError("cannot read dump file", err).WithPath(path)
		}
		log.Error("failed to load dumps", "error", derr)
		return nil, []error{derr}
	}

	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		derr := errors.NewDumpError("dump file is not a JSON array", errors.ErrMalformedDump).WithPath(path)
		if !json.Valid(trimmed) {
			derr = errors.NewDumpError("dump file is not valid JSON", errors.ErrMalformedDump).WithPath(path)
		}
		log.Error("failed to load dumps", "error", derr)
		return nil, []error{derr}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		derr := errors.NewDumpError("dump file is not valid JSON",
			fmt.Errorf("%w: %v", errors.ErrMalformedDump, err)).WithPath(path)
		log.Error("failed to load dumps", "error", derr)
		return nil, []error{derr}
	}

	var (
		dumps    []*Data
		problems []error
	)
	for i, raw := range elements {
		data, warnings, err := decodeDump(raw)
		if err != nil {
			derr := errors.NewDumpError("skipping dump", err).WithPath(path).WithIndex(i)
			log.Warn("skipping malformed dump", "index", i, "error", err)
			problems = append(problems, derr)
			continue
		}
		for _, w := range warnings {
			derr := errors.NewDumpError(w.Error(), errors.ErrMalformedDump).WithPath(path).WithIndex(i)
			log.Warn("skipping malformed entry", "index", i, "error", w)
			problems = append(problems, derr)
		}
		data.Path = path
		data.Index = i
		dumps = append(dumps, data)
	}

	log.Debug("dumps loaded", "dumps", len(dumps), "problems", len(problems))
	return dumps, problems
}

// decodeDump turns one array element into Data. It fails when the element
// does not have the dump shape and returns a warning for each entry it had
// to drop.
func decodeDump(raw json.RawMessage) (*Data, []error, error) {
	var rd rawDump
	if err := json.Unmarshal(raw, &rd); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errors.ErrMalformedDump, err)
	}
	if rd.Timestamp == nil {
		return nil, nil, fmt.Errorf("%w: missing timestamp", errors.ErrMalformedDump)
	}
	if rd.Loggers == nil {
		return nil, nil, fmt.Errorf("%w: missing loggers", errors.ErrMalformedDump)
	}

	data := &Data{
		Timestamp:   unixSeconds(*rd.Timestamp),
		Reason:      ParseReason(rd.Reason),
		ModuleWidth: rd.ModuleWidth,
		Loggers:     make(map[string]modlog.Snapshot, len(rd.Loggers)),
	}

	var warnings []error
	for id, rl := range rd.Loggers {
		history, hw := decodeHistory(id, "log_history", rl.History)
		frames, fw := decodeHistory(id, "frame_history", rl.Frames)
		warnings = append(warnings, hw...)
		warnings = append(warnings, fw...)
		data.Loggers[id] = modlog.Snapshot{History: history, Frames: frames}
	}
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].Error() < warnings[j].Error() })
	return data, warnings, nil
}

func decodeHistory(module, kind string, rh rawHistory) (ring.Snapshot[modlog.Entry], []error) {
	var warnings []error
	items := make([]modlog.Entry, 0, len(rh.Items))
	for i, raw := range rh.Items {
		var e modlog.Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			warnings = append(warnings, fmt.Errorf("module %s %s item %d: %v", module, kind, i, err))
			continue
		}
		e.Module = module
		items = append(items, e)
	}
	return normalize(ring.Snapshot[modlog.Entry]{Capacity: rh.Capacity, Items: items}), warnings
}

// normalize passes a snapshot through a ring buffer so the loaded form obeys
// the buffer's capacity contract.
func normalize(s ring.Snapshot[modlog.Entry]) ring.Snapshot[modlog.Entry] {
	if len(s.Items) == 0 && s.Capacity < 1 {
		return s
	}
	b, err := ring.FromSnapshot(s)
	if err != nil {
		return s
	}
	return b.Snapshot()
}

// ListDumps returns the session files in dir, oldest first. File names embed
// a sortable timestamp, so lexicographic order is creation order.
func ListDumps(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, FilePrefix+"*"+FileSuffix))
	if err != nil {
		return nil, errors.NewDumpError("list dump files", err).WithPath(dir)
	}
	files := matches[:0]
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// LatestDump returns the newest session file in dir.
func LatestDump(dir string) (string, error) {
	files, err := ListDumps(dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", errors.NewDumpError("no dump files", errors.ErrDumpNotFound).WithPath(dir)
	}
	return files[len(files)-1], nil
}

// CleanupOldDumps deletes all but the newest keep session files in dir and
// returns the deleted paths. A negative keep disables cleanup.
func CleanupOldDumps(dir string, keep int, diag *logging.Logger) ([]string, error) {
	if keep < 0 {
		return nil, nil
	}
	if diag == nil {
		diag = logging.NopLogger()
	}

	files, err := ListDumps(dir)
	if err != nil {
		return nil, err
	}
	if len(files) <= keep {
		return nil, nil
	}

	var (
		removed []string
		errs    []error
	)
	for _, f := range files[:len(files)-keep] {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			diag.WithDump(f).Warn("failed to remove old dump", "error", err)
			errs = append(errs, errors.NewDumpError("remove old dump", err).WithPath(f))
			continue
		}
		removed = append(removed, f)
	}
	if len(removed) > 0 {
		diag.Info("removed old dumps", "count", len(removed), "kept", keep, "dir", dir)
	}
	return removed, errors.Join(errs...)
}

// IsSessionFile reports whether name looks like a session file name.
func IsSessionFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, FilePrefix) && strings.HasSuffix(base, FileSuffix)
}
