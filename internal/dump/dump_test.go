package dump

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/foldlog/internal/errors"
	"github.com/Iron-Ham/foldlog/internal/fold"
	"github.com/Iron-Ham/foldlog/internal/modlog"
	"github.com/Iron-Ham/foldlog/internal/ring"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func entry(module string, ts int64, level modlog.Level, msg string) modlog.Entry {
	return modlog.Entry{Timestamp: ts, Level: level, Module: module, Message: msg, FrameNumber: ts / 100}
}

func frameEntry(module string, ts int64, title, details string) modlog.Entry {
	return modlog.Entry{
		Timestamp:   ts,
		Level:       modlog.LevelFrameOnly,
		Module:      module,
		FrameNumber: ts / 100,
		Frame:       &modlog.FrameLog{Title: title, Details: details, IsComplete: true},
	}
}

func snapshot(capacity int, history []modlog.Entry, frames []modlog.Entry) modlog.Snapshot {
	if history == nil {
		history = []modlog.Entry{}
	}
	if frames == nil {
		frames = []modlog.Entry{}
	}
	return modlog.Snapshot{
		History: ring.Snapshot[modlog.Entry]{Capacity: capacity, Items: history},
		Frames:  ring.Snapshot[modlog.Entry]{Capacity: capacity, Items: frames},
	}
}

func sampleSnapshots(n int64) map[string]modlog.Snapshot {
	return map[string]modlog.Snapshot{
		"net": snapshot(8,
			[]modlog.Entry{
				entry("net", 10+n, modlog.LevelInfo, "connect"),
				entry("net", 30+n, modlog.LevelError, "reset"),
			},
			[]modlog.Entry{frameEntry("net", 20+n, "tick", "rx 3\ntx 1")},
		),
		"audio": snapshot(4,
			[]modlog.Entry{entry("audio", 25+n, modlog.LevelWarning, "underrun")},
			nil,
		),
	}
}

func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func messages(entries []modlog.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text()
	}
	return out
}

// -----------------------------------------------------------------------------
// Reason
// -----------------------------------------------------------------------------

func TestParseReason(t *testing.T) {
	tests := []struct {
		in   string
		want Reason
	}{
		{"ERROR", ReasonError},
		{"manual", ReasonManual},
		{"APP_CLOSE", ReasonAppClose},
		{"FLUSH", ReasonFlush},
		{"UNSPECIFIED", ReasonUnspecified},
		{"REBOOT", ReasonUnspecified},
		{"", ReasonUnspecified},
	}
	for _, tt := range tests {
		if got := ParseReason(tt.in); got != tt.want {
			t.Errorf("ParseReason(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestReason_Notifies(t *testing.T) {
	notifies := map[Reason]bool{
		ReasonFlush:       false,
		ReasonAppClose:    false,
		ReasonManual:      true,
		ReasonError:       true,
		ReasonUnspecified: true,
	}
	for r, want := range notifies {
		if got := r.Notifies(); got != want {
			t.Errorf("%s.Notifies() = %v, want %v", r, got, want)
		}
	}
}

// -----------------------------------------------------------------------------
// Writer
// -----------------------------------------------------------------------------

func TestAppendToSession_Protocol(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump_test.json")

	if err := AppendToSession(path, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("first append: %v", err)
	}
	content, _ := os.ReadFile(path)
	if string(content) != "[\n{\"a\":1}\n]" {
		t.Fatalf("after first append: %q", content)
	}

	if err := AppendToSession(path, []byte(`{"a":2}`)); err != nil {
		t.Fatalf("second append: %v", err)
	}
	content, _ = os.ReadFile(path)
	if string(content) != "[\n{\"a\":1},\n{\"a\":2}\n]" {
		t.Fatalf("after second append: %q", content)
	}

	var arr []map[string]int
	if err := json.Unmarshal(content, &arr); err != nil || len(arr) != 2 {
		t.Errorf("file should be a valid two-element array: %v", err)
	}
}

func TestAppendToSession_RefusesCorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated trailer", "[\n{\"a\":1}\n"},
		{"trailing garbage", "[\n{\"a\":1}\n]xx"},
		{"too short", "]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dump_bad.json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			err := AppendToSession(path, []byte(`{"a":2}`))
			if !errors.Is(err, errors.ErrCorruptSessionFile) {
				t.Fatalf("expected ErrCorruptSessionFile, got %v", err)
			}
			content, _ := os.ReadFile(path)
			if string(content) != tt.content {
				t.Errorf("corrupt file was modified: %q", content)
			}
		})
	}
}

func TestAppendToSession_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump_concurrent.json")

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Go(func() {
			if err := AppendToSession(path, []byte(`{"n":`+strconv.Itoa(i)+`}`)); err != nil {
				t.Errorf("append: %v", err)
			}
		})
	}
	wg.Wait()

	content, _ := os.ReadFile(path)
	var arr []map[string]int
	if err := json.Unmarshal(content, &arr); err != nil {
		t.Fatalf("concurrent appends corrupted the file: %v", err)
	}
	if len(arr) != 20 {
		t.Errorf("expected 20 elements, got %d", len(arr))
	}
}

func TestWriter_SessionFileName(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 890_000_000, time.UTC)
	if got := SessionFileName(ts, 4242); got != "dump_20260304-050607.890_4242.json" {
		t.Errorf("SessionFileName = %q", got)
	}
	if !IsSessionFile("/x/dump_20260304-050607.890_4242.json") || IsSessionFile("/x/latest.json") {
		t.Error("IsSessionFile misclassified")
	}
}

func TestWriter_SaveNotifiesAndMirrors(t *testing.T) {
	dir := t.TempDir()

	type note struct {
		path   string
		reason Reason
	}
	var notes []note
	w := NewWriter(dir, WriterOptions{
		DevMode:  true,
		Notifier: NotifierFunc(func(path string, reason Reason) { notes = append(notes, note{path, reason}) }),
		Now:      fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	})

	if w.Path() != "" {
		t.Error("session file should be created lazily")
	}

	reasons := []Reason{ReasonError, ReasonFlush, ReasonManual, ReasonAppClose}
	var path string
	for _, r := range reasons {
		p, err := w.Save(sampleSnapshots(0), r)
		if err != nil {
			t.Fatalf("Save(%s): %v", r, err)
		}
		if path != "" && p != path {
			t.Errorf("all saves should go to one session file, got %s and %s", path, p)
		}
		path = p
	}

	if filepath.Dir(path) != dir || !IsSessionFile(path) {
		t.Errorf("unexpected session path %s", path)
	}
	if w.Saved() != 4 {
		t.Errorf("Saved() = %d, want 4", w.Saved())
	}
	if len(notes) != 2 || notes[0].reason != ReasonError || notes[1].reason != ReasonManual {
		t.Errorf("notifications = %+v, want ERROR and MANUAL only", notes)
	}

	session, _ := os.ReadFile(path)
	latest, err := os.ReadFile(filepath.Join(dir, DefaultLatestName))
	if err != nil {
		t.Fatalf("latest mirror missing: %v", err)
	}
	if !bytes.Equal(session, latest) {
		t.Error("latest mirror should equal the whole session file")
	}
}

func TestWriter_NoMirrorOutsideDevMode(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, WriterOptions{})
	if _, err := w.Save(sampleSnapshots(0), ReasonManual); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, DefaultLatestName)); !os.IsNotExist(err) {
		t.Error("latest mirror should only be written in dev mode")
	}
}

func TestWriter_ModuleWidth(t *testing.T) {
	d := NewDump(sampleSnapshots(0), ReasonManual, time.Unix(100, 0))
	if d.ModuleWidth != len("audio") {
		t.Errorf("ModuleWidth = %d, want 5", d.ModuleWidth)
	}
	if NewDump(nil, ReasonManual, time.Unix(0, 0)).Loggers == nil {
		t.Error("loggers should encode as an object, not null")
	}
}

// -----------------------------------------------------------------------------
// Loader
// -----------------------------------------------------------------------------

func TestRoundTrip_ThreeDumps(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	w := NewWriter(dir, WriterOptions{Now: fixedClock(start)})

	written := []struct {
		snaps  map[string]modlog.Snapshot
		reason Reason
	}{
		{sampleSnapshots(0), ReasonError},
		{sampleSnapshots(1000), ReasonManual},
		{map[string]modlog.Snapshot{"solo": snapshot(2, nil, nil)}, ReasonAppClose},
	}

	var path string
	for _, wr := range written {
		p, err := w.Save(wr.snaps, wr.reason)
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		path = p
	}

	dumps, problems := LoadDumps(path, nil)
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if len(dumps) != 3 {
		t.Fatalf("expected 3 dumps, got %d", len(dumps))
	}

	for i, d := range dumps {
		want := written[i]
		if d.Index != i || d.Path != path {
			t.Errorf("dump %d: Index=%d Path=%s", i, d.Index, d.Path)
		}
		if d.Reason != want.reason {
			t.Errorf("dump %d: Reason = %s, want %s", i, d.Reason, want.reason)
		}
		wantTime := start.Add(time.Duration(i+1) * time.Second)
		if !d.Timestamp.Equal(wantTime) {
			t.Errorf("dump %d: Timestamp = %v, want %v", i, d.Timestamp, wantTime)
		}
		if !reflect.DeepEqual(d.Loggers, want.snaps) {
			t.Errorf("dump %d: loggers differ\n got: %+v\nwant: %+v", i, d.Loggers, want.snaps)
		}
	}
}

func TestLoadDumps_CorruptRecordIsolation(t *testing.T) {
	var elements []string
	for i := range 4 {
		b, err := json.Marshal(NewDump(sampleSnapshots(int64(i)), ReasonManual, time.Unix(int64(1000+i), 0)))
		if err != nil {
			t.Fatal(err)
		}
		elements = append(elements, string(b))
	}
	// Five elements, the third one malformed.
	elements = append(elements[:2], append([]string{`{"timestamp": "yesterday", "loggers": 7}`}, elements[2:]...)...)

	path := filepath.Join(t.TempDir(), "dump_mixed.json")
	if err := os.WriteFile(path, []byte("[\n"+strings.Join(elements, ",\n")+"\n]"), 0644); err != nil {
		t.Fatal(err)
	}

	dumps, problems := LoadDumps(path, nil)
	if len(dumps) != 4 {
		t.Fatalf("expected 4 valid dumps, got %d", len(dumps))
	}
	if len(problems) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(problems), problems)
	}
	var derr *errors.DumpError
	if !errors.As(problems[0], &derr) || derr.Index != 2 {
		t.Errorf("warning should point at element 2, got %v", problems[0])
	}
	if errors.SeverityOf(problems[0]) != errors.SeverityWarning {
		t.Errorf("record problems are warnings, got %v", errors.SeverityOf(problems[0]))
	}
	if dumps[2].Index != 3 {
		t.Errorf("dumps keep their file position, got %d", dumps[2].Index)
	}
}

func TestLoadDumps_FileFailures(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "nope.json"), errors.ErrDumpNotFound},
		{"malformed", write("bad.json", "[\n{\"timestamp\": 1,"), errors.ErrMalformedDump},
		{"not an array", write("object.json", `{"timestamp": 1}`), errors.ErrMalformedDump},
		{"garbage", write("garbage.json", "hello"), errors.ErrMalformedDump},
		{"empty", write("empty.json", ""), errors.ErrMalformedDump},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dumps, problems := LoadDumps(tt.path, nil)
			if len(dumps) != 0 {
				t.Errorf("expected no dumps, got %d", len(dumps))
			}
			if len(problems) != 1 || !errors.Is(problems[0], tt.want) {
				t.Errorf("problems = %v, want one %v", problems, tt.want)
			}
		})
	}
}

func TestLoadDumps_UnknownLevelAndReason(t *testing.T) {
	content := `[
{"timestamp": 12.5, "reason": "REBOOT", "module_width": 3, "loggers": {
  "net": {
    "log_history": {"capacity": 4, "items": [
      {"timestamp": 1, "level": "INFO", "message": "ok", "frame_number": 0, "current_frame": null},
      {"timestamp": 2, "level": "CHATTY", "message": "??", "frame_number": 0, "current_frame": null},
      {"timestamp": 3, "level": "ERROR", "message": "bad", "frame_number": 1,
       "current_frame": {"title": "t", "details": "d", "is_complete": false}}
    ]},
    "frame_history": {"capacity": 2, "items": []}
  }
}}
]`
	path := filepath.Join(t.TempDir(), "dump_levels.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	dumps, problems := LoadDumps(path, nil)
	if len(dumps) != 1 {
		t.Fatalf("expected 1 dump, got %d", len(dumps))
	}
	if len(problems) != 1 {
		t.Errorf("expected 1 warning for the unknown level, got %v", problems)
	}

	d := dumps[0]
	if d.Reason != ReasonUnspecified {
		t.Errorf("unknown reason should load as UNSPECIFIED, got %s", d.Reason)
	}
	if d.Timestamp.UnixMilli() != 12500 {
		t.Errorf("Timestamp = %v", d.Timestamp)
	}
	items := d.Loggers["net"].History.Items
	if got := messages(items); !reflect.DeepEqual(got, []string{"ok", "bad"}) {
		t.Errorf("items = %v", got)
	}
	if items[1].Frame == nil || items[1].Frame.IsComplete {
		t.Error("provisional frame should survive loading")
	}
	if items[0].Module != "net" {
		t.Error("module should be restored from the logger key")
	}
}

func TestListAndCleanup(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"dump_20260101-000003.000_1.json",
		"dump_20260101-000001.000_1.json",
		"dump_20260101-000002.000_1.json",
		"dump_20260101-000004.000_1.json",
		"latest.json",
		"notes.txt",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("[\n{}\n]"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ListDumps(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 4 || filepath.Base(files[0]) != "dump_20260101-000001.000_1.json" {
		t.Errorf("ListDumps = %v", files)
	}
	latest, err := LatestDump(dir)
	if err != nil || filepath.Base(latest) != "dump_20260101-000004.000_1.json" {
		t.Errorf("LatestDump = %s, %v", latest, err)
	}

	if removed, err := CleanupOldDumps(dir, -1, nil); err != nil || len(removed) != 0 {
		t.Errorf("negative keep should disable cleanup, removed %v, err %v", removed, err)
	}

	removed, err := CleanupOldDumps(dir, 2, nil)
	if err != nil {
		t.Fatalf("CleanupOldDumps: %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("expected 2 removed, got %v", removed)
	}
	files, _ = ListDumps(dir)
	var left []string
	for _, f := range files {
		left = append(left, filepath.Base(f))
	}
	want := []string{"dump_20260101-000003.000_1.json", "dump_20260101-000004.000_1.json"}
	if !reflect.DeepEqual(left, want) {
		t.Errorf("remaining = %v, want %v", left, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "latest.json")); err != nil {
		t.Error("cleanup must not touch non-session files")
	}

	if removed, _ := CleanupOldDumps(dir, 5, nil); len(removed) != 0 {
		t.Errorf("nothing to remove when keep exceeds count, removed %v", removed)
	}
}

func TestLatestDump_Empty(t *testing.T) {
	if _, err := LatestDump(t.TempDir()); !errors.Is(err, errors.ErrDumpNotFound) {
		t.Errorf("expected ErrDumpNotFound, got %v", err)
	}
}

// -----------------------------------------------------------------------------
// Views
// -----------------------------------------------------------------------------

func TestData_Views(t *testing.T) {
	d := &Data{Loggers: sampleSnapshots(0)}

	if got := d.Modules(); !reflect.DeepEqual(got, []string{"audio", "net"}) {
		t.Errorf("Modules() = %v", got)
	}

	collated := messages(d.Entries(true))
	if want := []string{"connect", "tick", "underrun", "reset"}; !reflect.DeepEqual(collated, want) {
		t.Errorf("collated = %v, want %v", collated, want)
	}

	byModule := messages(d.Entries(false))
	if want := []string{"underrun", "connect", "tick", "reset"}; !reflect.DeepEqual(byModule, want) {
		t.Errorf("module view = %v, want %v", byModule, want)
	}

	for _, e := range d.Entries(true) {
		if e.Module == "" {
			t.Errorf("entry %q has no module", e.Text())
		}
	}
	if d.EntryCount() != 4 {
		t.Errorf("EntryCount() = %d", d.EntryCount())
	}
}

func TestData_TreeViews(t *testing.T) {
	// audio has a WARNING, net an INFO then ERROR: in the module view the
	// audio warning must not own net's info.
	d := &Data{Loggers: map[string]modlog.Snapshot{
		"audio": snapshot(4, []modlog.Entry{entry("audio", 5, modlog.LevelWarning, "w")}, nil),
		"net": snapshot(4, []modlog.Entry{
			entry("net", 1, modlog.LevelInfo, "i"),
			entry("net", 9, modlog.LevelError, "e"),
		}, nil),
	}}

	byModule := d.Tree(false)
	if len(byModule.Children) != 3 {
		t.Fatalf("module view root children = %d, want 3", len(byModule.Children))
	}
	for _, c := range byModule.Children {
		if !c.IsLeaf() {
			t.Errorf("%s should be a leaf in the module view", c.Entry.Text())
		}
	}

	collated := d.Tree(true)
	// i(INFO) then w(WARNING) then e(ERROR): all siblings, each more severe.
	if got := messages(collated.Flatten()); !reflect.DeepEqual(got, []string{"i", "w", "e"}) {
		t.Errorf("collated flatten = %v", got)
	}
	if collated.Kind != fold.KindRoot {
		t.Error("tree should be rooted")
	}
	if !reflect.DeepEqual(messages(byModule.Flatten()), messages(d.Entries(false))) {
		t.Error("module tree should flatten to the module view")
	}
}

func TestBuildTree_ModuleRuns(t *testing.T) {
	// Filtered module view: audio's DEBUG must not be owned by net's INFO.
	entries := []modlog.Entry{
		entry("net", 1, modlog.LevelInfo, "connect"),
		entry("audio", 2, modlog.LevelDebug, "buffer"),
	}

	byModule := BuildTree(entries, false)
	if len(byModule.Children) != 2 {
		t.Errorf("module view root children = %d, want 2", len(byModule.Children))
	}

	collated := BuildTree(entries, true)
	if len(collated.Children) != 1 || len(collated.Children[0].Children) != 1 {
		t.Errorf("collated view should nest buffer under connect")
	}

	if empty := BuildTree(nil, false); len(empty.Children) != 0 {
		t.Errorf("empty tree has %d children", len(empty.Children))
	}
}

// -----------------------------------------------------------------------------
// Filter and export
// -----------------------------------------------------------------------------

func TestFilterEntries(t *testing.T) {
	entries := []modlog.Entry{
		entry("net.tcp", 10, modlog.LevelInfo, "Connect ok"),
		entry("net.udp", 20, modlog.LevelDebug, "packet"),
		entry("audio", 30, modlog.LevelError, "underrun"),
		frameEntry("net.tcp", 40, "tick", "connect retries 2"),
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty", Filter{}, []string{"Connect ok", "packet", "underrun", "tick"}},
		{"max level", Filter{MaxLevel: modlog.LevelInfo}, []string{"Connect ok", "underrun"}},
		{"module glob", Filter{Modules: []string{"net.*"}}, []string{"Connect ok", "packet", "tick"}},
		{"module any of", Filter{Modules: []string{"audio", "net.udp"}}, []string{"packet", "underrun"}},
		{"message searches frames", Filter{MessageContains: "CONNECT"}, []string{"Connect ok", "tick"}},
		{"time range", Filter{Since: 15, Until: 35}, []string{"packet", "underrun"}},
		{"skip frames", Filter{SkipFrames: true}, []string{"Connect ok", "packet", "underrun"}},
		{"combined", Filter{MaxLevel: modlog.LevelDebug, Modules: []string{"net.*"}}, []string{"Connect ok", "packet"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterEntries(entries, tt.filter)
			if err != nil {
				t.Fatalf("FilterEntries: %v", err)
			}
			if m := messages(got); !reflect.DeepEqual(m, tt.want) && !(len(m) == 0 && len(tt.want) == 0) {
				t.Errorf("got %v, want %v", m, tt.want)
			}
		})
	}
}

func TestFilterEntries_BadPattern(t *testing.T) {
	if _, err := FilterEntries(nil, Filter{Modules: []string{"net.["}}); err == nil {
		t.Error("expected error for invalid glob")
	}
}

func TestExportEntries(t *testing.T) {
	entries := []modlog.Entry{
		entry("net", 1_234_567, modlog.LevelWarning, "slow, very slow"),
		frameEntry("net", 2_000_000, "tick", "a\nb"),
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := ExportEntries(&buf, entries, "JSON"); err != nil {
			t.Fatal(err)
		}
		var rows []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(rows) != 2 || rows[0]["module"] != "net" || rows[1]["frame_title"] != "tick" {
			t.Errorf("rows = %v", rows)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := ExportEntries(&buf, entries, FormatYAML); err != nil {
			t.Fatal(err)
		}
		var rows []map[string]any
		if err := yaml.Unmarshal(buf.Bytes(), &rows); err != nil {
			t.Fatalf("invalid YAML: %v", err)
		}
		if len(rows) != 2 || rows[0]["level"] != "WARNING" {
			t.Errorf("rows = %v", rows)
		}
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		if err := ExportEntries(&buf, entries, FormatCSV); err != nil {
			t.Fatal(err)
		}
		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		if len(records) != 3 || records[1][3] != "slow, very slow" || records[2][6] != "a\nb" {
			t.Errorf("records = %v", records)
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := ExportEntries(&buf, entries, FormatText); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		for _, want := range []string{"[1.234s] WARNING", "net - slow, very slow", "[2.000s] FRAME_ONLY", "    a\n    b\n"} {
			if !strings.Contains(out, want) {
				t.Errorf("text output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		if err := ExportEntries(&bytes.Buffer{}, entries, "xml"); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}
