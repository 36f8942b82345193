// Package internal contains integration tests that verify the packages work
// together: a session writes dumps, the watcher notices them, and the loader
// and fold tree bring them back for display.
package internal

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/foldlog/internal/config"
	"github.com/Iron-Ham/foldlog/internal/dump"
	"github.com/Iron-Ham/foldlog/internal/event"
	"github.com/Iron-Ham/foldlog/internal/logging"
	"github.com/Iron-Ham/foldlog/internal/session"
	"github.com/Iron-Ham/foldlog/internal/tui"
	"github.com/Iron-Ham/foldlog/internal/watch"
)

// recorder collects the events it is subscribed to.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) record(e event.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

func openTestSession(t *testing.T, dir string, bus *event.Bus) *session.Session {
	t.Helper()
	cfg := config.Default()
	cfg.Dump.Dir = dir
	s, err := session.Open(cfg, session.Options{
		Diagnostics: logging.NopLogger(),
		Output:      io.Discard,
		Bus:         bus,
	})
	if err != nil {
		t.Fatalf("session.Open() error = %v", err)
	}
	return s
}

// TestSessionDumpRoundTrip drives a session through an error and a close and
// checks that the watcher, the loader and the fold tree agree on the result.
func TestSessionDumpRoundTrip(t *testing.T) {
	dir := t.TempDir()
	bus := event.NewBus(logging.NopLogger())

	rec := &recorder{}
	for _, typ := range []string{event.TypeModuleRegistered, event.TypeDumpSaved, event.TypeDumpReady} {
		bus.Subscribe(typ, rec.record)
	}

	detected := make(chan string, 8)
	w, err := watch.New(dir,
		watch.WithBus(bus),
		watch.WithDebounce(10*time.Millisecond),
		watch.WithCallback(func(d watch.Detection) {
			select {
			case detected <- d.Path:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatalf("watch.New() error = %v", err)
	}
	w.Start()
	defer w.Stop()

	s := openTestSession(t, dir, bus)
	net, err := s.Logger("net.tcp")
	if err != nil {
		t.Fatalf("Logger() error = %v", err)
	}
	net.Info("connecting")
	net.Verbose("syn sent")
	net.Debug("syn-ack received")
	net.Error("connection reset")

	var path string
	select {
	case path = <-detected:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the watcher to report the ERROR dump")
	}
	if path != s.Path() {
		t.Errorf("detected %s, want %s", path, s.Path())
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// APP_CLOSE is saved but not announced to viewers
	want := []string{event.TypeModuleRegistered, event.TypeDumpReady, event.TypeDumpSaved, event.TypeDumpSaved}
	if got := rec.types(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", got, want)
	}

	dumps, problems := dump.LoadDumps(path, nil)
	if len(problems) > 0 {
		t.Fatalf("LoadDumps() problems = %v", problems)
	}
	if len(dumps) != 2 {
		t.Fatalf("LoadDumps() = %d dumps, want 2", len(dumps))
	}
	if dumps[0].Reason != dump.ReasonError || dumps[1].Reason != dump.ReasonAppClose {
		t.Errorf("reasons = %s, %s", dumps[0].Reason, dumps[1].Reason)
	}

	d := dumps[0]
	out := tui.RenderTree(d.Tree(true), tui.RenderOptions{
		Threshold:   config.Default().ViewerFoldLevel(),
		ModuleWidth: d.ModuleWidth,
	})
	if !strings.Contains(out, "connection reset") || !strings.Contains(out, "connecting") {
		t.Errorf("rendered tree missing top-level entries:\n%s", out)
	}
	// The verbose and debug detail under "connecting" is folded at WARNING
	if strings.Contains(out, "syn sent") {
		t.Errorf("rendered tree should fold verbose detail:\n%s", out)
	}
	if got := d.Tree(true).Count(); got != 4 {
		t.Errorf("tree holds %d entries, want 4", got)
	}
}

// TestSessionWithoutModules checks that closing an unused session writes
// nothing.
func TestSessionWithoutModules(t *testing.T) {
	dir := t.TempDir()
	s := openTestSession(t, dir, event.NewBus(logging.NopLogger()))
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	files, err := dump.ListDumps(dir)
	if err != nil {
		t.Fatalf("ListDumps() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("ListDumps() = %v, want none", files)
	}
}
