package watch

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/foldlog/internal/dump"
	"github.com/Iron-Ham/foldlog/internal/event"
	"github.com/Iron-Ham/foldlog/internal/logging"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to a
// session file to settle before reporting it.
const DefaultDebounce = 50 * time.Millisecond

// Detection describes a session file that appeared or grew.
type Detection struct {
	Path    string
	Created bool // false when an already known file grew
	Size    int64
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithBus publishes a DumpDetectedEvent for every detection.
func WithBus(bus *event.Bus) Option {
	return func(w *Watcher) { w.bus = bus }
}

// WithCallback calls fn for every detection, from the watch goroutine.
func WithCallback(fn func(Detection)) Option {
	return func(w *Watcher) { w.onDetect = fn }
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *logging.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher reports session files written to a dump directory, including by
// other processes.
type Watcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	bus      *event.Bus
	onDetect func(Detection)
	logger   *logging.Logger
	debounce time.Duration

	// Map of session file path -> last seen size
	known map[string]int64

	mu       sync.RWMutex
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a watcher for dir. The directory is created if missing and
// the session files already in it are not reported.
func New(dir string, opts ...Option) (*Watcher, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		dir:      dir,
		watcher:  fw,
		logger:   logging.NopLogger(),
		debounce: DefaultDebounce,
		known:    make(map[string]int64),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	existing, err := dump.ListDumps(dir)
	if err != nil {
		_ = fw.Close()
		return nil, err
	}
	for _, path := range existing {
		if info, err := os.Stat(path); err == nil {
			w.known[path] = info.Size()
		}
	}

	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Start begins watching in a new goroutine.
func (w *Watcher) Start() {
	w.logger.Debug("watching dump directory", "dir", w.dir)
	go w.watchLoop()
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
	})
}

// Done is closed when the watch goroutine exits.
func (w *Watcher) Done() <-chan struct{} { return w.done }

// Known returns the session files seen so far, sorted.
func (w *Watcher) Known() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	paths := make([]string, 0, len(w.known))
	for p := range w.known {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (w *Watcher) watchLoop() {
	defer close(w.done)

	// Debounce events: one append is an open, a write and a sync
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C

	pending := make(map[string]struct{})

	for {
		select {
		case <-w.stopCh:
			debounceTimer.Stop()
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !dump.IsSessionFile(ev.Name) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = struct{}{}
			debounceTimer.Reset(w.debounce)

		case <-debounceTimer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			pending = make(map[string]struct{})
			sort.Strings(paths)

			for _, p := range paths {
				w.handle(p)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("dump directory watch error", "dir", w.dir, "error", err)
		}
	}
}

// handle reports p if it is new or has grown since it was last seen.
func (w *Watcher) handle(p string) {
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	w.mu.Lock()
	prev, seen := w.known[p]
	if seen && info.Size() <= prev {
		w.mu.Unlock()
		return
	}
	w.known[p] = info.Size()
	w.mu.Unlock()

	d := Detection{Path: p, Created: !seen, Size: info.Size()}
	w.logger.WithDump(p).Debug("dump detected", "created", d.Created, "size", d.Size)

	if w.onDetect != nil {
		w.onDetect(d)
	}
	if w.bus != nil {
		w.bus.Publish(event.NewDumpDetectedEvent(d.Path, d.Created))
	}
}
