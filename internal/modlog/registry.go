package modlog

import (
	"sort"
	"sync"

	"github.com/Iron-Ham/foldlog/internal/errors"
)

// Registry owns the loggers of one application run. It is an explicit
// service: the application opens it, registers its modules, and closes it.
// Registration is refused while the registry is closed.
type Registry struct {
	mu      sync.RWMutex
	open    bool
	loggers map[string]*Logger

	defaults Config
	opts     []Option
	clock    *MonotonicClock
}

// NewRegistry creates a closed registry. defaults is used by RegisterDefault;
// opts are applied to every logger it creates.
func NewRegistry(defaults Config, opts ...Option) *Registry {
	clock := NewMonotonicClock()
	return &Registry{
		loggers:  make(map[string]*Logger),
		defaults: defaults,
		// The shared clock comes first so callers can override it.
		opts:  append([]Option{WithClock(clock)}, opts...),
		clock: clock,
	}
}

// Open starts accepting registrations.
func (r *Registry) Open() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open = true
}

// Close stops accepting registrations. Registered loggers remain usable and
// retrievable so a final dump can still be taken.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open = false
}

// IsOpen reports whether the registry accepts registrations.
func (r *Registry) IsOpen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.open
}

// Register creates and starts a logger for id with cfg. extra options are
// applied after the registry's own.
func (r *Registry) Register(id string, cfg Config, extra ...Option) (*Logger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open {
		return nil, errors.NewLoggerError("register", errors.ErrRegistryClosed).WithModule(id)
	}
	if _, exists := r.loggers[id]; exists {
		return nil, errors.NewLoggerError("register", errors.ErrDuplicateModule).WithModule(id)
	}

	opts := make([]Option, 0, len(r.opts)+len(extra))
	opts = append(opts, r.opts...)
	opts = append(opts, extra...)
	l, err := New(id, cfg, opts...)
	if err != nil {
		return nil, err
	}
	l.Start()
	r.loggers[id] = l
	return l, nil
}

// RegisterDefault registers id with the registry's default settings.
func (r *Registry) RegisterDefault(id string, extra ...Option) (*Logger, error) {
	return r.Register(id, r.defaults, extra...)
}

// Unregister removes id from the registry.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loggers[id]; !ok {
		return errors.NewLoggerError("unregister", errors.ErrModuleNotFound).WithModule(id)
	}
	delete(r.loggers, id)
	return nil
}

// Get returns the logger registered as id.
func (r *Registry) Get(id string) (*Logger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loggers[id]
	return l, ok
}

// IDs returns the registered module ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.loggers))
	for id := range r.loggers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered loggers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.loggers)
}

// Snapshot copies the histories of every registered logger, keyed by id.
func (r *Registry) Snapshot() map[string]Snapshot {
	r.mu.RLock()
	loggers := make([]*Logger, 0, len(r.loggers))
	for _, l := range r.loggers {
		loggers = append(loggers, l)
	}
	r.mu.RUnlock()

	snaps := make(map[string]Snapshot, len(loggers))
	for _, l := range loggers {
		snaps[l.ID()] = l.Snapshot()
	}
	return snaps
}

// Tick advances the frame counter shared by the registry's loggers.
func (r *Registry) Tick() int64 {
	return r.clock.Tick()
}
