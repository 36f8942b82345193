package event

import "time"

// Event types published on the bus.
const (
	TypeDumpSaved        = "dump.saved"
	TypeDumpReady        = "dump.ready"
	TypeDumpFailed       = "dump.failed"
	TypeDumpDetected     = "dump.detected"
	TypeModuleRegistered = "module.registered"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "dump.saved").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// DumpSavedEvent is emitted after every successful append to a session file,
// whatever the reason.
type DumpSavedEvent struct {
	baseEvent
	Path    string // Session file the dump was appended to
	Reason  string // Dump reason wire name
	Modules int    // Number of loggers in the dump
	Index   int    // Position of the dump in the session file
}

// NewDumpSavedEvent creates a DumpSavedEvent.
func NewDumpSavedEvent(path, reason string, modules, index int) DumpSavedEvent {
	return DumpSavedEvent{
		baseEvent: newBaseEvent(TypeDumpSaved),
		Path:      path,
		Reason:    reason,
		Modules:   modules,
		Index:     index,
	}
}

// DumpReadyEvent tells a viewer that a dump worth showing was written.
// It is not emitted for shutdown or flush dumps.
type DumpReadyEvent struct {
	baseEvent
	Path   string
	Reason string
}

// NewDumpReadyEvent creates a DumpReadyEvent.
func NewDumpReadyEvent(path, reason string) DumpReadyEvent {
	return DumpReadyEvent{
		baseEvent: newBaseEvent(TypeDumpReady),
		Path:      path,
		Reason:    reason,
	}
}

// DumpFailedEvent is emitted when a dump could not be written.
type DumpFailedEvent struct {
	baseEvent
	Reason string
	Err    error
}

// NewDumpFailedEvent creates a DumpFailedEvent.
func NewDumpFailedEvent(reason string, err error) DumpFailedEvent {
	return DumpFailedEvent{
		baseEvent: newBaseEvent(TypeDumpFailed),
		Reason:    reason,
		Err:       err,
	}
}

// DumpDetectedEvent is emitted by the directory watcher when a session file
// is created or grows, possibly by another process.
type DumpDetectedEvent struct {
	baseEvent
	Path    string
	Created bool // true for a new file, false for an append
}

// NewDumpDetectedEvent creates a DumpDetectedEvent.
func NewDumpDetectedEvent(path string, created bool) DumpDetectedEvent {
	return DumpDetectedEvent{
		baseEvent: newBaseEvent(TypeDumpDetected),
		Path:      path,
		Created:   created,
	}
}

// ModuleRegisteredEvent is emitted when a module logger joins a session.
type ModuleRegisteredEvent struct {
	baseEvent
	Module       string
	PrintLevel   string
	ArchiveLevel string
}

// NewModuleRegisteredEvent creates a ModuleRegisteredEvent.
func NewModuleRegisteredEvent(module, printLevel, archiveLevel string) ModuleRegisteredEvent {
	return ModuleRegisteredEvent{
		baseEvent:    newBaseEvent(TypeModuleRegistered),
		Module:       module,
		PrintLevel:   printLevel,
		ArchiveLevel: archiveLevel,
	}
}
