// Package event provides a pub-sub event bus for decoupled communication
// between the dump writer, the dump directory watcher and the viewer.
//
// # Main Types
//
//   - [Event]: Interface that all events implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Events
//
//   - [DumpSavedEvent] (dump.saved): every successful append to a session file
//   - [DumpReadyEvent] (dump.ready): a dump a viewer should show
//   - [DumpFailedEvent] (dump.failed): a dump could not be written
//   - [DumpDetectedEvent] (dump.detected): the watcher saw a session file change
//   - [ModuleRegisteredEvent] (module.registered): a module logger joined the session
//
// # Thread Safety
//
// [Bus] is safe for concurrent use. Handlers are called synchronously on the
// publishing goroutine; a panicking handler is reported to the diagnostics
// logger and does not prevent other handlers from running.
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//
//	bus.Subscribe(event.TypeDumpReady, func(e event.Event) {
//	    ready := e.(event.DumpReadyEvent)
//	    reload(ready.Path)
//	})
//
//	bus.Publish(event.NewDumpReadyEvent("/tmp/dump_x.json", "ERROR"))
package event
