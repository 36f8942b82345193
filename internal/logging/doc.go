// Package logging provides the diagnostics channel for foldlog.
//
// It wraps Go's log/slog in two shapes: JSON records written to a rotating
// diagnostics file, and human-readable text written to a terminal. The dump
// writer, loader, watcher and session report their own problems here; module
// loggers use a console Logger as their live output sink.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers
// created via With* methods share the underlying writer.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/dumps", "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Warn("skipping dump record", "index", 3)
//
// # Context Attributes
//
//	dumpLogger := logger.WithDump("/path/to/dump_x.json")
//	dumpLogger.WithModule("net").Info("loaded", "entries", 42)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"loaded","dump":"/path/to/dump_x.json","module":"net","entries":42}
//
// # Log Levels
//
// Besides the slog levels the package knows two finer levels used by module
// loggers: [LevelVerbose] (slog DEBUG-4) and [LevelFrame] (slog DEBUG-8).
// They are rendered by name in both output shapes.
//
// # Rotation
//
// Diagnostics files are rotated by size. Rotated files are named
// diagnostics.log.1 (newest) to diagnostics.log.N (oldest).
//
// # Testing
//
// Use [NopLogger] to discard all output.
package logging
