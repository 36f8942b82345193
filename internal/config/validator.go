package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Iron-Ham/foldlog/internal/dump"
	"github.com/Iron-Ham/foldlog/internal/logging"
	"github.com/Iron-Ham/foldlog/internal/modlog"
	"github.com/Iron-Ham/foldlog/internal/tui/styles"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "logging.history_size")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Upper bound on history capacities to prevent runaway memory use
const maxHistorySize = 1 << 20

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateModules()...)
	errors = append(errors, c.validateDump()...)
	errors = append(errors, c.validateViewer()...)
	errors = append(errors, c.validateDiagnostics()...)

	return errors
}

func levelMessage() string {
	return fmt.Sprintf("must be one of: %s", strings.Join(modlog.ValidLevels(), ", "))
}

func validateLevel(field, value string, optional bool) []ValidationError {
	if value == "" && optional {
		return nil
	}
	if _, err := modlog.ParseLevel(value); err != nil {
		return []ValidationError{{Field: field, Value: value, Message: levelMessage()}}
	}
	return nil
}

func validateSize(field string, value int, optional bool) []ValidationError {
	if optional && value == 0 {
		return nil
	}
	if value < 1 {
		return []ValidationError{{Field: field, Value: value, Message: "must be at least 1"}}
	}
	if value > maxHistorySize {
		return []ValidationError{{Field: field, Value: value, Message: fmt.Sprintf("exceeds maximum of %d", maxHistorySize)}}
	}
	return nil
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	errors = append(errors, validateLevel("logging.print_level", c.Logging.PrintLevel, false)...)
	errors = append(errors, validateLevel("logging.archive_level", c.Logging.ArchiveLevel, false)...)
	errors = append(errors, validateSize("logging.history_size", c.Logging.HistorySize, false)...)
	errors = append(errors, validateSize("logging.frame_history_size", c.Logging.FrameHistorySize, false)...)

	return errors
}

// validateModules validates the per-module overrides. Zero sizes and empty
// levels inherit from the logging section.
func (c *Config) validateModules() []ValidationError {
	var errors []ValidationError

	for i, m := range c.Modules {
		prefix := fmt.Sprintf("modules[%d]", i)
		if strings.TrimSpace(m.ID) == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".id",
				Value:   m.ID,
				Message: "module id is required",
			})
		}
		errors = append(errors, validateLevel(prefix+".print_level", m.PrintLevel, true)...)
		errors = append(errors, validateLevel(prefix+".archive_level", m.ArchiveLevel, true)...)
		errors = append(errors, validateSize(prefix+".history_size", m.HistorySize, true)...)
		errors = append(errors, validateSize(prefix+".frame_history_size", m.FrameHistorySize, true)...)
	}

	return errors
}

// validateDump validates the DumpConfig
func (c *Config) validateDump() []ValidationError {
	var errors []ValidationError

	if strings.ContainsRune(c.Dump.Dir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "dump.dir",
			Value:   c.Dump.Dir,
			Message: "path contains invalid null character",
		})
	}

	if c.Dump.KeepCount < -1 {
		errors = append(errors, ValidationError{
			Field:   "dump.keep_count",
			Value:   c.Dump.KeepCount,
			Message: "must be -1 (keep everything) or non-negative",
		})
	}

	name := c.Dump.LatestName
	switch {
	case name == "":
		errors = append(errors, ValidationError{
			Field:   "dump.latest_name",
			Value:   name,
			Message: "must not be empty",
		})
	case name != filepath.Base(name) || strings.ContainsAny(name, `/\`):
		errors = append(errors, ValidationError{
			Field:   "dump.latest_name",
			Value:   name,
			Message: "must be a file name, not a path",
		})
	case dump.IsSessionFile(name):
		// Cleanup would treat the mirror as a session file and delete it
		errors = append(errors, ValidationError{
			Field:   "dump.latest_name",
			Value:   name,
			Message: fmt.Sprintf("must not match the session file pattern %s*%s", dump.FilePrefix, dump.FileSuffix),
		})
	}

	return errors
}

// validateViewer validates the ViewerConfig
func (c *Config) validateViewer() []ValidationError {
	errors := validateLevel("viewer.fold_level", c.Viewer.FoldLevel, false)

	// Empty theme falls back to the default theme
	if c.Viewer.Theme != "" && !styles.IsValidTheme(c.Viewer.Theme) {
		errors = append(errors, ValidationError{
			Field:   "viewer.theme",
			Value:   c.Viewer.Theme,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(styles.BuiltinThemes(), ", ")),
		})
	}

	return errors
}

// validateDiagnostics validates the DiagnosticsConfig
func (c *Config) validateDiagnostics() []ValidationError {
	var errors []ValidationError

	if !logging.IsValidLevel(c.Diagnostics.Level) {
		errors = append(errors, ValidationError{
			Field:   "diagnostics.level",
			Value:   c.Diagnostics.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.ToLower(strings.Join(logging.ValidLevels(), ", "))),
		})
	}
	if c.Diagnostics.MaxSizeMB < 1 {
		errors = append(errors, ValidationError{
			Field:   "diagnostics.max_size_mb",
			Value:   c.Diagnostics.MaxSizeMB,
			Message: "must be at least 1",
		})
	}
	if c.Diagnostics.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "diagnostics.max_backups",
			Value:   c.Diagnostics.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
