// Package errors provides centralized error definitions and error handling utilities
// for foldlog. It defines sentinel errors, domain error types carrying context,
// and classification helpers used by the CLI and the viewer.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - DumpError: errors reading or writing a session dump file
//   - LoggerError: errors related to a module logger or the registry
//   - AssertionError: a failed assertion; the only fatal kind
//
// # Propagation
//
// I/O failures and malformed persisted data are recovered locally and reported
// as diagnostics. Misuse (printing at an invalid level) is reported through the
// module's error path. Only assertion failures abort the current operation:
//
//	defer modlog.RecoverFatal(&err)
//	log.AssertThat(n > 0, "queue must not be empty")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrDuplicateModule) { ... }
//
//	var dumpErr *errors.DumpError
//	if errors.As(err, &dumpErr) { ... }
//
//	if errors.IsFatal(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents how an error should be treated by its caller.
type Severity int

const (
	// SeverityWarning is for recoverable problems that were reported and skipped.
	SeverityWarning Severity = iota
	// SeverityError is for failed operations that returned an empty result.
	SeverityError
	// SeverityFatal aborts the current operation.
	SeverityFatal
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Configuration and construction errors
var (
	// ErrInvalidCapacity indicates a ring buffer was constructed with capacity < 1.
	ErrInvalidCapacity = New("capacity must be at least 1")
	// ErrInvalidLevel indicates a level that cannot be printed or parsed.
	ErrInvalidLevel = New("invalid log level")
)

// Registry-related sentinel errors
var (
	// ErrDuplicateModule indicates a module id is already registered.
	ErrDuplicateModule = New("module already registered")
	// ErrModuleNotFound indicates a module id is not registered.
	ErrModuleNotFound = New("module not found")
	// ErrRegistryClosed indicates the registry is not open.
	ErrRegistryClosed = New("registry is not open")
)

// Dump-related sentinel errors
var (
	// ErrCorruptSessionFile indicates a session file does not end with the
	// expected array trailer and cannot be appended to.
	ErrCorruptSessionFile = New("session file is corrupt")
	// ErrMalformedDump indicates persisted dump data could not be decoded.
	ErrMalformedDump = New("malformed dump data")
	// ErrDumpNotFound indicates the dump file does not exist.
	ErrDumpNotFound = New("dump file not found")
)

// ErrAssertion is matched by every AssertionError.
var ErrAssertion = New("assertion failed")

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// DumpError represents errors reading or writing a session dump file.
//
// Example:
//
//	err := errors.NewDumpError("skipping dump record", errors.ErrMalformedDump).
//		WithPath("/tmp/dump_x.json").WithIndex(3)
//	fmt.Println(err) // "dump error [path=/tmp/dump_x.json, index=3]: skipping dump record: malformed dump data"
type DumpError struct {
	baseError
	Path  string
	Index int // -1 when the error concerns the whole file
}

// NewDumpError creates a new DumpError.
func NewDumpError(message string, cause error) *DumpError {
	return &DumpError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
		Index: -1,
	}
}

// WithPath adds the dump file path to the error context.
func (e *DumpError) WithPath(path string) *DumpError {
	e.Path = path
	return e
}

// WithIndex marks the error as concerning one record of the file. Record
// errors are warnings: the record is skipped and loading continues.
func (e *DumpError) WithIndex(i int) *DumpError {
	e.Index = i
	e.severity = SeverityWarning
	return e
}

// Error returns the formatted error message.
func (e *DumpError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	if e.Index >= 0 {
		parts = append(parts, fmt.Sprintf("index=%d", e.Index))
	}
	return formatWithContext("dump error", parts, e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *DumpError) Is(target error) bool {
	if _, ok := target.(*DumpError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// LoggerError represents errors related to a module logger or the registry.
type LoggerError struct {
	baseError
	Module string
}

// NewLoggerError creates a new LoggerError.
func NewLoggerError(message string, cause error) *LoggerError {
	return &LoggerError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: false,
		},
	}
}

// WithModule adds the module id to the error context.
func (e *LoggerError) WithModule(id string) *LoggerError {
	e.Module = id
	return e
}

// Error returns the formatted error message.
func (e *LoggerError) Error() string {
	var parts []string
	if e.Module != "" {
		parts = append(parts, fmt.Sprintf("module=%s", e.Module))
	}
	return formatWithContext("logger error", parts, e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *LoggerError) Is(target error) bool {
	if _, ok := target.(*LoggerError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// AssertionError is raised by a failed assertion. It is carried by a panic
// until an operation boundary recovers it.
type AssertionError struct {
	baseError
	Module string
}

// NewAssertionError creates a new AssertionError.
func NewAssertionError(module, message string) *AssertionError {
	return &AssertionError{
		baseError: baseError{
			message:    message,
			cause:      ErrAssertion,
			severity:   SeverityFatal,
			userFacing: true,
		},
		Module: module,
	}
}

// Error returns the formatted error message.
func (e *AssertionError) Error() string {
	var parts []string
	if e.Module != "" {
		parts = append(parts, fmt.Sprintf("module=%s", e.Module))
	}
	return formatWithContext("assertion failed", parts, e.message, nil)
}

// Is checks if this error matches the target.
func (e *AssertionError) Is(target error) bool {
	if _, ok := target.(*AssertionError); ok {
		return true
	}
	return target == ErrAssertion
}

func formatWithContext(prefix string, parts []string, message string, cause error) string {
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}
	if cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, message, cause)
	}
	return fmt.Sprintf("%s: %s", prefix, message)
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

type severityError interface {
	Severity() Severity
}

type userFacingError interface {
	IsUserFacing() bool
}

// SeverityOf returns the severity of err. Errors that do not carry one are
// treated as SeverityError.
func SeverityOf(err error) Severity {
	var se severityError
	if errors.As(err, &se) {
		return se.Severity()
	}
	return SeverityError
}

// IsFatal reports whether err must abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrAssertion) || SeverityOf(err) == SeverityFatal
}

// IsUserFacing reports whether the error message is safe to display as is.
func IsUserFacing(err error) bool {
	var ue userFacingError
	if errors.As(err, &ue) {
		return ue.IsUserFacing()
	}
	return false
}
