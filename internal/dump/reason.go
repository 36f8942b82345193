package dump

import "strings"

// Reason records why a dump was taken. It is informational only: every
// reason is persisted the same way.
type Reason string

// Dump reasons.
const (
	ReasonFlush       Reason = "FLUSH"
	ReasonManual      Reason = "MANUAL"
	ReasonError       Reason = "ERROR"
	ReasonAppClose    Reason = "APP_CLOSE"
	ReasonUnspecified Reason = "UNSPECIFIED"
)

// ParseReason converts a wire name to a Reason. Unknown names map to
// ReasonUnspecified so that files written by newer versions still load.
func ParseReason(s string) Reason {
	switch r := Reason(strings.ToUpper(strings.TrimSpace(s))); r {
	case ReasonFlush, ReasonManual, ReasonError, ReasonAppClose, ReasonUnspecified:
		return r
	}
	return ReasonUnspecified
}

// Notifies reports whether a dump with this reason should be announced to
// an interactive viewer. Shutdown and flush dumps are not.
func (r Reason) Notifies() bool {
	return r != ReasonAppClose && r != ReasonFlush
}

// String returns the wire name.
func (r Reason) String() string {
	return string(r)
}
