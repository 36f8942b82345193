package modlog

import "sync/atomic"

// Counters tracks how many errors and warnings occurred, whether or not they
// were archived or printed. Increments are atomic; no ordering with the
// entries they accompany is implied.
type Counters struct {
	errors   atomic.Int64
	warnings atomic.Int64
}

var globalCounters Counters

// GlobalCounters returns the process-wide counters used by loggers that were
// not given their own.
func GlobalCounters() *Counters {
	return &globalCounters
}

// Errors returns the number of error-level events seen.
func (c *Counters) Errors() int64 { return c.errors.Load() }

// Warnings returns the number of warning-level events seen.
func (c *Counters) Warnings() int64 { return c.warnings.Load() }

// Reset zeroes both counters.
func (c *Counters) Reset() {
	c.errors.Store(0)
	c.warnings.Store(0)
}

func (c *Counters) observe(l Level) {
	switch l {
	case LevelError:
		c.errors.Add(1)
	case LevelWarning:
		c.warnings.Add(1)
	}
}
