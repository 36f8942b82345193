package modlog

import (
	"sync/atomic"
	"time"
)

// Clock stamps entries with a monotonic timestamp and the current frame.
type Clock interface {
	// Micros returns monotonic microseconds.
	Micros() int64
	// Frame returns the current frame number.
	Frame() int64
}

// MonotonicClock measures microseconds since its creation using the runtime's
// monotonic clock. The frame number advances only through Tick.
type MonotonicClock struct {
	start time.Time
	frame atomic.Int64
}

// NewMonotonicClock returns a clock starting now at frame 0.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Micros implements Clock.
func (c *MonotonicClock) Micros() int64 {
	return time.Since(c.start).Microseconds()
}

// Frame implements Clock.
func (c *MonotonicClock) Frame() int64 {
	return c.frame.Load()
}

// Tick advances the frame counter and returns the new frame number.
func (c *MonotonicClock) Tick() int64 {
	return c.frame.Add(1)
}
