// Package ring provides the fixed-capacity history store used by module loggers.
//
// The primary component is Buffer, a thread-safe circular buffer of opaque
// items. It retains the most recent N items pushed into it, overwriting the
// oldest item once full, and reads back in chronological order.
package ring

import (
	"fmt"
	"sync"

	"github.com/Iron-Ham/foldlog/internal/errors"
)

// Buffer is a thread-safe circular (ring) buffer of items.
//
// # How It Works
//
// The buffer keeps a write cursor and a logical size:
//   - cursor: the slot the next Push overwrites
//   - size: how many slots hold live items (never more than the capacity)
//
// Visual example with a 3-slot buffer:
//
//	Initial:      [_, _, _]  cursor=0, size=0
//	Push a, b:    [a, b, _]  cursor=2, size=2
//	Push c:       [a, b, c]  cursor=0, size=3
//	Push d:       [d, b, c]  cursor=1, size=3 → All() returns b, c, d
//
// # Thread Safety
//
// All methods are safe for concurrent use. Push and Clear take the write lock;
// All, Len and Snapshot take the read lock.
type Buffer[T any] struct {
	items  []T
	cursor int
	size   int
	mu     sync.RWMutex
}

// New creates a buffer holding at most capacity items. A capacity below one
// is rejected with errors.ErrInvalidCapacity.
func New[T any](capacity int) (*Buffer[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("ring buffer of capacity %d: %w", capacity, errors.ErrInvalidCapacity)
	}
	return &Buffer[T]{items: make([]T, capacity)}, nil
}

// MustNew is like New but panics on an invalid capacity. Intended for
// capacities that are compile-time constants.
func MustNew[T any](capacity int) *Buffer[T] {
	b, err := New[T](capacity)
	if err != nil {
		panic(err)
	}
	return b
}

// Push stores item in the slot under the cursor, overwriting the oldest item
// once the buffer is full. Push always succeeds.
func (b *Buffer[T]) Push(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.cursor] = item
	b.cursor = (b.cursor + 1) % len(b.items)
	if b.size < len(b.items) {
		b.size++
	}
}

// All returns a copy of the live items, oldest first, whether or not the
// buffer has wrapped.
func (b *Buffer[T]) All() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.all()
}

// all returns the live items oldest first (caller must hold lock).
func (b *Buffer[T]) all() []T {
	out := make([]T, 0, b.size)
	start := (b.cursor - b.size + len(b.items)) % len(b.items)
	for i := 0; i < b.size; i++ {
		out = append(out, b.items[(start+i)%len(b.items)])
	}
	return out
}

// Len returns the number of live items.
func (b *Buffer[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Cap returns the fixed capacity.
func (b *Buffer[T]) Cap() int {
	return len(b.items)
}

// Clear resets the logical size and cursor. Storage is kept for reuse, and
// stale items are zeroed so they can be collected.
func (b *Buffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.items)
	b.cursor = 0
	b.size = 0
}

// Snapshot is the persisted form of a buffer: its capacity and its live
// items, oldest first.
type Snapshot[T any] struct {
	Capacity int `json:"capacity" yaml:"capacity"`
	Items    []T `json:"items" yaml:"items"`
}

// Snapshot returns a point-in-time copy of the buffer.
func (b *Buffer[T]) Snapshot() Snapshot[T] {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return Snapshot[T]{
		Capacity: len(b.items),
		Items:    b.all(),
	}
}

// FromSnapshot rebuilds a buffer by pushing the snapshot's items in order.
// A snapshot that claims a smaller capacity than it has items (a hand-edited
// or foreign file) is widened so nothing is lost.
func FromSnapshot[T any](s Snapshot[T]) (*Buffer[T], error) {
	capacity := s.Capacity
	if capacity < len(s.Items) {
		capacity = len(s.Items)
	}
	b, err := New[T](capacity)
	if err != nil {
		return nil, err
	}
	for _, item := range s.Items {
		b.Push(item)
	}
	return b, nil
}
