// Package buffer provides the bounded buffer that retains each session's
// most recent rendered output.
package buffer

import "sync"

// RingBuffer keeps the last capacity bytes written to it, discarding the
// oldest bytes first. Each session tees its rendered frames into one so
// the ops API can serve a screen snapshot; it has its own lock because
// snapshot reads arrive from HTTP handlers, outside the registry guard.
type RingBuffer struct {
	mu       sync.RWMutex
	data     []byte
	capacity int
}

// NewRingBuffer creates a buffer holding at most capacity bytes.
// Capacities below one are raised to one.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingBuffer{
		data:     make([]byte, 0, capacity),
		capacity: capacity,
	}
}

// Write appends p, discarding the oldest bytes once capacity is
// exceeded. It implements io.Writer and never fails.
func (rb *RingBuffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	rb.mu.Lock()
	defer rb.mu.Unlock()

	if len(p) >= rb.capacity {
		rb.data = append(rb.data[:0], p[len(p)-rb.capacity:]...)
		return len(p), nil
	}

	if overflow := len(rb.data) + len(p) - rb.capacity; overflow > 0 {
		rb.data = append(rb.data[:0], rb.data[overflow:]...)
	}
	rb.data = append(rb.data, p...)
	return len(p), nil
}

// Snapshot returns a copy of the retained bytes.
func (rb *RingBuffer) Snapshot() []byte {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if len(rb.data) == 0 {
		return nil
	}
	out := make([]byte, len(rb.data))
	copy(out, rb.data)
	return out
}

// Len returns the number of retained bytes.
func (rb *RingBuffer) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return len(rb.data)
}

// Cap returns the retention capacity.
func (rb *RingBuffer) Cap() int {
	return rb.capacity
}
