package model

import "sync"

// Ring is a bounded FIFO buffer; once full, each push overwrites the oldest item.
type Ring[T any] struct {
	mu      sync.RWMutex
	buf     []T
	cap     int
	start   int
	size    int
	total   uint64 // total ingested
	dropped uint64
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{cap: capacity, buf: make([]T, capacity)}
}

func (r *Ring[T]) Push(e T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size < r.cap {
		r.buf[(r.start+r.size)%r.cap] = e
		r.size++
	} else {
		// overwrite oldest
		r.buf[r.start] = e
		r.start = (r.start + 1) % r.cap
		r.dropped++
	}
	r.total++
}

// Snapshot returns the buffered items oldest first plus the total and dropped counters.
func (r *Ring[T]) Snapshot() ([]T, uint64, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+i)%r.cap]
	}
	return out, r.total, r.dropped
}

func (r *Ring[T]) Cap() int { return r.cap }

func (r *Ring[T]) Clear() { // does not reset counters
	r.mu.Lock()
	defer r.mu.Unlock()
	r.size = 0
	r.start = 0
}
