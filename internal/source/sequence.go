package source

import "sync"

// Sequencer numbers the fetches of one view so that a response is applied
// only when nothing newer has been applied yet.
type Sequencer struct {
	mu      sync.Mutex
	next    uint64
	applied uint64
}

// Begin returns the ticket of a new fetch.
func (s *Sequencer) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

// Accept reports whether the fetch with ticket seq may be applied and, if so,
// records it as the latest applied one.
func (s *Sequencer) Accept(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied {
		return false
	}
	s.applied = seq
	return true
}

// Stale reports whether a fetch with ticket seq or a newer one has already
// been applied. It does not record anything.
func (s *Sequencer) Stale(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq <= s.applied
}
