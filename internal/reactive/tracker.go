package reactive

import (
	"sync"
	"sync/atomic"
)

// Tracker is the hook into a host reactivity system. Track marks a read of
// the bound value; Trigger announces that it changed.
type Tracker interface {
	Track()
	Trigger()
}

// Signal is a minimal Tracker: a version counter plus a channel that is
// closed on the next Trigger.
//
// Thread-safety: All methods are safe for concurrent use.
type Signal struct {
	version atomic.Int64
	reads   atomic.Int64

	mu      sync.Mutex
	changed chan struct{}
}

var _ Tracker = (*Signal)(nil)

// NewSignal creates a signal at version 0.
func NewSignal() *Signal {
	return &Signal{changed: make(chan struct{})}
}

// Track implements Tracker.
func (s *Signal) Track() {
	s.reads.Add(1)
}

// Trigger implements Tracker. It bumps the version and wakes every waiter.
func (s *Signal) Trigger() {
	s.version.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	close(s.changed)
	s.changed = make(chan struct{})
}

// Version returns the number of triggers so far.
func (s *Signal) Version() int64 {
	return s.version.Load()
}

// Reads returns the number of tracked reads so far.
func (s *Signal) Reads() int64 {
	return s.reads.Load()
}

// Changed returns a channel closed by the next Trigger.
func (s *Signal) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}
