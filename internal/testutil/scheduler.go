package testutil

import (
	"slices"
	"sync"
	"time"
)

// ManualScheduler is a virtual-time scheduler for deterministic debounce tests.
//
// Callbacks never run on their own: Advance moves virtual time forward and
// runs every callback that has come due, in deadline order, on the calling
// goroutine.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	at  time.Duration
	seq int
	fn  func()
}

// NewManualScheduler creates a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc schedules fn to run once virtual time has advanced by d.
// The returned func cancels it and reports whether it was still pending.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) (stop func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &manualTimer{at: s.now + d, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		n := len(s.timers)
		s.timers = slices.DeleteFunc(s.timers, func(x *manualTimer) bool { return x == t })
		return len(s.timers) < n
	}
}

// Advance moves virtual time forward by d and runs due callbacks.
// Returns the number of callbacks run.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	s.now += d
	now := s.now
	s.mu.Unlock()

	fired := 0
	for {
		t := s.popDue(now)
		if t == nil {
			return fired
		}
		t.fn()
		fired++
	}
}

func (s *ManualScheduler) popDue(now time.Duration) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	best := -1
	for i, t := range s.timers {
		if t.at > now {
			continue
		}
		if best < 0 || t.at < s.timers[best].at ||
			(t.at == s.timers[best].at && t.seq < s.timers[best].seq) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	t := s.timers[best]
	s.timers = slices.Delete(s.timers, best, best+1)
	return t
}

// Pending returns the number of callbacks not yet run or stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Now returns the current virtual time.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}
