package testutil

import "sync/atomic"

// RecordingTracker counts Track and Trigger calls.
//
// Thread-safety: counters are atomic; triggers may arrive from a scheduler
// goroutine.
type RecordingTracker struct {
	tracks   atomic.Int64
	triggers atomic.Int64
}

// Track records a read.
func (r *RecordingTracker) Track() {
	r.tracks.Add(1)
}

// Trigger records a change notification.
func (r *RecordingTracker) Trigger() {
	r.triggers.Add(1)
}

// Tracks returns the number of Track calls.
func (r *RecordingTracker) Tracks() int {
	return int(r.tracks.Load())
}

// Triggers returns the number of Trigger calls.
func (r *RecordingTracker) Triggers() int {
	return int(r.triggers.Load())
}
