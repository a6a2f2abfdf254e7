package reactive

import "time"

// Scheduler runs a function after a delay.
type Scheduler interface {
	// AfterFunc arranges for fn to run once after d. stop cancels it and
	// reports whether it was still pending.
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// TimeScheduler schedules on real timers.
type TimeScheduler struct{}

// AfterFunc implements Scheduler.
func (TimeScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}
