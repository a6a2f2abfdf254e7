package reactive

import (
	"sync"
	"sync/atomic"
	"time"
)

// Debouncer coalesces bursts of Schedule calls into one trailing call of fn.
//
// At most one timer is pending. Each Schedule advances an epoch and replaces
// the pending timer; a timer that fires after its epoch was superseded does
// nothing.
//
// Thread-safety: Schedule and Cancel are safe for concurrent use.
type Debouncer struct {
	delay time.Duration
	sched Scheduler
	fn    func()

	epoch atomic.Int64

	mu   sync.Mutex
	stop func() bool
}

// NewDebouncer creates a debouncer. A nil sched uses TimeScheduler.
func NewDebouncer(delay time.Duration, sched Scheduler, fn func()) *Debouncer {
	if sched == nil {
		sched = TimeScheduler{}
	}
	return &Debouncer{delay: delay, sched: sched, fn: fn}
}

// Schedule (re)starts the delay.
func (d *Debouncer) Schedule() {
	e := d.epoch.Add(1)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stop != nil {
		d.stop()
	}
	d.stop = d.sched.AfterFunc(d.delay, func() {
		if d.epoch.Load() != e {
			return
		}
		d.mu.Lock()
		d.stop = nil
		d.mu.Unlock()
		d.fn()
	})
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.epoch.Add(1)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stop != nil {
		d.stop()
		d.stop = nil
	}
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop != nil
}
