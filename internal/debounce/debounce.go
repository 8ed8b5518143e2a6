// Package debounce provides a single-slot cancellable timer used by the
// interactive controllers.
package debounce

import (
	"sync"
	"time"
)

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Scheduler creates timers. Production code uses Clock; tests use
// ManualScheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clock struct{}

func (clock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Clock schedules on the wall clock.
var Clock Scheduler = clock{}

// Debouncer runs the most recently triggered callback once its delay has
// elapsed without another trigger. At most one callback is pending.
type Debouncer struct {
	mu        sync.Mutex
	scheduler Scheduler
	delay     time.Duration
	timer     Timer
	seq       uint64
}

func New(delay time.Duration, scheduler Scheduler) *Debouncer {
	if scheduler == nil {
		scheduler = Clock
	}
	return &Debouncer{delay: delay, scheduler: scheduler}
}

// Trigger replaces any pending callback with f.
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	seq := d.seq
	d.timer = d.scheduler.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.seq != seq {
			// superseded after the timer had already fired
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		f()
	})
}

// Cancel drops the pending callback, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Pending reports whether a callback is waiting to fire.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

func (d *Debouncer) stopLocked() {
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
