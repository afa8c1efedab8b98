package auth

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid token file events into a single callback after a delay
type Debouncer interface {
	Trigger()
	Stop()
}

type debouncer struct {
	duration time.Duration
	callback func()
	timer    *time.Timer
	pending  bool
	mu       sync.Mutex
	stopped  bool
}

// NewDebouncer creates a Debouncer that calls callback once duration has passed without a new trigger
func NewDebouncer(duration time.Duration, callback func()) Debouncer {
	return &debouncer{
		duration: duration,
		callback: callback,
	}
}

// Trigger registers an event and resets the timer
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = true

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.duration, d.fire)
}

// Stop cancels any pending callback and ignores later triggers
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = false

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *debouncer) fire() {
	d.mu.Lock()

	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}

	d.pending = false
	d.timer = nil

	d.mu.Unlock()

	d.callback()
}
