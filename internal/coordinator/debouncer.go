package coordinator

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers into a single callback invocation.
// Only the last trigger within the configured interval fires the callback,
// together with the number of triggers it absorbed.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func(path string, coalesced int)
	lastPath string
	count    int
}

// NewDebouncer creates a debouncer that waits for interval of quiet before
// firing callback with the path of the last trigger.
func NewDebouncer(interval time.Duration, callback func(path string, coalesced int)) *Debouncer {
	return &Debouncer{
		interval: interval,
		callback: callback,
	}
}

// Trigger records a change at path and restarts the quiet period.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lastPath = path
	d.count++

	if d.timer != nil {
		d.timer.Stop()
	}

	var t *time.Timer

	t = time.AfterFunc(d.interval, func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("debouncer callback panicked", slog.Any("error", r))
			}
		}()

		d.mu.Lock()
		if d.timer != t {
			// Superseded by a later Trigger or cancelled by Stop.
			d.mu.Unlock()
			return
		}

		p, n := d.lastPath, d.count
		d.timer = nil
		d.count = 0
		d.mu.Unlock()

		d.callback(p, n)
	})

	d.timer = t
}

// Pending reports whether a callback is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.timer != nil
}

// Stop cancels any pending debounced callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.count = 0
}
