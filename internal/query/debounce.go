package query

import (
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is the delay between the last keystroke and the search.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer delays a search until input has been quiet for a fixed delay.
//
// Each Trigger cancels the pending search and schedules a new one, so only
// the last query in a burst reaches fn. A blank query cancels the pending
// search and calls fn with an empty query immediately, on the caller's
// goroutine. Otherwise fn runs on a timer goroutine.
//
// Thread-safety: safe for concurrent use.
type Debouncer struct {
	delay time.Duration
	fn    func(q string)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending string
	stopped bool
}

// NewDebouncer creates a Debouncer that calls fn delay after the last
// Trigger. A non-positive delay selects DefaultDebounce.
func NewDebouncer(delay time.Duration, fn func(q string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Delay returns the configured delay.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules a search for q, replacing any pending one.
func (d *Debouncer) Trigger(q string) {
	q = strings.TrimSpace(q)

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.cancelLocked()
	if q == "" {
		d.mu.Unlock()
		d.fn("")
		return
	}

	gen := d.gen
	d.pending = q
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A timer that fired while being replaced must not deliver.
		if d.stopped || d.gen != gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.pending = ""
		d.mu.Unlock()
		d.fn(q)
	})
	d.mu.Unlock()
}

// Flush runs the pending search now, on the caller's goroutine, instead of
// waiting for the delay. It reports whether anything was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	q := d.pending
	if d.stopped || q == "" {
		d.mu.Unlock()
		return false
	}
	d.cancelLocked()
	d.mu.Unlock()
	d.fn(q)
	return true
}

// Stop cancels any pending search. Later Triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer) cancelLocked() {
	d.gen++
	d.pending = ""
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
