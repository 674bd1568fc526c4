package socketio

import (
	"sync"
	"time"
)

// BroadcastDebouncer collapses rapid state mutations into batched pushState
// broadcasts. A gesture drag mutates state on every touch sample; triggers
// within the debounce window result in a single broadcast once the burst
// settles. Gesture feedback is pushed separately and is never debounced.
type BroadcastDebouncer struct {
	window  time.Duration
	flushFn func()

	mu      sync.Mutex
	pending bool
	timer   *time.Timer
	stopped bool
}

// NewBroadcastDebouncer creates a debouncer with the given window duration.
// flush is called once per settled burst.
func NewBroadcastDebouncer(window time.Duration, flush func()) *BroadcastDebouncer {
	return &BroadcastDebouncer{
		window:  window,
		flushFn: flush,
	}
}

// Trigger records that state has changed. The actual broadcast is deferred
// until the debounce window elapses without further triggers.
func (d *BroadcastDebouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = true

	// Reset the timer
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// flush fires the callback if a broadcast is pending and resets the flag.
func (d *BroadcastDebouncer) flush() {
	d.mu.Lock()
	doFlush := d.pending
	d.pending = false
	d.mu.Unlock()

	if doFlush && d.flushFn != nil {
		d.flushFn()
	}
}

// Stop prevents any further broadcasts from firing.
func (d *BroadcastDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
}
