// Package controls tracks the show/hide state of the player controls.
package controls

import (
	"sync"
	"time"
)

// Visibility is the timer-driven controls state. Controls are visible by
// default; an inactivity timer hides them only while playing; they are
// forced hidden for the whole duration of an active gesture and reappear
// with a fresh timer when it ends.
type Visibility struct {
	hideDelay time.Duration
	onChange  func(visible bool)

	mu            sync.Mutex
	visible       bool
	playing       bool
	gestureActive bool
	timer         *time.Timer
	// generation invalidates hide timers armed before the owning state
	// changed; a stale fire is ignored.
	generation uint64
	stopped    bool
}

// NewVisibility creates the controls state with the given inactivity delay.
// onChange is invoked on every visibility transition.
func NewVisibility(hideDelay time.Duration, onChange func(bool)) *Visibility {
	return &Visibility{
		hideDelay: hideDelay,
		onChange:  onChange,
		visible:   true,
	}
}

// Visible reports whether the controls are currently shown.
func (v *Visibility) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

// Interact records an explicit user interaction: controls show and the
// inactivity timer restarts.
func (v *Visibility) Interact() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stopped || v.gestureActive {
		return
	}
	v.setVisibleLocked(true)
	v.armLocked()
}

// ToggleTap handles a tap on the player surface with no gesture active:
// visibility flips immediately, bypassing the timer.
func (v *Visibility) ToggleTap() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stopped || v.gestureActive {
		return
	}
	v.setVisibleLocked(!v.visible)
	if v.visible {
		v.armLocked()
	} else {
		v.generation++
	}
}

// SetPlaying records the playback state. The inactivity timer only hides
// controls while playing; pausing shows them and disarms the timer.
func (v *Visibility) SetPlaying(playing bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stopped {
		return
	}
	v.playing = playing
	if playing {
		v.armLocked()
		return
	}
	v.generation++
	if !v.gestureActive {
		v.setVisibleLocked(true)
	}
}

// GestureStarted forces the controls hidden for the gesture's duration.
func (v *Visibility) GestureStarted() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stopped {
		return
	}
	v.gestureActive = true
	v.generation++
	v.setVisibleLocked(false)
}

// GestureEnded makes the controls reappear immediately with a fresh timer.
func (v *Visibility) GestureEnded() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stopped {
		return
	}
	v.gestureActive = false
	v.setVisibleLocked(true)
	v.armLocked()
}

// Stop disarms the timer and prevents further transitions.
func (v *Visibility) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stopped = true
	v.generation++
	if v.timer != nil {
		v.timer.Stop()
	}
}

// armLocked restarts the inactivity timer if playback is active.
func (v *Visibility) armLocked() {
	v.generation++
	if !v.playing {
		return
	}
	gen := v.generation

	if v.timer != nil {
		v.timer.Stop()
	}
	v.timer = time.AfterFunc(v.hideDelay, func() {
		v.mu.Lock()
		defer v.mu.Unlock()

		if v.stopped || gen != v.generation || v.gestureActive || !v.playing {
			return
		}
		v.setVisibleLocked(false)
	})
}

func (v *Visibility) setVisibleLocked(visible bool) {
	if v.visible == visible {
		return
	}
	v.visible = visible
	if v.onChange != nil {
		v.onChange(visible)
	}
}
