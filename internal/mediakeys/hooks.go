// Package mediakeys exposes playback hooks for an OS media-key surface.
// The surface itself (hardware keys, MPRIS, lock-screen controls) lives
// outside this backend; it binds to these callbacks.
package mediakeys

import (
	"github.com/gsilva87/swipedeck/internal/domain/playback"
)

// Hooks are the callbacks a media-key integration invokes.
type Hooks struct {
	Play     func()
	Pause    func()
	SeekTo   func(seconds float64)
	Next     func()
	Previous func()
}

// Bind builds hooks over a controller and an optional queue. Next/Previous
// are no-ops for queueless (video) sessions.
func Bind(controller *playback.Controller, queue playback.Queue) Hooks {
	h := Hooks{
		Play: func() {
			if !controller.State().Playing() {
				controller.TogglePlay()
			}
		},
		Pause: func() {
			if controller.State().Playing() {
				controller.TogglePlay()
			}
		},
		SeekTo: func(seconds float64) {
			controller.SeekTo(seconds)
		},
		Next:     func() {},
		Previous: func() {},
	}

	if queue != nil {
		h.Next = func() { queue.Next() }
		h.Previous = func() { queue.Previous() }
	}

	return h
}
