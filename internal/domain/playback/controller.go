package playback

import (
	"github.com/rs/zerolog/log"
)

// RepeatMode is the playlist repeat policy for audio sessions.
type RepeatMode int

const (
	// RepeatOff stops at the end of the queue.
	RepeatOff RepeatMode = iota
	// RepeatOne replays the current item.
	RepeatOne
	// RepeatAll wraps around at the end of the queue.
	RepeatAll
)

// Queue is the playlist collaborator consulted when playback ends.
// Next and Previous move the queue position; the queue owner is responsible
// for loading the item that becomes current.
type Queue interface {
	// Next advances per shuffle order. Returns false at the end of the
	// queue when repeat is off.
	Next() bool
	Previous() bool
	IsShuffling() bool
	RepeatMode() RepeatMode
}

// Controller is the sole writer of the playback State and the sole issuer of
// MediaTransport commands. Gesture output and explicit UI actions both go
// through it so state never diverges from the transport.
type Controller struct {
	state     *State
	transport MediaTransport
	queue     Queue // nil for video sessions
	onChange  func(Snapshot)
}

// NewController creates a controller driving the given transport.
func NewController(transport MediaTransport) *Controller {
	return &Controller{
		state:     NewState(),
		transport: transport,
	}
}

// SetQueue attaches the playlist collaborator for audio sessions.
func (c *Controller) SetQueue(q Queue) {
	c.queue = q
}

// OnChange registers a callback invoked after every state mutation.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.onChange = fn
}

// State returns the canonical state for read access.
func (c *Controller) State() *State {
	return c.state
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	return c.state.Snapshot()
}

// Read delegates. The gesture classifier snapshots these as baselines.

// CurrentTime returns the playback position in seconds.
func (c *Controller) CurrentTime() float64 { return c.state.CurrentTime() }

// Duration returns the media duration in seconds.
func (c *Controller) Duration() float64 { return c.state.Duration() }

// Volume returns the current volume.
func (c *Controller) Volume() float64 { return c.state.Volume() }

// Brightness returns the current brightness.
func (c *Controller) Brightness() float64 { return c.state.Brightness() }

// Scale returns the current free-zoom scale.
func (c *Controller) Scale() float64 { return c.state.Scale() }

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.state.Snapshot())
	}
}

// TogglePlay resumes or pauses playback. The playing flag only flips to true
// once the transport confirms; a rejected play leaves it false.
func (c *Controller) TogglePlay() {
	if c.state.Playing() {
		if err := c.transport.Pause(); err != nil {
			log.Error().Err(err).Msg("Pause failed")
		}
		c.state.setPlaying(false)
		c.notify()
		return
	}

	if err := c.transport.Play(); err != nil {
		log.Warn().Err(err).Msg("Play rejected by transport")
		c.state.setPlaying(false)
		c.notify()
		return
	}
	c.state.setPlaying(true)
	c.notify()
}

// SeekTo moves the playback position, clamped to [0, duration]. Called by
// scrub-bar drags, gesture seek commits and the double-tap skip.
func (c *Controller) SeekTo(t float64) {
	target := clamp(t, 0, c.state.Duration())
	if err := c.transport.Seek(target); err != nil {
		log.Error().Err(err).Float64("target", target).Msg("Seek failed")
		return
	}
	c.state.setCurrentTime(target)
	log.Debug().Float64("position", target).Msg("Seek")
	c.notify()
}

// SetRate applies a playback rate from the fixed allowed set. Rates outside
// the set and transports without rate support are silent no-ops.
func (c *Controller) SetRate(r float64) {
	if !RateAllowed(r) {
		log.Debug().Float64("rate", r).Msg("Rejected rate outside allowed set")
		return
	}
	if err := c.transport.SetRate(r); err != nil {
		log.Debug().Err(err).Float64("rate", r).Msg("Rate not applied")
		return
	}
	c.state.setRate(r)
	c.notify()
}

// SetVolume clamps and applies the volume to the transport and state.
func (c *Controller) SetVolume(v float64) {
	target := clamp(v, MinVolume, MaxVolume)
	if err := c.transport.SetVolume(target); err != nil {
		log.Error().Err(err).Float64("volume", target).Msg("SetVolume failed")
		return
	}
	c.state.setVolume(target)
	c.notify()
}

// SetBrightness clamps and applies the brightness. Brightness is a
// presentation filter with no transport effect.
func (c *Controller) SetBrightness(b float64) {
	c.state.setBrightness(b)
	c.notify()
}

// CycleZoomMode advances fit -> fill -> stretch -> fit, resetting the scale
// to 1.0 at every step. This is the only way to leave free zoom.
func (c *Controller) CycleZoomMode() {
	var next ZoomMode
	switch c.state.ZoomMode() {
	case ZoomFit:
		next = ZoomFill
	case ZoomFill:
		next = ZoomStretch
	default:
		// Stretch and free both cycle back to fit.
		next = ZoomFit
	}
	c.state.setZoomMode(next)
	log.Debug().Str("zoom", next.String()).Msg("Zoom mode")
	c.notify()
}

// ApplyZoomScale sets the free-zoom scale, clamped to [0.5,3.0], and forces
// free mode. Only the pinch gesture path calls it.
func (c *Controller) ApplyZoomScale(scale float64) {
	c.state.setFreeScale(scale)
	c.notify()
}

// OnTimeUpdate records the transport's playback position.
func (c *Controller) OnTimeUpdate(seconds float64) {
	c.state.setCurrentTime(seconds)
	c.notify()
}

// OnMetadataLoaded records the media duration and auto-starts playback.
func (c *Controller) OnMetadataLoaded(duration float64) {
	c.state.setDuration(duration)
	log.Info().Float64("duration", duration).Msg("Media loaded")

	if err := c.transport.Play(); err != nil {
		log.Warn().Err(err).Msg("Autoplay rejected by transport")
		c.state.setPlaying(false)
	} else {
		c.state.setPlaying(true)
	}
	c.notify()
}

// OnEnded handles end of media: repeat-one replays, otherwise the queue
// advances per its policy, otherwise playback stops.
func (c *Controller) OnEnded() {
	c.state.setPlaying(false)

	if c.queue != nil {
		switch {
		case c.queue.RepeatMode() == RepeatOne:
			if err := c.transport.Seek(0); err != nil {
				log.Error().Err(err).Msg("Replay seek failed")
				break
			}
			c.state.setCurrentTime(0)
			if err := c.transport.Play(); err != nil {
				log.Warn().Err(err).Msg("Replay rejected by transport")
				break
			}
			c.state.setPlaying(true)
			log.Debug().Msg("Replaying current item")
		case c.queue.Next():
			// The queue owner loads the item that became current; playback
			// restarts through its metadata callback.
			log.Debug().Msg("Advanced to next queue item")
		default:
			log.Debug().Msg("End of queue")
		}
	}

	c.notify()
}
