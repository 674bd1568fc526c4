// Package gesture turns raw touch samples into playback control intents.
//
// A Classifier consumes one touch interaction at a time, from first finger
// down to last finger up, and resolves it into exactly one committed intent:
// seek, volume, brightness or zoom. Volume, brightness and zoom apply live;
// seek stages its value and commits on release so a real decoder is not
// thrashed on every sample.
package gesture

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Config tunes the classifier. Zero values are not usable; start from
// DefaultConfig.
type Config struct {
	// SwipeThreshold is the dead zone in pixels. A drag locks a direction
	// only once the dominant axis exceeds it.
	SwipeThreshold float64

	// DoubleTapDelay is how long a tap is remembered.
	DoubleTapDelay time.Duration

	// DoubleTapMaxDrift is the max horizontal distance in pixels between
	// two taps that still count as a double tap.
	DoubleTapMaxDrift float64

	// DoubleTapSkip is the seconds skipped per double tap.
	DoubleTapSkip float64

	// SeekSpan is the seconds of travel for a full-surface-width drag.
	SeekSpan float64

	// FeedbackClear is how long one-shot feedback stays visible.
	FeedbackClear time.Duration
}

// DefaultConfig returns the product-tuned classifier settings.
func DefaultConfig() Config {
	return Config{
		SwipeThreshold:    30,
		DoubleTapDelay:    300 * time.Millisecond,
		DoubleTapMaxDrift: 50,
		DoubleTapSkip:     10,
		SeekSpan:          90,
		FeedbackClear:     500 * time.Millisecond,
	}
}

// Point is one finger position in surface coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Surface is the touch surface geometry, supplied once per interaction.
type Surface struct {
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Target is the playback surface the classifier drives. The playback
// controller implements it. Reads snapshot baseline values at gesture start;
// writes clamp at the controller boundary.
type Target interface {
	CurrentTime() float64
	Duration() float64
	Volume() float64
	Brightness() float64
	Scale() float64

	SeekTo(t float64)
	SetVolume(v float64)
	SetBrightness(b float64)
	ApplyZoomScale(s float64)
}

// session is the per-interaction state, created at first touch and destroyed
// at last finger lift. Nothing in it survives across interactions.
type session struct {
	surface Surface

	intent   Intent
	originX  float64
	originY  float64
	originAt time.Time

	// baseline is the target field value captured when the intent locked,
	// so gestures are relative, never absolute jumps.
	baseline float64

	// pinchOrigin is the two-finger separation when zoom (re)engaged.
	pinchOrigin float64

	// staged is the pending seek value, committed on release.
	staged    float64
	hasStaged bool

	// consumed marks a double-tap interaction; it bypasses drag tracking.
	consumed bool

	activeNotified bool
}

// Classifier resolves touch interactions into playback intents.
// It is safe for use from a single event-delivery goroutine; the mutex
// guards the feedback timer against firing concurrently.
type Classifier struct {
	cfg    Config
	target Target

	onFeedback func(Feedback)
	onActive   func(bool)

	mu   sync.Mutex
	sess *session

	// Double-tap memory survives sessions, bounded by DoubleTapDelay.
	lastTapAt time.Time
	lastTapX  float64
	hasTap    bool

	// feedbackGen invalidates a pending one-shot clear when a newer
	// interaction takes over the overlay.
	feedbackGen   uint64
	feedbackTimer *time.Timer
}

// NewClassifier creates a classifier driving the given target.
func NewClassifier(cfg Config, target Target) *Classifier {
	return &Classifier{
		cfg:    cfg,
		target: target,
	}
}

// OnFeedback registers the overlay feedback callback.
func (c *Classifier) OnFeedback(fn func(Feedback)) {
	c.onFeedback = fn
}

// OnActive registers a callback fired when a gesture commits to an intent
// (true) and when the interaction ends (false). Controls visibility hangs
// off this.
func (c *Classifier) OnActive(fn func(bool)) {
	c.onActive = fn
}

// ActiveIntent returns the committed intent of the current interaction, or
// IntentNone.
func (c *Classifier) ActiveIntent() Intent {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return IntentNone
	}
	return c.sess.intent
}

// Begin starts a touch interaction. Samples arriving while an interaction is
// already active are routed to Move: a second touch-down never starts a new
// session.
func (c *Classifier) Begin(fingers []Point, at time.Time, surface Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(fingers) == 0 {
		return
	}

	if c.sess != nil {
		c.moveLocked(fingers, at)
		return
	}

	c.sess = &session{
		surface:  surface,
		originX:  fingers[0].X,
		originY:  fingers[0].Y,
		originAt: at,
	}

	if len(fingers) >= 2 {
		c.engageZoomLocked(fingers)
		return
	}

	if c.isDoubleTapLocked(fingers[0], at) {
		c.fireDoubleTapLocked(fingers[0])
		return
	}

	// Remember this tap and track the drag undecided.
	c.lastTapAt = at
	c.lastTapX = fingers[0].X
	c.hasTap = true
}

// Move updates the active interaction with a new sample.
func (c *Classifier) Move(fingers []Point, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moveLocked(fingers, at)
}

func (c *Classifier) moveLocked(fingers []Point, at time.Time) {
	s := c.sess
	if s == nil || s.consumed || len(fingers) == 0 {
		return
	}

	if s.intent == IntentZoom {
		if len(fingers) >= 2 {
			c.updateZoomLocked(fingers)
			return
		}
		// Pinch dropped to one finger: the applied scale is retained and
		// the session re-anchors undecided. Zoom needs two fingers again.
		// The active notification is NOT withdrawn: a finger is still down,
		// so the interaction continues and the controls stay suppressed
		// until release.
		s.intent = IntentNone
		s.originX = fingers[0].X
		s.originY = fingers[0].Y
		s.pinchOrigin = 0
		return
	}

	if s.intent == IntentNone {
		if len(fingers) >= 2 {
			// Regrab: two fingers while undecided (re)engage zoom against
			// the current scale.
			c.engageZoomLocked(fingers)
			return
		}
		if !c.lockDirectionLocked(fingers[0]) {
			return
		}
	}

	// Extra fingers during a locked one-finger intent are ignored; only the
	// first tracked finger matters.
	c.updateDragLocked(fingers[0])
}

// End finishes the interaction: all fingers lifted.
func (c *Classifier) End(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.sess
	if s == nil {
		return
	}
	c.sess = nil

	if s.consumed {
		// Double tap: the overlay clears on its own timer, but the
		// interaction is over for the controls layer.
		c.notifyActive(s, false)
		return
	}

	if s.intent == IntentSeek && s.hasStaged {
		c.target.SeekTo(s.staged)
		log.Debug().Float64("position", s.staged).Msg("Seek committed on release")
	}

	// activeNotified also covers a pinch that dropped back to undecided:
	// its overlay still needs clearing.
	if s.intent != IntentNone || s.activeNotified {
		c.emit(clearedFeedback())
	}
	c.notifyActive(s, false)
}

// isDoubleTapLocked checks the tap memory against a new one-finger touch.
func (c *Classifier) isDoubleTapLocked(p Point, at time.Time) bool {
	return c.hasTap &&
		at.Sub(c.lastTapAt) < c.cfg.DoubleTapDelay &&
		math.Abs(p.X-c.lastTapX) < c.cfg.DoubleTapMaxDrift
}

// fireDoubleTapLocked commits the one-shot skip: left half back, right half
// forward. The interaction bypasses drag tracking entirely.
func (c *Classifier) fireDoubleTapLocked(p Point) {
	s := c.sess
	s.consumed = true
	s.intent = IntentSeek
	c.hasTap = false

	skip := c.cfg.DoubleTapSkip
	if p.X < s.surface.Width/2 {
		skip = -skip
	}
	c.target.SeekTo(c.target.CurrentTime() + skip)

	log.Debug().Float64("skip", skip).Msg("Double-tap seek")
	c.emit(Feedback{
		Intent: IntentSeek,
		Value:  skip,
		Label:  seekLabel(skip),
		Active: true,
	})
	c.notifyActive(s, true)
	c.scheduleFeedbackClearLocked()
}

// scheduleFeedbackClearLocked arms the one-shot overlay clear. A later
// interaction bumps the generation so a stale fire is ignored.
func (c *Classifier) scheduleFeedbackClearLocked() {
	c.feedbackGen++
	gen := c.feedbackGen

	if c.feedbackTimer != nil {
		c.feedbackTimer.Stop()
	}
	c.feedbackTimer = time.AfterFunc(c.cfg.FeedbackClear, func() {
		c.mu.Lock()
		stale := gen != c.feedbackGen
		c.mu.Unlock()
		if stale {
			return
		}
		c.emit(clearedFeedback())
	})
}

// engageZoomLocked enters zoom against the current scale with a fresh pinch
// origin. Only the first two fingers are tracked.
func (c *Classifier) engageZoomLocked(fingers []Point) {
	s := c.sess
	s.intent = IntentZoom
	s.pinchOrigin = pinchDistance(fingers)
	s.baseline = c.target.Scale()

	// Invalidate any pending overlay clear; this interaction owns it now.
	c.feedbackGen++

	c.emit(Feedback{
		Intent: IntentZoom,
		Value:  s.baseline,
		Label:  scaleLabel(s.baseline),
		Active: true,
	})
	c.notifyActive(s, true)
}

// updateZoomLocked applies the pinch scale factor live.
func (c *Classifier) updateZoomLocked(fingers []Point) {
	s := c.sess
	if s.pinchOrigin <= 0 {
		return
	}

	factor := pinchDistance(fingers) / s.pinchOrigin
	c.target.ApplyZoomScale(s.baseline * factor)

	// Read back the clamped value for the overlay.
	applied := c.target.Scale()
	c.emit(Feedback{
		Intent: IntentZoom,
		Value:  applied,
		Label:  scaleLabel(applied),
		Active: true,
	})
}

// lockDirectionLocked resolves the dominant drag axis once it exceeds the
// dead zone. Ties re-evaluate on the next sample, never by guessing.
// Returns true once an intent is locked.
func (c *Classifier) lockDirectionLocked(p Point) bool {
	s := c.sess

	dx := p.X - s.originX
	dy := s.originY - p.Y // up is positive
	adx := math.Abs(dx)
	ady := math.Abs(dy)

	if math.Max(adx, ady) <= c.cfg.SwipeThreshold || adx == ady {
		return false
	}

	if adx > ady {
		s.intent = IntentSeek
		s.baseline = c.target.CurrentTime()
	} else if s.originX >= s.surface.Width/2 {
		s.intent = IntentVolume
		s.baseline = c.target.Volume()
	} else {
		s.intent = IntentBrightness
		s.baseline = c.target.Brightness()
	}

	// The overlay is this drag's now.
	c.feedbackGen++

	log.Debug().Str("intent", s.intent.String()).Msg("Gesture locked")
	c.notifyActive(s, true)
	return true
}

// updateDragLocked computes the continuous value for a locked one-finger
// intent. Volume and brightness apply live; seek is staged.
func (c *Classifier) updateDragLocked(p Point) {
	s := c.sess
	dx := p.X - s.originX
	dy := s.originY - p.Y

	switch s.intent {
	case IntentSeek:
		delta := dx / s.surface.Width * c.cfg.SeekSpan
		candidate := clamp(s.baseline+delta, 0, c.target.Duration())
		s.staged = candidate
		s.hasStaged = true
		c.emit(Feedback{
			Intent: IntentSeek,
			Value:  candidate,
			Label:  seekLabel(candidate - s.baseline),
			Active: true,
		})

	case IntentVolume:
		delta := dy / (s.surface.Height / 2)
		c.target.SetVolume(s.baseline + delta)
		applied := c.target.Volume()
		c.emit(Feedback{
			Intent: IntentVolume,
			Value:  applied,
			Label:  percentLabel(applied),
			Active: true,
		})

	case IntentBrightness:
		delta := dy / (s.surface.Height / 2)
		c.target.SetBrightness(s.baseline + delta)
		applied := c.target.Brightness()
		c.emit(Feedback{
			Intent: IntentBrightness,
			Value:  applied,
			Label:  percentLabel(applied),
			Active: true,
		})
	}
}

func (c *Classifier) emit(f Feedback) {
	if c.onFeedback != nil {
		c.onFeedback(f)
	}
}

func (c *Classifier) notifyActive(s *session, active bool) {
	if c.onActive == nil {
		return
	}
	if active && !s.activeNotified {
		s.activeNotified = true
		c.onActive(true)
	}
	if !active && s.activeNotified {
		s.activeNotified = false
		c.onActive(false)
	}
}

// pinchDistance is the separation of the first two tracked fingers.
// Additional fingers are ignored.
func pinchDistance(fingers []Point) float64 {
	return math.Hypot(fingers[1].X-fingers[0].X, fingers[1].Y-fingers[0].Y)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
