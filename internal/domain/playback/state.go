// Package playback provides the core playback state machine and controller.
package playback

import "sync"

// Domain ranges for gesture-driven values. Values outside these are clamped,
// never rejected, since drags routinely overshoot.
const (
	MinVolume     = 0.0
	MaxVolume     = 1.0
	MinBrightness = 0.2
	MaxBrightness = 1.5
	MinScale      = 0.5
	MaxScale      = 3.0
)

// AllowedRates is the fixed set of playback rates the controller accepts.
var AllowedRates = []float64{0.5, 1.0, 1.25, 1.5, 2.0}

// RateAllowed reports whether r is one of the fixed allowed rates.
func RateAllowed(r float64) bool {
	for _, allowed := range AllowedRates {
		if r == allowed {
			return true
		}
	}
	return false
}

// ZoomMode is the display scaling mode of a video session.
type ZoomMode int

const (
	// ZoomFit letterboxes the video to fit inside the surface.
	ZoomFit ZoomMode = iota
	// ZoomFill crops the video to fill the surface.
	ZoomFill
	// ZoomStretch distorts the video to the surface aspect ratio.
	ZoomStretch
	// ZoomFree is the continuously pinch-scaled mode. It is entered only via
	// a pinch gesture and left only by cycling the discrete modes.
	ZoomFree
)

// String returns the zoom mode name.
func (z ZoomMode) String() string {
	switch z {
	case ZoomFit:
		return "fit"
	case ZoomFill:
		return "fill"
	case ZoomStretch:
		return "stretch"
	case ZoomFree:
		return "free"
	default:
		return "unknown"
	}
}

// PresentationParams describes how the rendering layer should display the
// video for a given zoom mode and scale.
type PresentationParams struct {
	ObjectFit string  `json:"objectFit"`
	Scale     float64 `json:"scale"`
}

// PresentationParams maps {zoomMode, scale} to presentation parameters.
// The mapping is total over the enum; scale only applies in free mode.
func (z ZoomMode) PresentationParams(scale float64) PresentationParams {
	switch z {
	case ZoomFill:
		return PresentationParams{ObjectFit: "cover", Scale: 1.0}
	case ZoomStretch:
		return PresentationParams{ObjectFit: "fill", Scale: 1.0}
	case ZoomFree:
		return PresentationParams{ObjectFit: "contain", Scale: clamp(scale, MinScale, MaxScale)}
	default:
		return PresentationParams{ObjectFit: "contain", Scale: 1.0}
	}
}

// State is the canonical mutable record of one active media session.
// It is safe for concurrent access. All mutation goes through the Controller.
type State struct {
	mu sync.RWMutex

	playing     bool
	currentTime float64 // seconds
	duration    float64 // seconds, 0 until metadata loads
	volume      float64 // [0,1]
	brightness  float64 // [0.2,1.5]
	rate        float64 // one of AllowedRates
	zoomMode    ZoomMode
	scale       float64 // [0.5,3.0], meaningful in ZoomFree
}

// NewState creates a player state with default values.
func NewState() *State {
	return &State{
		volume:     1.0,
		brightness: 1.0,
		rate:       1.0,
		zoomMode:   ZoomFit,
		scale:      1.0,
	}
}

// Snapshot is an immutable copy of the state for pushes to clients.
type Snapshot struct {
	Playing     bool    `json:"playing"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
	Volume      float64 `json:"volume"`
	Brightness  float64 `json:"brightness"`
	Rate        float64 `json:"rate"`
	ZoomMode    string  `json:"zoomMode"`
	Scale       float64 `json:"scale"`
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Playing:     s.playing,
		CurrentTime: s.currentTime,
		Duration:    s.duration,
		Volume:      s.volume,
		Brightness:  s.brightness,
		Rate:        s.rate,
		ZoomMode:    s.zoomMode.String(),
		Scale:       s.scale,
	}
}

// Playing reports whether playback is active.
func (s *State) Playing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playing
}

// CurrentTime returns the playback position in seconds.
func (s *State) CurrentTime() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentTime
}

// Duration returns the media duration in seconds (0 until metadata loads).
func (s *State) Duration() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duration
}

// Volume returns the current volume in [0,1].
func (s *State) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// Brightness returns the current brightness in [0.2,1.5].
func (s *State) Brightness() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.brightness
}

// Rate returns the current playback rate.
func (s *State) Rate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// ZoomMode returns the current zoom mode.
func (s *State) ZoomMode() ZoomMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zoomMode
}

// Scale returns the current free-zoom scale.
func (s *State) Scale() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scale
}

// setPlaying sets the playing flag.
func (s *State) setPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = playing
}

// setCurrentTime sets the position, clamped to [0, duration].
func (s *State) setCurrentTime(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentTime = clamp(t, 0, s.duration)
}

// setDuration records the media duration and re-clamps the position.
func (s *State) setDuration(d float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d < 0 {
		d = 0
	}
	s.duration = d
	s.currentTime = clamp(s.currentTime, 0, d)
}

// setVolume sets the volume, clamped to [0,1].
func (s *State) setVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = clamp(v, MinVolume, MaxVolume)
}

// setBrightness sets the brightness, clamped to [0.2,1.5].
func (s *State) setBrightness(b float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brightness = clamp(b, MinBrightness, MaxBrightness)
}

// setRate sets the playback rate. Callers validate against AllowedRates.
func (s *State) setRate(r float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = r
}

// setZoomMode sets a discrete zoom mode and resets the scale.
func (s *State) setZoomMode(mode ZoomMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoomMode = mode
	s.scale = 1.0
}

// setFreeScale enters free zoom at the given scale, clamped to [0.5,3.0].
func (s *State) setFreeScale(scale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoomMode = ZoomFree
	s.scale = clamp(scale, MinScale, MaxScale)
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
