package playback

import "errors"

// ErrUnsupported is returned by transports for operations the underlying
// engine cannot perform (e.g. playback rate on MPD).
var ErrUnsupported = errors.New("operation not supported by transport")

// ErrNoMedia is returned when a transport command arrives before any media
// has been loaded.
var ErrNoMedia = errors.New("no media loaded")

// MediaTransport is the contract to the underlying playable engine.
// The controller is its sole caller. Implementations never expose decoding,
// buffering or format handling.
//
// Play returning nil is the confirmation the controller waits for before
// flipping the playing flag; a non-nil error means the engine rejected
// playback and the flag stays false.
type MediaTransport interface {
	Play() error
	Pause() error
	// Seek moves the playback position, in seconds.
	Seek(seconds float64) error
	// SetVolume applies a volume in [0,1].
	SetVolume(v float64) error
	// SetRate applies a playback rate, or returns ErrUnsupported.
	SetRate(r float64) error
	Close() error
}

// Listener receives transport callbacks. The Controller implements it;
// transport adapters deliver their engine's events through it.
type Listener interface {
	// OnTimeUpdate reports the playback position, in seconds.
	OnTimeUpdate(seconds float64)
	// OnMetadataLoaded reports the media duration once it is known.
	OnMetadataLoaded(duration float64)
	// OnEnded reports that playback reached the end of the media.
	OnEnded()
}
