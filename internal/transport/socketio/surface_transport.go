package socketio

// surfaceTransport backs video sessions. The rendering surface owns the
// actual media element and applies play/pause/seek/rate from pushState, so
// every command is accepted here; progress flows back through the
// timeUpdate, mediaLoaded and ended events.
type surfaceTransport struct{}

func (surfaceTransport) Play() error { return nil }

func (surfaceTransport) Pause() error { return nil }

func (surfaceTransport) Seek(float64) error { return nil }

func (surfaceTransport) SetVolume(float64) error { return nil }

func (surfaceTransport) SetRate(float64) error { return nil }

func (surfaceTransport) Close() error { return nil }
