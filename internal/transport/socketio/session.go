package socketio

import (
	"context"

	"github.com/gsilva87/swipedeck/internal/domain/controls"
	"github.com/gsilva87/swipedeck/internal/domain/gesture"
	"github.com/gsilva87/swipedeck/internal/domain/library"
	"github.com/gsilva87/swipedeck/internal/domain/playback"
	"github.com/gsilva87/swipedeck/internal/domain/playlist"
	"github.com/gsilva87/swipedeck/internal/mediakeys"
)

// playerSession is one open media item with its full control chain: the
// playback controller, the gesture classifier driving it and the controls
// visibility state. The server holds at most one at a time; opening a new
// item closes the previous session.
type playerSession struct {
	item       library.MediaItem
	controller *playback.Controller
	classifier *gesture.Classifier
	controls   *controls.Visibility
	queue      *playlist.Queue // nil for video sessions
	hooks      mediakeys.Hooks

	// cancel stops the MPD status poller for audio sessions.
	cancel context.CancelFunc

	// Interaction bookkeeping for the tap-toggles-controls rule, guarded by
	// the server mutex. A touch interaction that ends without ever locking
	// an intent is a plain tap.
	interactionOpen bool
	gestureSeen     bool

	// lastPlaying tracks play/pause transitions for the controls hide timer,
	// guarded by the server mutex.
	lastPlaying bool
}

func (ps *playerSession) close() {
	if ps.cancel != nil {
		ps.cancel()
	}
	ps.controls.Stop()
}
