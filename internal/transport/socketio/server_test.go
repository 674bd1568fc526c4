package socketio

import (
	"testing"

	"github.com/gsilva87/swipedeck/internal/config"
	"github.com/gsilva87/swipedeck/internal/domain/gesture"
	"github.com/gsilva87/swipedeck/internal/domain/library"
	"github.com/gsilva87/swipedeck/internal/domain/playback"
	"github.com/gsilva87/swipedeck/internal/infra/mpdtransport"
)

func newTestServer(t *testing.T) (*Server, *library.Service) {
	t.Helper()

	lib := library.NewService()
	// 16601 is an unlikely port; audio sessions would fail to load, which is
	// fine since these tests drive video sessions only.
	mpd := mpdtransport.New("localhost", 16601, "")

	s, err := NewServer(config.DefaultConfig(), lib, mpd)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s, lib
}

func TestNewServer(t *testing.T) {
	s, _ := newTestServer(t)
	if s == nil {
		t.Fatal("NewServer should return a non-nil server")
	}
}

func TestBroadcastStateWithoutSession(t *testing.T) {
	s, _ := newTestServer(t)

	// Should not panic with no session or clients
	s.BroadcastState()
}

func TestOpenMediaUnknownItem(t *testing.T) {
	s, _ := newTestServer(t)

	s.openMedia("no-such-id")

	if s.currentSession() != nil {
		t.Error("unknown item must not open a session")
	}
}

func TestOpenMediaVideoSession(t *testing.T) {
	s, lib := newTestServer(t)
	item, _ := lib.Add("/media/movie.mp4")

	s.openMedia(item.ID)

	sess := s.currentSession()
	if sess == nil {
		t.Fatal("expected an open session")
	}
	if sess.queue != nil {
		t.Error("video sessions must not have a playlist queue")
	}

	// The surface reports metadata; playback auto-starts.
	sess.controller.OnMetadataLoaded(120)
	snap := sess.controller.Snapshot()
	if snap.Duration != 120 {
		t.Errorf("expected duration 120, got %v", snap.Duration)
	}
	if !snap.Playing {
		t.Error("expected autoplay after metadata")
	}
}

func TestOpenMediaReplacesSession(t *testing.T) {
	s, lib := newTestServer(t)
	first, _ := lib.Add("/media/one.mp4")
	second, _ := lib.Add("/media/two.mp4")

	s.openMedia(first.ID)
	old := s.currentSession()
	s.openMedia(second.ID)

	sess := s.currentSession()
	if sess == old {
		t.Fatal("expected a fresh session for the second item")
	}
	if sess.item.ID != second.ID {
		t.Errorf("expected session item %s, got %s", second.ID, sess.item.ID)
	}
}

func TestPlainTapTogglesControls(t *testing.T) {
	s, lib := newTestServer(t)
	item, _ := lib.Add("/media/movie.mp4")
	s.openMedia(item.ID)
	sess := s.currentSession()

	if !sess.controls.Visible() {
		t.Fatal("controls must start visible")
	}

	surface := gesture.Surface{Width: 400, Height: 600}
	s.handleTouchStart([]gesture.Point{{X: 200, Y: 300}}, surface)
	s.handleTouchEnd()

	if sess.controls.Visible() {
		t.Error("a plain tap should hide visible controls")
	}

	// Far enough from the first tap that it is not a double tap.
	s.handleTouchStart([]gesture.Point{{X: 280, Y: 300}}, surface)
	s.handleTouchEnd()

	if !sess.controls.Visible() {
		t.Error("a second tap should show them again")
	}
}

func TestDragDoesNotToggleControls(t *testing.T) {
	s, lib := newTestServer(t)
	item, _ := lib.Add("/media/movie.mp4")
	s.openMedia(item.ID)
	sess := s.currentSession()
	sess.controller.OnMetadataLoaded(100)

	surface := gesture.Surface{Width: 400, Height: 600}
	s.handleTouchStart([]gesture.Point{{X: 350, Y: 400}}, surface)
	s.handleTouchMove([]gesture.Point{{X: 350, Y: 250}})
	s.handleTouchEnd()

	// The gesture forced a hide and the release restored visibility; a drag
	// must never count as a tap.
	if !sess.controls.Visible() {
		t.Error("controls should be visible after a gesture ends")
	}

	// Downward drag on the right half lowers volume, proving the drag was
	// classified rather than treated as a tap. Its origin is far enough from
	// the previous touch that no double tap fires.
	s.handleTouchStart([]gesture.Point{{X: 250, Y: 200}}, surface)
	s.handleTouchMove([]gesture.Point{{X: 250, Y: 350}})
	s.handleTouchEnd()

	if got := sess.controller.Snapshot().Volume; got != 0.5 {
		t.Errorf("expected volume 0.5 after drag, got %v", got)
	}
}

func TestMediaKeysDriveTheSession(t *testing.T) {
	s, lib := newTestServer(t)
	item, _ := lib.Add("/media/movie.mp4")
	s.openMedia(item.ID)
	sess := s.currentSession()
	sess.controller.OnMetadataLoaded(100)

	s.handleMediaKey([]any{map[string]interface{}{"key": "pause"}})
	if sess.controller.Snapshot().Playing {
		t.Error("expected paused after media-key pause")
	}

	// Pause is idempotent; play resumes.
	s.handleMediaKey([]any{map[string]interface{}{"key": "pause"}})
	s.handleMediaKey([]any{map[string]interface{}{"key": "play"}})
	if !sess.controller.Snapshot().Playing {
		t.Error("expected playing after media-key play")
	}

	s.handleMediaKey([]any{map[string]interface{}{"key": "seek", "value": 42.0}})
	if got := sess.controller.Snapshot().CurrentTime; got != 42 {
		t.Errorf("expected position 42 after media-key seek, got %v", got)
	}

	// Queueless video session: next/prev are no-ops, never panics.
	s.handleMediaKey([]any{map[string]interface{}{"key": "next"}})
	s.handleMediaKey([]any{map[string]interface{}{"key": "prev"}})
}

func TestMediaKeyWithoutSessionIsIgnored(t *testing.T) {
	s, _ := newTestServer(t)

	// Must not panic
	s.handleMediaKey([]any{map[string]interface{}{"key": "play"}})
}

func TestTouchWithoutSessionIsIgnored(t *testing.T) {
	s, _ := newTestServer(t)

	// Must not panic
	s.handleTouchStart([]gesture.Point{{X: 10, Y: 10}}, gesture.Surface{Width: 400, Height: 600})
	s.handleTouchEnd()
}

func TestParseTouch(t *testing.T) {
	fingers, surface, ok := parseTouch([]any{map[string]interface{}{
		"fingers": []interface{}{
			map[string]interface{}{"x": 10.0, "y": 20.0},
			map[string]interface{}{"x": 30.0, "y": 40.0},
		},
		"w": 400.0,
		"h": 600.0,
	}})

	if !ok {
		t.Fatal("expected valid touch payload")
	}
	if len(fingers) != 2 || fingers[1] != (gesture.Point{X: 30, Y: 40}) {
		t.Errorf("unexpected fingers %v", fingers)
	}
	if surface != (gesture.Surface{Width: 400, Height: 600}) {
		t.Errorf("unexpected surface %v", surface)
	}
}

func TestParseTouchRejectsMalformed(t *testing.T) {
	cases := [][]any{
		nil,
		{"not a map"},
		{map[string]interface{}{"w": 400.0, "h": 600.0}},
		{map[string]interface{}{"fingers": []interface{}{}, "w": 400.0, "h": 600.0}},
	}
	for i, args := range cases {
		if _, _, ok := parseTouch(args); ok {
			t.Errorf("case %d: expected rejection", i)
		}
	}
}

func TestFloatArg(t *testing.T) {
	if v, ok := floatArg([]any{42.5}); !ok || v != 42.5 {
		t.Errorf("raw number: got %v, %v", v, ok)
	}
	if v, ok := floatArg([]any{map[string]interface{}{"value": 1.5}}); !ok || v != 1.5 {
		t.Errorf("wrapped number: got %v, %v", v, ok)
	}
	if _, ok := floatArg(nil); ok {
		t.Error("empty args should not parse")
	}
	if _, ok := floatArg([]any{"nope"}); ok {
		t.Error("string should not parse")
	}
}

func TestStringField(t *testing.T) {
	if v, ok := stringField([]any{map[string]interface{}{"id": "abc"}}, "id"); !ok || v != "abc" {
		t.Errorf("got %q, %v", v, ok)
	}
	if _, ok := stringField([]any{map[string]interface{}{}}, "id"); ok {
		t.Error("missing field should not parse")
	}
}

func TestRepeatModeFromString(t *testing.T) {
	tests := []struct {
		in   string
		want playback.RepeatMode
	}{
		{"off", playback.RepeatOff},
		{"one", playback.RepeatOne},
		{"all", playback.RepeatAll},
		{"bogus", playback.RepeatOff},
	}
	for _, tt := range tests {
		if got := repeatModeFromString(tt.in); got != tt.want {
			t.Errorf("repeatModeFromString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGestureConfigMapping(t *testing.T) {
	cfg := config.DefaultConfig().Gestures
	gc := gestureConfig(cfg)

	if gc.SwipeThreshold != 30 || gc.DoubleTapSkip != 10 || gc.SeekSpan != 90 {
		t.Errorf("unexpected mapping: %+v", gc)
	}
	if gc.DoubleTapDelay != cfg.DoubleTapDelay() || gc.FeedbackClear != cfg.FeedbackClear() {
		t.Error("duration fields must come from the config helpers")
	}
}
