// Package socketio provides the Socket.io server for the player surface.
//
// The surface streams raw touch samples and explicit control taps here; the
// server owns the playback session they drive and pushes state, gesture
// feedback and controls visibility back.
package socketio

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/gsilva87/swipedeck/internal/config"
	"github.com/gsilva87/swipedeck/internal/domain/controls"
	"github.com/gsilva87/swipedeck/internal/domain/gesture"
	"github.com/gsilva87/swipedeck/internal/domain/library"
	"github.com/gsilva87/swipedeck/internal/domain/playback"
	"github.com/gsilva87/swipedeck/internal/domain/playlist"
	"github.com/gsilva87/swipedeck/internal/infra/mpdtransport"
	"github.com/gsilva87/swipedeck/internal/mediakeys"
)

// statePayload is the pushState wire shape: the playback snapshot plus the
// item the surface should be rendering.
type statePayload struct {
	playback.Snapshot
	Item *library.MediaItem `json:"item,omitempty"`
}

// Server handles Socket.io connections and events.
type Server struct {
	io       *socket.Server
	cfg      *config.Config
	lib      *library.Service
	mpd      *mpdtransport.Transport
	limiter  *ConnectionLimiter
	debounce *BroadcastDebouncer

	mu      sync.RWMutex
	clients map[string]*socket.Socket
	session *playerSession
}

// NewServer creates a new Socket.io server over the given library and MPD
// transport.
func NewServer(cfg *config.Config, lib *library.Service, mpd *mpdtransport.Transport) (*Server, error) {
	// Configure Socket.io server options
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(20 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	server := socket.NewServer(nil, opts)

	s := &Server{
		io:      server,
		cfg:     cfg,
		lib:     lib,
		mpd:     mpd,
		limiter: NewConnectionLimiter(cfg.Server.MaxExternalClients),
		clients: make(map[string]*socket.Socket),
	}
	s.debounce = NewBroadcastDebouncer(
		time.Duration(cfg.Server.BroadcastDebounceMs)*time.Millisecond,
		s.BroadcastState,
	)

	s.setupHandlers()

	return s, nil
}

// setupHandlers registers all Socket.io event handlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())
		remoteIP := remoteIP(client)

		log.Info().Str("id", clientID).Str("ip", remoteIP).Msg("Client connected")

		_, evictedID := s.limiter.TryAdd(clientID, remoteIP)

		s.mu.Lock()
		s.clients[clientID] = client
		evicted := s.clients[evictedID]
		s.mu.Unlock()

		if evicted != nil {
			log.Info().Str("id", evictedID).Msg("Evicting oldest external client")
			evicted.Disconnect(true)
		}

		// Send initial state after small delay
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.pushState(client)
		}()

		// Handle disconnect
		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.limiter.Remove(clientID)
			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
		})

		// Session events
		client.On("openMedia", func(args ...any) {
			id, ok := stringField(args, "id")
			if !ok {
				log.Warn().Str("id", clientID).Msg("openMedia without item id")
				return
			}
			log.Debug().Str("id", clientID).Str("item", id).Msg("openMedia")
			s.openMedia(id)
		})

		client.On("getLibrary", func(args ...any) {
			kind, _ := stringField(args, "kind")
			query, _ := stringField(args, "query")
			resp := s.lib.List(library.ListRequest{
				Kind:  library.MediaKind(kind),
				Query: query,
			})
			client.Emit("pushLibrary", resp)
		})

		// Touch events
		client.On("touchStart", func(args ...any) {
			fingers, surface, ok := parseTouch(args)
			if !ok {
				return
			}
			s.handleTouchStart(fingers, surface)
		})

		client.On("touchMove", func(args ...any) {
			fingers, _, ok := parseTouch(args)
			if !ok {
				return
			}
			s.handleTouchMove(fingers)
		})

		client.On("touchEnd", func(args ...any) {
			s.handleTouchEnd()
		})

		// Player control events
		client.On("getState", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getState")
			s.pushState(client)
		})

		client.On("togglePlay", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("togglePlay")
			if sess := s.currentSession(); sess != nil {
				sess.controller.TogglePlay()
				sess.controls.Interact()
			}
		})

		client.On("seek", func(args ...any) {
			pos, ok := floatArg(args)
			if !ok {
				return
			}
			log.Debug().Str("id", clientID).Float64("pos", pos).Msg("seek")
			if sess := s.currentSession(); sess != nil {
				sess.controller.SeekTo(pos)
				sess.controls.Interact()
			}
		})

		client.On("setRate", func(args ...any) {
			rate, ok := floatArg(args)
			if !ok {
				return
			}
			log.Debug().Str("id", clientID).Float64("rate", rate).Msg("setRate")
			if sess := s.currentSession(); sess != nil {
				sess.controller.SetRate(rate)
				sess.controls.Interact()
			}
		})

		client.On("volume", func(args ...any) {
			vol, ok := floatArg(args)
			if !ok {
				return
			}
			log.Debug().Str("id", clientID).Float64("vol", vol).Msg("volume")
			if sess := s.currentSession(); sess != nil {
				sess.controller.SetVolume(vol)
				sess.controls.Interact()
			}
		})

		client.On("brightness", func(args ...any) {
			b, ok := floatArg(args)
			if !ok {
				return
			}
			log.Debug().Str("id", clientID).Float64("brightness", b).Msg("brightness")
			if sess := s.currentSession(); sess != nil {
				sess.controller.SetBrightness(b)
				sess.controls.Interact()
			}
		})

		client.On("cycleZoom", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("cycleZoom")
			if sess := s.currentSession(); sess != nil {
				sess.controller.CycleZoomMode()
				sess.controls.Interact()
			}
		})

		client.On("next", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("next")
			if sess := s.currentSession(); sess != nil && sess.queue != nil {
				sess.queue.Next()
				sess.controls.Interact()
			}
		})

		client.On("prev", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("prev")
			if sess := s.currentSession(); sess != nil && sess.queue != nil {
				sess.queue.Previous()
				sess.controls.Interact()
			}
		})

		client.On("setShuffle", func(args ...any) {
			on := boolArg(args)
			log.Debug().Str("id", clientID).Bool("shuffle", on).Msg("setShuffle")
			if sess := s.currentSession(); sess != nil && sess.queue != nil {
				sess.queue.SetShuffle(on)
			}
		})

		client.On("setRepeat", func(args ...any) {
			mode, ok := stringField(args, "mode")
			if !ok {
				return
			}
			log.Debug().Str("id", clientID).Str("mode", mode).Msg("setRepeat")
			if sess := s.currentSession(); sess != nil && sess.queue != nil {
				sess.queue.SetRepeatMode(repeatModeFromString(mode))
			}
		})

		// Surface progress reports for video sessions, where the rendering
		// layer owns the decoder.
		client.On("timeUpdate", func(args ...any) {
			t, ok := floatArg(args)
			if !ok {
				return
			}
			if sess := s.currentSession(); sess != nil {
				sess.controller.OnTimeUpdate(t)
			}
		})

		client.On("mediaLoaded", func(args ...any) {
			d, ok := floatArg(args)
			if !ok {
				return
			}
			log.Debug().Float64("duration", d).Msg("mediaLoaded")
			if sess := s.currentSession(); sess != nil {
				sess.controller.OnMetadataLoaded(d)
			}
		})

		// OS media-key presses forwarded by the surface process.
		client.On("mediaKey", func(args ...any) {
			s.handleMediaKey(args)
		})

		client.On("ended", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("ended")
			if sess := s.currentSession(); sess != nil {
				sess.controller.OnEnded()
			}
		})
	})
}

// openMedia assembles a fresh player session for the given library item,
// replacing any existing session.
func (s *Server) openMedia(id string) {
	item, ok := s.lib.Get(id)
	if !ok {
		log.Warn().Str("item", id).Msg("openMedia for unknown item")
		return
	}

	s.mu.Lock()
	old := s.session
	s.session = nil
	s.mu.Unlock()
	if old != nil {
		old.close()
	}

	sess := &playerSession{item: item}

	var duration float64
	switch item.Kind {
	case library.KindAudio:
		d, err := s.mpd.Load(item.Path)
		if err != nil {
			log.Error().Err(err).Str("item", item.Name).Msg("Failed to load audio item")
			return
		}
		duration = d
		sess.controller = playback.NewController(s.mpd)
		sess.queue = s.buildAudioQueue(sess, item.ID)
		sess.controller.SetQueue(sess.queue)
	default:
		// Video plays on the surface; duration arrives via mediaLoaded.
		sess.controller = playback.NewController(surfaceTransport{})
	}

	if sess.queue != nil {
		sess.hooks = mediakeys.Bind(sess.controller, sess.queue)
	} else {
		sess.hooks = mediakeys.Bind(sess.controller, nil)
	}

	sess.classifier = gesture.NewClassifier(gestureConfig(s.cfg.Gestures), sess.controller)
	sess.controls = controls.NewVisibility(s.cfg.Controls.HideDelay(), func(visible bool) {
		s.BroadcastControls(visible)
	})

	sess.classifier.OnFeedback(func(f gesture.Feedback) {
		s.BroadcastGesture(f)
	})
	sess.classifier.OnActive(func(active bool) {
		s.mu.Lock()
		if s.session == sess {
			sess.gestureSeen = sess.gestureSeen || active
		}
		s.mu.Unlock()
		if active {
			sess.controls.GestureStarted()
		} else {
			sess.controls.GestureEnded()
		}
	})
	sess.controller.OnChange(func(snap playback.Snapshot) {
		s.onStateChange(sess, snap)
	})

	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	log.Info().Str("item", item.Name).Str("kind", string(item.Kind)).Msg("Opened media session")

	if item.Kind == library.KindAudio {
		ctx, cancel := context.WithCancel(context.Background())
		sess.cancel = cancel
		s.mpd.Run(ctx, sess.controller)
		sess.controller.OnMetadataLoaded(duration)
	}

	s.BroadcastState()
}

// buildAudioQueue creates the playlist queue over all audio items, wired to
// load whichever item becomes current.
func (s *Server) buildAudioQueue(sess *playerSession, startID string) *playlist.Queue {
	q := playlist.NewQueue(s.lib.IDs(library.KindAudio), startID)
	q.OnCurrent(func(id string) {
		item, ok := s.lib.Get(id)
		if !ok {
			log.Warn().Str("item", id).Msg("Queue advanced to unknown item")
			return
		}
		duration, err := s.mpd.Load(item.Path)
		if err != nil {
			log.Error().Err(err).Str("item", item.Name).Msg("Failed to load next item")
			return
		}

		s.mu.Lock()
		if s.session == sess {
			sess.item = item
		}
		s.mu.Unlock()

		sess.controller.OnMetadataLoaded(duration)
	})
	return q
}

// handleTouchStart begins or continues a touch interaction.
func (s *Server) handleTouchStart(fingers []gesture.Point, surface gesture.Surface) {
	sess := s.currentSession()
	if sess == nil {
		return
	}

	s.mu.Lock()
	if !sess.interactionOpen {
		sess.interactionOpen = true
		sess.gestureSeen = false
	}
	s.mu.Unlock()

	sess.classifier.Begin(fingers, time.Now(), surface)
}

// handleMediaKey routes an OS media-key press {key, value?} to the session's
// hooks.
func (s *Server) handleMediaKey(args []any) {
	key, ok := stringField(args, "key")
	if !ok {
		return
	}
	sess := s.currentSession()
	if sess == nil {
		return
	}

	log.Debug().Str("key", key).Msg("mediaKey")
	switch key {
	case "play":
		sess.hooks.Play()
	case "pause":
		sess.hooks.Pause()
	case "next":
		sess.hooks.Next()
	case "prev":
		sess.hooks.Previous()
	case "seek":
		if v, ok := floatArg(args); ok {
			sess.hooks.SeekTo(v)
		}
	}
}

// handleTouchMove feeds a sample to the active interaction.
func (s *Server) handleTouchMove(fingers []gesture.Point) {
	if sess := s.currentSession(); sess != nil {
		sess.classifier.Move(fingers, time.Now())
	}
}

// handleTouchEnd finishes the interaction. An interaction that never locked
// an intent and never fired a double tap is a plain tap, which toggles the
// controls.
func (s *Server) handleTouchEnd() {
	sess := s.currentSession()
	if sess == nil {
		return
	}

	sess.classifier.End(time.Now())

	s.mu.Lock()
	wasOpen := sess.interactionOpen
	wasTap := wasOpen && !sess.gestureSeen
	sess.interactionOpen = false
	s.mu.Unlock()

	if wasTap {
		sess.controls.ToggleTap()
	}
}

// onStateChange forwards play/pause transitions to the controls hide timer
// and schedules a debounced state broadcast.
func (s *Server) onStateChange(sess *playerSession, snap playback.Snapshot) {
	s.mu.Lock()
	transition := s.session == sess && sess.lastPlaying != snap.Playing
	sess.lastPlaying = snap.Playing
	s.mu.Unlock()

	if transition {
		sess.controls.SetPlaying(snap.Playing)
	}
	s.debounce.Trigger()
}

// currentSession returns the active player session, or nil.
func (s *Server) currentSession() *playerSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// statePayloadLocked builds the pushState payload (must hold read lock).
func (s *Server) statePayloadLocked() (statePayload, bool) {
	if s.session == nil {
		return statePayload{}, false
	}
	item := s.session.item
	return statePayload{
		Snapshot: s.session.controller.Snapshot(),
		Item:     &item,
	}, true
}

// pushState sends current state to a client.
func (s *Server) pushState(client *socket.Socket) {
	s.mu.RLock()
	payload, ok := s.statePayloadLocked()
	s.mu.RUnlock()
	if !ok {
		return
	}
	client.Emit("pushState", payload)
}

// BroadcastState sends state to all connected clients.
func (s *Server) BroadcastState() {
	s.mu.RLock()
	payload, ok := s.statePayloadLocked()
	clientCount := len(s.clients)
	s.mu.RUnlock()
	if !ok {
		return
	}

	s.io.Emit("pushState", payload)
	log.Debug().Int("clients", clientCount).Msg("Broadcast state")
}

// BroadcastGesture sends gesture overlay feedback to all connected clients.
func (s *Server) BroadcastGesture(f gesture.Feedback) {
	s.io.Emit("pushGesture", map[string]interface{}{
		"intent": f.Intent.String(),
		"value":  f.Value,
		"label":  f.Label,
		"active": f.Active,
	})
}

// BroadcastControls sends a controls visibility transition to all clients.
func (s *Server) BroadcastControls(visible bool) {
	s.io.Emit("pushControls", map[string]interface{}{
		"visible": visible,
	})
}

// ServeHTTP implements http.Handler for the Socket.io server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close closes the Socket.io server and the active session.
func (s *Server) Close() error {
	s.debounce.Stop()

	s.mu.Lock()
	sess := s.session
	s.session = nil
	s.mu.Unlock()
	if sess != nil {
		sess.close()
	}

	s.io.Close(nil)
	return nil
}

// gestureConfig maps the file configuration onto classifier tuning.
func gestureConfig(g config.GestureConfig) gesture.Config {
	return gesture.Config{
		SwipeThreshold:    g.SwipeThresholdPx,
		DoubleTapDelay:    g.DoubleTapDelay(),
		DoubleTapMaxDrift: g.DoubleTapMaxDriftPx,
		DoubleTapSkip:     g.DoubleTapSkipSeconds,
		SeekSpan:          g.SeekSpanSeconds,
		FeedbackClear:     g.FeedbackClear(),
	}
}

// remoteIP extracts the client IP from the Socket.io handshake, normalizing
// IPv4-mapped IPv6 and stripping any port.
func remoteIP(client *socket.Socket) string {
	addr := client.Handshake().Address
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return strings.TrimPrefix(addr, "::ffff:")
}

// floatArg reads a numeric event payload, either raw or as {value: n}.
func floatArg(args []any) (float64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	switch v := args[0].(type) {
	case float64:
		return v, true
	case map[string]interface{}:
		if f, ok := v["value"].(float64); ok {
			return f, true
		}
	}
	return 0, false
}

// boolArg reads a boolean event payload, either raw or as {value: b}.
func boolArg(args []any) bool {
	if len(args) == 0 {
		return false
	}
	switch v := args[0].(type) {
	case bool:
		return v
	case map[string]interface{}:
		b, _ := v["value"].(bool)
		return b
	}
	return false
}

// stringField reads a string field from a map event payload.
func stringField(args []any, key string) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	m, ok := args[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	v, ok := m[key].(string)
	return v, ok
}

// parseTouch decodes a {fingers: [{x, y}], w, h} touch sample.
func parseTouch(args []any) ([]gesture.Point, gesture.Surface, bool) {
	if len(args) == 0 {
		return nil, gesture.Surface{}, false
	}
	m, ok := args[0].(map[string]interface{})
	if !ok {
		return nil, gesture.Surface{}, false
	}

	rawFingers, _ := m["fingers"].([]interface{})
	fingers := make([]gesture.Point, 0, len(rawFingers))
	for _, rf := range rawFingers {
		fm, ok := rf.(map[string]interface{})
		if !ok {
			continue
		}
		x, okX := fm["x"].(float64)
		y, okY := fm["y"].(float64)
		if !okX || !okY {
			continue
		}
		fingers = append(fingers, gesture.Point{X: x, Y: y})
	}

	w, _ := m["w"].(float64)
	h, _ := m["h"].(float64)

	return fingers, gesture.Surface{Width: w, Height: h}, len(fingers) > 0
}

// repeatModeFromString maps the wire repeat mode to the queue policy.
func repeatModeFromString(mode string) playback.RepeatMode {
	switch mode {
	case "one":
		return playback.RepeatOne
	case "all":
		return playback.RepeatAll
	default:
		return playback.RepeatOff
	}
}
