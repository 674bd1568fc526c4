// Package mpdtransport adapts an MPD server to the playback.MediaTransport
// contract for audio sessions.
package mpdtransport

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"

	"github.com/gsilva87/swipedeck/internal/domain/playback"
)

// pollInterval is how often the status loop samples MPD for time updates.
const pollInterval = time.Second

// Transport drives MPD as a playback engine, with reconnection logic.
// It implements playback.MediaTransport.
type Transport struct {
	mu       sync.RWMutex
	client   *mpd.Client
	host     string
	port     int
	password string
}

// New creates an MPD transport for the given endpoint.
func New(host string, port int, password string) *Transport {
	return &Transport{
		host:     host,
		port:     port,
		password: password,
	}
}

// Connect establishes the MPD connection.
func (t *Transport) Connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.connectLocked()
}

// connectLocked establishes the connection (must hold lock).
func (t *Transport) connectLocked() error {
	addr := fmt.Sprintf("%s:%d", t.host, t.port)
	log.Info().Str("addr", addr).Msg("Connecting to MPD")

	client, err := mpd.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to MPD: %w", err)
	}

	if t.password != "" {
		if err := client.Command("password %s", t.password).OK(); err != nil {
			client.Close()
			return fmt.Errorf("MPD authentication failed: %w", err)
		}
	}

	t.client = client
	log.Info().Msg("Connected to MPD")
	return nil
}

// ensureConnected checks the connection and reconnects if needed.
func (t *Transport) ensureConnected() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		return t.connectLocked()
	}

	if err := t.client.Ping(); err != nil {
		log.Warn().Err(err).Msg("MPD connection lost, reconnecting...")
		t.client.Close()
		t.client = nil
		return t.connectLocked()
	}

	return nil
}

// Close closes the MPD connection.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		err := t.client.Close()
		t.client = nil
		return err
	}
	return nil
}

// Ping checks if the connection is alive.
func (t *Transport) Ping() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.client == nil {
		return fmt.Errorf("not connected")
	}
	return t.client.Ping()
}

// Load replaces the MPD queue with the given URI and returns the track
// duration in seconds.
func (t *Transport) Load(uri string) (float64, error) {
	if err := t.ensureConnected(); err != nil {
		return 0, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if err := t.client.Clear(); err != nil {
		return 0, fmt.Errorf("failed to clear MPD queue: %w", err)
	}
	if err := t.client.Add(uri); err != nil {
		return 0, fmt.Errorf("failed to queue %s: %w", uri, err)
	}

	info, err := t.client.PlaylistInfo(-1, -1)
	if err != nil {
		return 0, fmt.Errorf("failed to read queued track: %w", err)
	}
	if len(info) == 0 {
		return 0, playback.ErrNoMedia
	}

	duration, err := strconv.ParseFloat(info[0]["duration"], 64)
	if err != nil {
		// Older MPD reports whole seconds in Time.
		if secs, err := strconv.Atoi(info[0]["Time"]); err == nil {
			duration = float64(secs)
		}
	}

	log.Info().Str("uri", uri).Float64("duration", duration).Msg("Loaded track")
	return duration, nil
}

// Play starts or resumes playback.
func (t *Transport) Play() error {
	if err := t.ensureConnected(); err != nil {
		return err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.client.Play(-1)
}

// Pause pauses playback.
func (t *Transport) Pause() error {
	if err := t.ensureConnected(); err != nil {
		return err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.client.Pause(true)
}

// Seek moves the position within the current track.
func (t *Transport) Seek(seconds float64) error {
	if err := t.ensureConnected(); err != nil {
		return err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.client.SeekCur(time.Duration(seconds*float64(time.Second)), false)
}

// SetVolume maps the player volume [0,1] to MPD's 0-100.
func (t *Transport) SetVolume(v float64) error {
	if err := t.ensureConnected(); err != nil {
		return err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.client.SetVolume(VolumeToMPD(v))
}

// SetRate reports that MPD cannot change playback rate.
func (t *Transport) SetRate(r float64) error {
	return playback.ErrUnsupported
}

// Run polls MPD and forwards playback progress to the listener until the
// context is cancelled. Ended is detected as a play-to-stop transition.
func (t *Transport) Run(ctx context.Context, listener playback.Listener) {
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		lastState := ""
		log.Info().Msg("MPD status poller started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("MPD status poller stopped")
				return
			case <-ticker.C:
				if err := t.ensureConnected(); err != nil {
					continue
				}

				t.mu.RLock()
				status, err := t.client.Status()
				t.mu.RUnlock()
				if err != nil {
					log.Warn().Err(err).Msg("MPD status failed")
					continue
				}

				state := status["state"]
				if elapsed, err := strconv.ParseFloat(status["elapsed"], 64); err == nil {
					listener.OnTimeUpdate(elapsed)
				}
				if lastState == "play" && state == "stop" {
					listener.OnEnded()
				}
				lastState = state
			}
		}
	}()
}

// VolumeToMPD converts a player volume in [0,1] to MPD's 0-100 scale.
func VolumeToMPD(v float64) int {
	scaled := int(math.Round(v * 100))
	if scaled < 0 {
		return 0
	}
	if scaled > 100 {
		return 100
	}
	return scaled
}
