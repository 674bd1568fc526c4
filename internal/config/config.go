// Package config loads the SwipeDeck configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Server settings
	Server ServerConfig `yaml:"server"`

	// MPD endpoint used for audio playback sessions
	MPD MPDConfig `yaml:"mpd"`

	// Media directories scanned for playable files
	MediaDirs []string `yaml:"media_dirs"`

	// Gesture engine tuning
	Gestures GestureConfig `yaml:"gestures"`

	// Player controls timing
	Controls ControlsConfig `yaml:"controls"`
}

// ServerConfig represents HTTP/Socket.IO server settings
type ServerConfig struct {
	Port                string `yaml:"port"`
	MaxExternalClients  int    `yaml:"max_external_clients"`
	BroadcastDebounceMs int    `yaml:"broadcast_debounce_ms"`
}

// MPDConfig represents the MPD connection settings
type MPDConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password,omitempty"`
}

// GestureConfig tunes the touch gesture classifier.
// All pixel values are in CSS pixels as reported by the client surface.
type GestureConfig struct {
	// SwipeThresholdPx is the dead zone: a drag must exceed this on the
	// dominant axis before any intent locks.
	SwipeThresholdPx float64 `yaml:"swipe_threshold_px"`

	// DoubleTapDelayMs is how long a tap is remembered for double-tap.
	DoubleTapDelayMs int `yaml:"double_tap_delay_ms"`

	// DoubleTapMaxDriftPx is the max horizontal drift between the two taps.
	DoubleTapMaxDriftPx float64 `yaml:"double_tap_max_drift_px"`

	// DoubleTapSkipSeconds is the skip applied per double tap.
	DoubleTapSkipSeconds float64 `yaml:"double_tap_skip_seconds"`

	// SeekSpanSeconds is the seek travel for a full-width horizontal drag.
	SeekSpanSeconds float64 `yaml:"seek_span_seconds"`

	// FeedbackClearMs is how long one-shot gesture feedback stays visible.
	FeedbackClearMs int `yaml:"feedback_clear_ms"`
}

// ControlsConfig tunes the controls auto-hide behavior
type ControlsConfig struct {
	HideDelayMs int `yaml:"hide_delay_ms"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                "3002",
			MaxExternalClients:  4,
			BroadcastDebounceMs: 50,
		},
		MPD: MPDConfig{
			Host: "localhost",
			Port: 6600,
		},
		MediaDirs: []string{},
		Gestures: GestureConfig{
			SwipeThresholdPx:     30,
			DoubleTapDelayMs:     300,
			DoubleTapMaxDriftPx:  50,
			DoubleTapSkipSeconds: 10,
			SeekSpanSeconds:      90,
			FeedbackClearMs:      500,
		},
		Controls: ControlsConfig{
			HideDelayMs: 3000,
		},
	}
}

// LoadConfig loads configuration from file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DoubleTapDelay returns the double-tap window as a duration.
func (g GestureConfig) DoubleTapDelay() time.Duration {
	return time.Duration(g.DoubleTapDelayMs) * time.Millisecond
}

// FeedbackClear returns the feedback auto-clear delay as a duration.
func (g GestureConfig) FeedbackClear() time.Duration {
	return time.Duration(g.FeedbackClearMs) * time.Millisecond
}

// HideDelay returns the controls hide delay as a duration.
func (c ControlsConfig) HideDelay() time.Duration {
	return time.Duration(c.HideDelayMs) * time.Millisecond
}
