package playback_test

import (
	"testing"

	"github.com/gsilva87/swipedeck/internal/domain/playback"
)

func TestNewStateDefaults(t *testing.T) {
	snap := playback.NewState().Snapshot()

	if snap.Playing {
		t.Error("expected playing to be false")
	}
	if snap.Volume != 1.0 {
		t.Errorf("expected volume 1.0, got %v", snap.Volume)
	}
	if snap.Brightness != 1.0 {
		t.Errorf("expected brightness 1.0, got %v", snap.Brightness)
	}
	if snap.Rate != 1.0 {
		t.Errorf("expected rate 1.0, got %v", snap.Rate)
	}
	if snap.ZoomMode != "fit" {
		t.Errorf("expected zoom mode fit, got %q", snap.ZoomMode)
	}
	if snap.Scale != 1.0 {
		t.Errorf("expected scale 1.0, got %v", snap.Scale)
	}
}

func TestRateAllowed(t *testing.T) {
	tests := []struct {
		rate    float64
		allowed bool
	}{
		{0.5, true},
		{1.0, true},
		{1.25, true},
		{1.5, true},
		{2.0, true},
		{0.75, false},
		{3.0, false},
		{0, false},
		{-1, false},
	}

	for _, tt := range tests {
		if got := playback.RateAllowed(tt.rate); got != tt.allowed {
			t.Errorf("RateAllowed(%v) = %v, want %v", tt.rate, got, tt.allowed)
		}
	}
}

func TestZoomModeString(t *testing.T) {
	tests := []struct {
		mode playback.ZoomMode
		want string
	}{
		{playback.ZoomFit, "fit"},
		{playback.ZoomFill, "fill"},
		{playback.ZoomStretch, "stretch"},
		{playback.ZoomFree, "free"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("ZoomMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestPresentationParams(t *testing.T) {
	tests := []struct {
		name      string
		mode      playback.ZoomMode
		scale     float64
		wantFit   string
		wantScale float64
	}{
		{"fit ignores scale", playback.ZoomFit, 2.0, "contain", 1.0},
		{"fill ignores scale", playback.ZoomFill, 2.0, "cover", 1.0},
		{"stretch ignores scale", playback.ZoomStretch, 2.0, "fill", 1.0},
		{"free passes scale", playback.ZoomFree, 1.5, "contain", 1.5},
		{"free clamps scale high", playback.ZoomFree, 10.0, "contain", 3.0},
		{"free clamps scale low", playback.ZoomFree, 0.1, "contain", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.mode.PresentationParams(tt.scale)
			if got.ObjectFit != tt.wantFit {
				t.Errorf("expected object fit %q, got %q", tt.wantFit, got.ObjectFit)
			}
			if got.Scale != tt.wantScale {
				t.Errorf("expected scale %v, got %v", tt.wantScale, got.Scale)
			}
		})
	}
}
