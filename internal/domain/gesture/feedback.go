package gesture

import (
	"fmt"
	"math"
)

// Intent is the single gesture category an interaction has committed to.
type Intent int

const (
	// IntentNone means the interaction has not locked a direction yet.
	IntentNone Intent = iota
	// IntentSeek is a horizontal drag or double-tap skip.
	IntentSeek
	// IntentVolume is a vertical drag on the right half of the surface.
	IntentVolume
	// IntentBrightness is a vertical drag on the left half of the surface.
	IntentBrightness
	// IntentZoom is a two-finger pinch.
	IntentZoom
)

// String returns the intent name.
func (i Intent) String() string {
	switch i {
	case IntentSeek:
		return "seek"
	case IntentVolume:
		return "volume"
	case IntentBrightness:
		return "brightness"
	case IntentZoom:
		return "zoom"
	default:
		return "none"
	}
}

// Feedback is the transient overlay state derived from the active gesture.
// The rendering layer displays it; the classifier owns nothing beyond
// producing it. Active false clears the overlay.
type Feedback struct {
	Intent Intent
	Value  float64
	Label  string
	Active bool
}

// clearedFeedback is emitted when a session ends or a one-shot display
// expires.
func clearedFeedback() Feedback {
	return Feedback{Intent: IntentNone}
}

// seekLabel formats a signed seek delta, e.g. "+10s" or "-32s".
func seekLabel(deltaSeconds float64) string {
	rounded := int(math.Round(deltaSeconds))
	if rounded >= 0 {
		return fmt.Sprintf("+%ds", rounded)
	}
	return fmt.Sprintf("%ds", rounded)
}

// percentLabel formats a unit value as a percentage, e.g. "75%" or "120%".
func percentLabel(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}

// scaleLabel formats a zoom scale, e.g. "1.5x".
func scaleLabel(scale float64) string {
	return fmt.Sprintf("%.1fx", scale)
}
