package controls

import (
	"testing"
	"time"
)

func TestControlsVisibleByDefault(t *testing.T) {
	v := NewVisibility(50*time.Millisecond, nil)
	defer v.Stop()

	if !v.Visible() {
		t.Error("expected controls visible by default")
	}
}

func TestControlsHideWhilePlaying(t *testing.T) {
	v := NewVisibility(50*time.Millisecond, nil)
	defer v.Stop()

	v.SetPlaying(true)
	time.Sleep(100 * time.Millisecond)

	if v.Visible() {
		t.Error("expected controls hidden after inactivity while playing")
	}
}

func TestControlsStayVisibleWhilePaused(t *testing.T) {
	v := NewVisibility(50*time.Millisecond, nil)
	defer v.Stop()

	v.SetPlaying(false)
	time.Sleep(100 * time.Millisecond)

	if !v.Visible() {
		t.Error("expected controls to stay visible while paused")
	}
}

func TestInteractionResetsTimer(t *testing.T) {
	v := NewVisibility(60*time.Millisecond, nil)
	defer v.Stop()

	v.SetPlaying(true)

	// Keep interacting inside the window: controls must not hide.
	for i := 0; i < 4; i++ {
		time.Sleep(30 * time.Millisecond)
		v.Interact()
	}
	if !v.Visible() {
		t.Error("expected controls visible while interactions keep arriving")
	}

	time.Sleep(120 * time.Millisecond)
	if v.Visible() {
		t.Error("expected controls hidden once interactions stop")
	}
}

func TestGestureForcesHidden(t *testing.T) {
	v := NewVisibility(50*time.Millisecond, nil)
	defer v.Stop()

	v.GestureStarted()
	if v.Visible() {
		t.Error("expected controls hidden during gesture")
	}

	// Taps and interactions must not resurface controls mid-gesture.
	v.ToggleTap()
	v.Interact()
	if v.Visible() {
		t.Error("controls must stay hidden for the whole gesture")
	}

	v.GestureEnded()
	if !v.Visible() {
		t.Error("expected controls to reappear when the gesture ends")
	}
}

func TestGestureEndRestartsTimerFresh(t *testing.T) {
	v := NewVisibility(50*time.Millisecond, nil)
	defer v.Stop()

	v.SetPlaying(true)
	v.GestureStarted()
	v.GestureEnded()

	if !v.Visible() {
		t.Fatal("expected controls visible right after gesture end")
	}

	time.Sleep(100 * time.Millisecond)
	if v.Visible() {
		t.Error("expected fresh timer to hide controls after gesture end")
	}
}

func TestToggleTapFlipsImmediately(t *testing.T) {
	v := NewVisibility(time.Hour, nil)
	defer v.Stop()

	v.ToggleTap()
	if v.Visible() {
		t.Error("expected tap to hide visible controls immediately")
	}

	v.ToggleTap()
	if !v.Visible() {
		t.Error("expected tap to show hidden controls immediately")
	}
}

func TestStaleTimerFireIsIgnored(t *testing.T) {
	v := NewVisibility(40*time.Millisecond, nil)
	defer v.Stop()

	v.SetPlaying(true)
	// Pause before the hide timer fires: its generation is stale.
	time.Sleep(10 * time.Millisecond)
	v.SetPlaying(false)

	time.Sleep(80 * time.Millisecond)
	if !v.Visible() {
		t.Error("stale hide timer must not hide controls after pausing")
	}
}

func TestStopPreventsTransitions(t *testing.T) {
	var changes int
	v := NewVisibility(30*time.Millisecond, func(bool) { changes++ })

	v.SetPlaying(true)
	v.Stop()

	time.Sleep(60 * time.Millisecond)
	if changes != 0 {
		t.Errorf("expected no transitions after stop, got %d", changes)
	}
}

func TestOnChangeFiresOnTransitions(t *testing.T) {
	var events []bool
	v := NewVisibility(time.Hour, func(visible bool) { events = append(events, visible) })
	defer v.Stop()

	v.GestureStarted()
	v.GestureEnded()

	if len(events) != 2 || events[0] || !events[1] {
		t.Errorf("expected [false true] transitions, got %v", events)
	}
}
