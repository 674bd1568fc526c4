package socketio

import (
	"fmt"
	"testing"
)

func TestLimiterLocalSurfaceAlwaysAllowed(t *testing.T) {
	cl := NewConnectionLimiter(1)

	// The on-device surface reconnects freely, never counted against the cap
	for i := 0; i < 10; i++ {
		allowed, evicted := cl.TryAdd(fmt.Sprintf("local-%d", i), "127.0.0.1")
		if !allowed {
			t.Errorf("local surface %d should be allowed", i)
		}
		if evicted != "" {
			t.Errorf("local surface %d should not evict anyone, got %s", i, evicted)
		}
	}
}

func TestLimiterIPv6LoopbackIsLocal(t *testing.T) {
	cl := NewConnectionLimiter(1)

	allowed, evicted := cl.TryAdd("ipv6-local", "::1")
	if !allowed {
		t.Error("IPv6 loopback surface should be allowed")
	}
	if evicted != "" {
		t.Errorf("IPv6 loopback should not evict anyone, got %s", evicted)
	}
}

func TestLimiterRemoteSurfacesEvictOldest(t *testing.T) {
	cl := NewConnectionLimiter(1)

	// First remote surface (a phone on the LAN) fills the only slot
	allowed, evicted := cl.TryAdd("phone", "192.168.1.100")
	if !allowed || evicted != "" {
		t.Fatalf("first remote surface: allowed=%v evicted=%q", allowed, evicted)
	}

	// A second remote surface bumps the first
	allowed, evicted = cl.TryAdd("tablet", "192.168.1.101")
	if !allowed {
		t.Error("second remote surface should be allowed")
	}
	if evicted != "phone" {
		t.Errorf("expected eviction of phone, got %q", evicted)
	}

	// And a third bumps the second
	if _, evicted = cl.TryAdd("laptop", "192.168.1.102"); evicted != "tablet" {
		t.Errorf("expected eviction of tablet, got %q", evicted)
	}
}

func TestLimiterLocalSurfaceUnaffectedByFullCap(t *testing.T) {
	cl := NewConnectionLimiter(1)

	cl.TryAdd("phone", "192.168.1.100")

	allowed, evicted := cl.TryAdd("deck", "127.0.0.1")
	if !allowed {
		t.Error("local surface should be allowed with the remote cap full")
	}
	if evicted != "" {
		t.Errorf("local surface should not evict the remote one, got %s", evicted)
	}
}

func TestLimiterDisconnectFreesSlot(t *testing.T) {
	cl := NewConnectionLimiter(1)

	cl.TryAdd("phone", "192.168.1.100")
	cl.Remove("phone")

	allowed, evicted := cl.TryAdd("tablet", "192.168.1.101")
	if !allowed {
		t.Error("remote surface should be allowed after the slot was freed")
	}
	if evicted != "" {
		t.Errorf("should not evict after a disconnect freed the slot, got %s", evicted)
	}
}

func TestLimiterReconnectingSurfaceIsIdempotent(t *testing.T) {
	cl := NewConnectionLimiter(1)

	cl.TryAdd("phone", "192.168.1.100")

	// The same client id re-registering must not evict anything
	allowed, evicted := cl.TryAdd("phone", "192.168.1.100")
	if !allowed {
		t.Error("duplicate add should be allowed")
	}
	if evicted != "" {
		t.Errorf("duplicate add should not evict, got %s", evicted)
	}
}

func TestLimiterRemoveUnknownSurface(t *testing.T) {
	cl := NewConnectionLimiter(1)

	// Should not panic
	cl.Remove("never-connected")
}

func TestIsLocalIP(t *testing.T) {
	tests := []struct {
		ip    string
		local bool
	}{
		{"127.0.0.1", true},
		{"::1", true},
		{"192.168.1.100", false},
		{"10.0.0.1", false},
		{"0.0.0.0", false},
	}

	for _, tt := range tests {
		if got := isLocalIP(tt.ip); got != tt.local {
			t.Errorf("isLocalIP(%q) = %v, want %v", tt.ip, got, tt.local)
		}
	}
}
