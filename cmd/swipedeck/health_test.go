package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gsilva87/swipedeck/internal/infra/mpdtransport"
)

func TestHealthHandlerReportsMPDDown(t *testing.T) {
	// 16601 is an unlikely port, so the ping fails without a real MPD.
	handler := healthHandler(mpdtransport.New("localhost", 16601, ""))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want %q", got, "application/json")
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("health response is not valid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
	if body["mpd"] != "disconnected" {
		t.Errorf("mpd field = %q, want %q", body["mpd"], "disconnected")
	}
}
