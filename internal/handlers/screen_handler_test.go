package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"signage/internal/models"
)

func TestHeartbeatStampsScreen(t *testing.T) {
	screens := &mockScreenRepo{byID: map[string]*models.Screen{
		"screen-1": {ID: "screen-1", OwnerID: "owner-1"},
	}}
	h := NewScreenHandler(screens, time.Minute)
	r := chi.NewRouter()
	r.Post("/screens/{id}/heartbeat", h.Heartbeat)

	req := httptest.NewRequest(http.MethodPost, "/screens/screen-1/heartbeat", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d (%s)", w.Code, w.Body.String())
	}
	s := screens.byID["screen-1"]
	if !s.IsOnline || s.LastHeartbeat == nil {
		t.Fatalf("heartbeat must stamp is_online and last_heartbeat, got %+v", s)
	}
}

func TestHeartbeatUnknownScreenIs404(t *testing.T) {
	screens := &mockScreenRepo{byID: map[string]*models.Screen{}}
	h := NewScreenHandler(screens, time.Minute)
	r := chi.NewRouter()
	r.Post("/screens/{id}/heartbeat", h.Heartbeat)

	req := httptest.NewRequest(http.MethodPost, "/screens/ghost/heartbeat", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestFleetHealthClassifiesOffline(t *testing.T) {
	fresh := time.Now().UTC().Add(-30 * time.Second)
	stale := time.Now().UTC().Add(-10 * time.Minute)
	screens := &mockScreenRepo{byID: map[string]*models.Screen{
		"fresh": {ID: "fresh", LastHeartbeat: &fresh},
		"stale": {ID: "stale", LastHeartbeat: &stale},
	}}
	h := NewScreenHandler(screens, time.Minute)
	r := chi.NewRouter()
	r.Get("/fleet/health", h.FleetHealth)

	req := httptest.NewRequest(http.MethodGet, "/fleet/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		Screens []models.ScreenHealth `json:"screens"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	byID := map[string]bool{}
	for _, s := range resp.Screens {
		byID[s.ID] = s.Online
	}
	if !byID["fresh"] {
		t.Fatal("screen with a 30s-old heartbeat should be online at a 1m interval")
	}
	if byID["stale"] {
		t.Fatal("screen silent for 10m should be offline at a 1m interval")
	}
}
