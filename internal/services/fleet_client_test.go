package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"signage/internal/models"
)

func newFleetServer(t *testing.T, logins *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(logins, 1)
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "device@example.com" || req.Password != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(models.LoginResponse{AccessToken: "tok-123", ExpiresIn: 3600})
	})
	mux.HandleFunc("/api/v1/screens/screen-1/playlist", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(models.Playlist{
			ScreenID: "screen-1",
			Items: []models.MediaItem{
				{ID: "c1", Type: models.CreativeTypeImage, URL: "https://cdn.example.com/c1.jpg", Duration: 10 * time.Second},
			},
			ResolvedAt: time.Now().UTC(),
		})
	})
	mux.HandleFunc("/api/v1/screens/screen-1/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["at"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFleetClientPlaylist(t *testing.T) {
	var logins int32
	srv := newFleetServer(t, &logins)

	c := NewFleetClient(srv.URL, "device@example.com", "hunter22")
	items, err := c.Playlist(context.Background(), "screen-1")
	if err != nil {
		t.Fatalf("Playlist: %v", err)
	}
	if len(items) != 1 || items[0].ID != "c1" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestFleetClientReusesToken(t *testing.T) {
	var logins int32
	srv := newFleetServer(t, &logins)

	c := NewFleetClient(srv.URL, "device@example.com", "hunter22")
	ctx := context.Background()
	if _, err := c.Playlist(ctx, "screen-1"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if err := c.SendHeartbeat(ctx, "screen-1", time.Now().UTC()); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	if got := atomic.LoadInt32(&logins); got != 1 {
		t.Fatalf("expected a single login for both calls, got %d", got)
	}
}

func TestFleetClientBadCredentials(t *testing.T) {
	var logins int32
	srv := newFleetServer(t, &logins)

	c := NewFleetClient(srv.URL, "device@example.com", "wrong")
	if _, err := c.Playlist(context.Background(), "screen-1"); err == nil {
		t.Fatal("expected login failure to surface")
	}
}
