package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"signage/internal/models"
)

type fakeSource struct {
	mu    sync.Mutex
	items []models.MediaItem
	err   error
	calls int
}

func (f *fakeSource) Playlist(ctx context.Context, screenID string) ([]models.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.MediaItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeSource) set(items []models.MediaItem, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
	f.err = err
}

type fakeSurface struct {
	mu      sync.Mutex
	events  chan SurfaceEvent
	played  map[string]int
	order   []string
	stops   int
	playErr map[string]error         // Play fails synchronously
	autoEnd map[string]time.Duration // videos that end on their own
	failOn  map[string]bool          // emits an async render error
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		events:  make(chan SurfaceEvent, 16),
		played:  map[string]int{},
		playErr: map[string]error{},
		autoEnd: map[string]time.Duration{},
		failOn:  map[string]bool{},
	}
}

func (f *fakeSurface) Play(item models.MediaItem) error {
	f.mu.Lock()
	f.played[item.ID]++
	f.order = append(f.order, item.ID)
	err := f.playErr[item.ID]
	f.mu.Unlock()

	if err != nil {
		return err
	}
	f.events <- SurfaceEvent{Kind: EventReady, Item: item}
	if f.failOn[item.ID] {
		f.events <- SurfaceEvent{Kind: EventError, Item: item, Err: errors.New("decode failed")}
		return nil
	}
	if d, ok := f.autoEnd[item.ID]; ok && item.Type == models.CreativeTypeVideo {
		go func() {
			time.Sleep(d)
			f.events <- SurfaceEvent{Kind: EventEnded, Item: item}
		}()
	}
	return nil
}

func (f *fakeSurface) Stop() {
	f.mu.Lock()
	f.stops++
	f.mu.Unlock()
}

func (f *fakeSurface) Events() <-chan SurfaceEvent { return f.events }

func (f *fakeSurface) playCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.played[id]
}

func image(id string, d time.Duration) models.MediaItem {
	return models.MediaItem{ID: id, Type: models.CreativeTypeImage, URL: "https://cdn.example.com/" + id, Duration: d}
}

func video(id string, d time.Duration) models.MediaItem {
	return models.MediaItem{ID: id, Type: models.CreativeTypeVideo, URL: "https://cdn.example.com/" + id, Duration: d}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func startSession(t *testing.T, cfg Config, source Source, surface Surface) (*Session, context.CancelFunc) {
	t.Helper()
	if cfg.ScreenID == "" {
		cfg.ScreenID = "screen-1"
	}
	s := NewSession(cfg, source, surface)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("session did not stop after cancel")
		}
	})
	return s, cancel
}

func TestImageAdvancesOnTimer(t *testing.T) {
	source := &fakeSource{items: []models.MediaItem{
		image("a", 30*time.Millisecond),
		image("b", 30*time.Millisecond),
	}}
	surface := newFakeSurface()
	s, _ := startSession(t, Config{RefreshInterval: time.Hour}, source, surface)

	waitFor(t, time.Second, func() bool {
		return surface.playCount("b") >= 1
	}, "image never advanced to the next item")
	if got := s.State(); got != StatePlaying {
		t.Fatalf("expected playing, got %s", got)
	}
	// The rotation wraps back to the first item.
	waitFor(t, time.Second, func() bool {
		return surface.playCount("a") >= 2
	}, "rotation never wrapped around")
}

func TestVideoAdvancesOnEndedSignal(t *testing.T) {
	source := &fakeSource{items: []models.MediaItem{
		video("vid", time.Second), // watchdog would be 2s
	}}
	surface := newFakeSurface()
	surface.autoEnd["vid"] = 20 * time.Millisecond
	startSession(t, Config{RefreshInterval: time.Hour}, source, surface)

	// Replays well before the 2s watchdog prove the ended signal, not a
	// timer, drives the advance.
	waitFor(t, time.Second, func() bool {
		return surface.playCount("vid") >= 3
	}, "video did not advance on ended signal")
}

func TestVideoWatchdogForcesAdvance(t *testing.T) {
	source := &fakeSource{items: []models.MediaItem{
		image("img", 50*time.Millisecond),
		video("stalled", 50*time.Millisecond), // watchdog fires at 100ms
	}}
	surface := newFakeSurface()
	// "stalled" never emits ended.
	s, _ := startSession(t, Config{RefreshInterval: time.Hour}, source, surface)

	waitFor(t, time.Second, func() bool {
		return surface.playCount("stalled") >= 1
	}, "never reached the video")
	waitFor(t, time.Second, func() bool {
		return surface.playCount("img") >= 2
	}, "watchdog never forced the rotation onward")
	if got := s.State(); got != StatePlaying {
		t.Fatalf("expected playing after forced advance, got %s", got)
	}
}

func TestRenderFailureSkipsToNextItem(t *testing.T) {
	source := &fakeSource{items: []models.MediaItem{
		image("broken", 30*time.Millisecond),
		image("ok", 30*time.Millisecond),
	}}
	surface := newFakeSurface()
	surface.playErr["broken"] = errors.New("fetch failed")
	s, _ := startSession(t, Config{RefreshInterval: time.Hour}, source, surface)

	waitFor(t, time.Second, func() bool {
		return surface.playCount("ok") >= 2
	}, "player did not keep rotating past the broken item")
	if got := s.State(); got != StateError {
		// The successful item resets the failure count each pass.
		if got != StatePlaying {
			t.Fatalf("expected playing, got %s", got)
		}
	} else {
		t.Fatal("one working item should prevent the error state")
	}
}

func TestFullPassOfFailuresDegradesToError(t *testing.T) {
	source := &fakeSource{items: []models.MediaItem{
		image("a", 30*time.Millisecond),
		image("b", 30*time.Millisecond),
	}}
	surface := newFakeSurface()
	surface.playErr["a"] = errors.New("fetch failed")
	surface.playErr["b"] = errors.New("fetch failed")
	s, _ := startSession(t, Config{RefreshInterval: time.Hour}, source, surface)

	waitFor(t, time.Second, func() bool {
		return s.State() == StateError
	}, "player never degraded to the error state")

	surface.mu.Lock()
	plays := len(surface.order)
	surface.mu.Unlock()
	if plays > 2 {
		t.Fatalf("expected the skip loop to stop after one full pass, saw %d plays", plays)
	}
}

func TestEmptyResolutionIsNotAnError(t *testing.T) {
	source := &fakeSource{}
	surface := newFakeSurface()
	s, _ := startSession(t, Config{RefreshInterval: 30 * time.Millisecond}, source, surface)

	waitFor(t, time.Second, func() bool {
		return s.State() == StateEmpty
	}, "empty playlist should produce the empty state")

	// Newly approved content is picked up on a later resolution.
	source.set([]models.MediaItem{image("fresh", 50 * time.Millisecond)}, nil)
	waitFor(t, time.Second, func() bool {
		return s.State() == StatePlaying
	}, "player never recovered from empty once content appeared")
}

func TestResolutionErrorAtStartupRetries(t *testing.T) {
	source := &fakeSource{err: errors.New("store unreachable")}
	surface := newFakeSurface()
	s, _ := startSession(t, Config{RefreshInterval: 30 * time.Millisecond}, source, surface)

	if got := s.State(); got != StateLoading {
		t.Fatalf("expected loading while the store is down, got %s", got)
	}

	source.set([]models.MediaItem{image("a", 50 * time.Millisecond)}, nil)
	waitFor(t, time.Second, func() bool {
		return s.State() == StatePlaying
	}, "player never recovered once the store came back")
}

func TestRefreshAppliesAtBoundaryAndPreservesPosition(t *testing.T) {
	items := []models.MediaItem{
		image("a", time.Hour),
		image("b", time.Hour),
		image("c", time.Hour),
	}
	source := &fakeSource{items: items}
	s := NewSession(Config{ScreenID: "screen-1", RefreshInterval: time.Hour}, source, newFakeSurface())

	s.resolveInitial(context.Background())
	s.mu.Lock()
	s.index = 1 // "b" is on screen
	s.mu.Unlock()

	// A refresh drops "a" while "b" plays; nothing changes until the
	// boundary, then the rotation continues after "b".
	source.set([]models.MediaItem{image("b", time.Hour), image("c", time.Hour)}, nil)
	s.refresh(context.Background())
	if got := s.Index(); got != 1 {
		t.Fatalf("refresh must not move the rotation mid-item, index went to %d", got)
	}

	s.advance()
	if got := s.Index(); got != 1 { // (pos of b = 0) + 1
		t.Fatalf("expected rotation to continue after the surviving item, got index %d", got)
	}

	// When the current item is gone from the new playlist, restart at 0.
	source.set([]models.MediaItem{image("x", time.Hour), image("y", time.Hour)}, nil)
	s.refresh(context.Background())
	s.advance()
	if got := s.Index(); got != 0 {
		t.Fatalf("expected reset to index 0 when the current item vanished, got %d", got)
	}
}

func TestRefreshErrorKeepsCurrentPlaylist(t *testing.T) {
	source := &fakeSource{items: []models.MediaItem{image("a", time.Hour), image("b", time.Hour)}}
	s := NewSession(Config{ScreenID: "screen-1"}, source, newFakeSurface())

	s.resolveInitial(context.Background())
	source.set(nil, errors.New("store unreachable"))
	s.refresh(context.Background())

	s.advance()
	if got := s.Index(); got != 1 {
		t.Fatalf("expected current playlist to keep rotating, got index %d", got)
	}
	if got := s.State(); got != StatePlaying {
		t.Fatalf("expected playing through a failed refresh, got %s", got)
	}
}

func TestRefreshToEmptyEntersEmptyAtBoundary(t *testing.T) {
	source := &fakeSource{items: []models.MediaItem{image("a", time.Hour)}}
	surface := newFakeSurface()
	s := NewSession(Config{ScreenID: "screen-1"}, source, surface)

	s.resolveInitial(context.Background())
	source.set([]models.MediaItem{}, nil)
	s.refresh(context.Background())

	s.advance()
	if got := s.State(); got != StateEmpty {
		t.Fatalf("expected empty after all content expired, got %s", got)
	}
}

func TestTransitionObserver(t *testing.T) {
	var mu sync.Mutex
	var seen []State
	source := &fakeSource{items: []models.MediaItem{image("a", 20 * time.Millisecond)}}
	cfg := Config{
		RefreshInterval: time.Hour,
		OnTransition: func(from, to State, index int) {
			mu.Lock()
			seen = append(seen, to)
			mu.Unlock()
		},
	}
	startSession(t, cfg, source, newFakeSurface())

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) >= 1 && seen[0] == StatePlaying
	}, "loading->playing transition never observed")
}
