// Package player runs the autonomous per-screen playback loop: it resolves
// a playlist, cycles through it (timer-driven for images, event-driven for
// video), skips broken media, and periodically re-resolves so newly approved
// or expired content takes effect without a restart. One Session per screen;
// sessions share nothing.
package player

import (
	"context"
	"log"
	"sync"
	"time"

	"signage/internal/models"
)

type State int

const (
	// StateLoading covers startup and any later point where no playlist has
	// ever resolved successfully.
	StateLoading State = iota
	// StatePlaying means an item is on the surface.
	StatePlaying
	// StateEmpty means resolution succeeded but no creative is eligible.
	StateEmpty
	// StateError means a full pass over the playlist produced zero
	// successful renders. The session keeps re-resolving to recover.
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Source produces the playlist for a screen. Implemented by the fleet API
// client on devices and by a local resolver adapter in tests and tools.
type Source interface {
	Playlist(ctx context.Context, screenID string) ([]models.MediaItem, error)
}

const (
	DefaultRefreshInterval = 5 * time.Minute
	// DefaultWatchdogCeiling bounds how long a video with no known duration
	// may hold the screen without signalling completion.
	DefaultWatchdogCeiling = 60 * time.Second
)

type Config struct {
	ScreenID        string
	RefreshInterval time.Duration
	WatchdogCeiling time.Duration
	// OnTransition, when set, observes every state change.
	OnTransition func(from, to State, index int)
}

type Session struct {
	cfg     Config
	source  Source
	surface Surface

	mu       sync.Mutex
	state    State
	index    int
	playlist []models.MediaItem
	pending  []models.MediaItem // applied at the next transition boundary
	failures int                // consecutive renders with no success
}

func NewSession(cfg Config, source Source, surface Surface) *Session {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.WatchdogCeiling <= 0 {
		cfg.WatchdogCeiling = DefaultWatchdogCeiling
	}
	return &Session{
		cfg:     cfg,
		source:  source,
		surface: surface,
		state:   StateLoading,
	}
}

// State returns the current machine state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Index returns the position of the item currently playing. Meaningful only
// in StatePlaying.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Session) transition(to State) {
	s.mu.Lock()
	from := s.state
	s.state = to
	index := s.index
	s.mu.Unlock()

	if from == to {
		return
	}
	log.Printf("player %s: %s -> %s (index %d)", s.cfg.ScreenID, from, to, index)
	if s.cfg.OnTransition != nil {
		s.cfg.OnTransition(from, to, index)
	}
}

// Run drives the session until the context is cancelled. It owns all timers;
// cancellation stops the surface and releases every pending timer.
func (s *Session) Run(ctx context.Context) error {
	refresh := time.NewTicker(s.cfg.RefreshInterval)
	defer refresh.Stop()

	s.resolveInitial(ctx)

	for {
		if ctx.Err() != nil {
			s.surface.Stop()
			return ctx.Err()
		}

		if s.State() != StatePlaying {
			// Loading, Empty or Error: idle until the next re-resolution.
			select {
			case <-ctx.Done():
				s.surface.Stop()
				return ctx.Err()
			case <-refresh.C:
				s.resolveInitial(ctx)
			}
			continue
		}

		s.mu.Lock()
		item := s.playlist[s.index]
		s.mu.Unlock()

		if err := s.surface.Play(item); err != nil {
			log.Printf("player %s: play %s failed: %v", s.cfg.ScreenID, item.ID, err)
			s.recordFailure()
			s.advance()
			continue
		}

		s.waitForItem(ctx, refresh.C, item)
	}
}

// waitForItem blocks until the current item finishes, fails, or the session
// is torn down. Images finish on a single-shot timer; videos finish on the
// surface's ended signal, bounded by a stall watchdog.
func (s *Session) waitForItem(ctx context.Context, refresh <-chan time.Time, item models.MediaItem) {
	timer := time.NewTimer(s.deadlineFor(item))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-refresh:
			// Re-resolution never interrupts the item on screen; the fresh
			// playlist is stashed and applied at the next boundary.
			s.refresh(ctx)

		case ev := <-s.surface.Events():
			if ev.Item.ID != item.ID {
				// Stale signal from a previous item.
				continue
			}
			switch ev.Kind {
			case EventReady:
				s.clearFailures()
			case EventEnded:
				if item.Type == models.CreativeTypeVideo {
					s.clearFailures()
					s.advance()
					return
				}
			case EventError:
				log.Printf("player %s: render error on %s: %v", s.cfg.ScreenID, item.ID, ev.Err)
				s.recordFailure()
				s.advance()
				return
			}

		case <-timer.C:
			if item.Type == models.CreativeTypeImage {
				// Normal image rotation.
				s.clearFailures()
			} else {
				// The video never signalled completion; force the rotation
				// onward rather than letting one item stall the loop.
				log.Printf("player %s: watchdog fired on video %s after %v", s.cfg.ScreenID, item.ID, s.deadlineFor(item))
				s.recordFailure()
			}
			s.advance()
			return
		}
	}
}

// deadlineFor returns the single-shot timer for an item: the display
// duration for images, twice the expected duration (or the configured
// ceiling when unknown) for videos.
func (s *Session) deadlineFor(item models.MediaItem) time.Duration {
	if item.Type == models.CreativeTypeImage {
		return item.Duration
	}
	if item.Duration > 0 {
		return 2 * item.Duration
	}
	return s.cfg.WatchdogCeiling
}

// resolveInitial is the Loading-path resolution: on success it enters
// Playing or Empty; on failure it stays put and the next tick retries.
func (s *Session) resolveInitial(ctx context.Context) {
	items, err := s.source.Playlist(ctx, s.cfg.ScreenID)
	if err != nil {
		log.Printf("player %s: playlist resolution failed: %v", s.cfg.ScreenID, err)
		return
	}

	s.mu.Lock()
	s.playlist = items
	s.pending = nil
	s.index = 0
	s.failures = 0
	s.mu.Unlock()

	if len(items) == 0 {
		s.surface.Stop()
		s.transition(StateEmpty)
		return
	}
	s.transition(StatePlaying)
}

// refresh re-resolves mid-playback. Errors keep the current playlist
// playing; success stashes the new one for the next boundary.
func (s *Session) refresh(ctx context.Context) {
	items, err := s.source.Playlist(ctx, s.cfg.ScreenID)
	if err != nil {
		log.Printf("player %s: playlist refresh failed, keeping current rotation: %v", s.cfg.ScreenID, err)
		return
	}

	s.mu.Lock()
	s.pending = items
	if s.pending == nil {
		s.pending = []models.MediaItem{}
	}
	s.mu.Unlock()
}

func (s *Session) recordFailure() {
	s.mu.Lock()
	s.failures++
	exhausted := len(s.playlist) > 0 && s.failures >= len(s.playlist)
	s.mu.Unlock()

	if exhausted {
		// One full pass, zero successful renders: degrade to the error
		// display instead of spinning through broken media.
		s.surface.Stop()
		s.transition(StateError)
	}
}

func (s *Session) clearFailures() {
	s.mu.Lock()
	s.failures = 0
	s.mu.Unlock()
}

// advance moves to the next item, first applying any playlist stashed by a
// mid-item refresh. The new rotation continues after the item that was just
// on screen when that item survived the refresh, and restarts at the top
// when it did not.
func (s *Session) advance() {
	s.mu.Lock()

	if s.state != StatePlaying {
		s.mu.Unlock()
		return
	}

	currentID := ""
	if s.index < len(s.playlist) {
		currentID = s.playlist[s.index].ID
	}

	if s.pending != nil {
		newList := s.pending
		s.pending = nil
		s.playlist = newList

		if len(newList) == 0 {
			s.mu.Unlock()
			s.surface.Stop()
			s.transition(StateEmpty)
			return
		}

		pos := -1
		for i, item := range newList {
			if item.ID == currentID {
				pos = i
				break
			}
		}
		if pos >= 0 {
			s.index = (pos + 1) % len(newList)
		} else {
			s.index = 0
		}
		s.failures = 0
		s.mu.Unlock()
		return
	}

	s.index = (s.index + 1) % len(s.playlist)
	s.mu.Unlock()
}
