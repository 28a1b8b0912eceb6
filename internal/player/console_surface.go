package player

import (
	"log"
	"sync"
	"time"

	"signage/internal/models"
)

// ConsoleSurface is a headless rendering target: it logs what a real panel
// would show and simulates video completion with a timer. Useful for the
// reference device binary and for soak-testing sessions without hardware.
type ConsoleSurface struct {
	logger *log.Logger
	events chan SurfaceEvent

	mu    sync.Mutex
	timer *time.Timer
}

func NewConsoleSurface(logger *log.Logger) *ConsoleSurface {
	if logger == nil {
		logger = log.Default()
	}
	return &ConsoleSurface{
		logger: logger,
		events: make(chan SurfaceEvent, 8),
	}
}

func (s *ConsoleSurface) Play(item models.MediaItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	s.logger.Printf("showing %s %s (%s) %s", item.Type, item.ID, item.Duration, item.URL)
	s.emit(SurfaceEvent{Kind: EventReady, Item: item})

	// A real pipeline decodes to the end of the stream; here the item's
	// intrinsic duration stands in for it.
	if item.Type == models.CreativeTypeVideo && item.Duration > 0 {
		it := item
		s.timer = time.AfterFunc(item.Duration, func() {
			s.emit(SurfaceEvent{Kind: EventEnded, Item: it})
		})
	}
	return nil
}

func (s *ConsoleSurface) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.logger.Println("playback stopped")
}

func (s *ConsoleSurface) Events() <-chan SurfaceEvent {
	return s.events
}

func (s *ConsoleSurface) emit(ev SurfaceEvent) {
	select {
	case s.events <- ev:
	default:
		// A stalled consumer must not block the timer goroutine.
	}
}
