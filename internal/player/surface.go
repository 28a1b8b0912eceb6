package player

import "signage/internal/models"

type SurfaceEventKind int

const (
	// EventReady fires when the surface has loaded the media and started
	// rendering it.
	EventReady SurfaceEventKind = iota
	// EventEnded fires when a video reaches its natural end. Images never
	// emit it; they are advanced by the session's timer.
	EventEnded
	// EventError fires when media fails to load or decode.
	EventError
)

func (k SurfaceEventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	}
	return "unknown"
}

// SurfaceEvent is a signal from the rendering surface about the item it was
// asked to play.
type SurfaceEvent struct {
	Kind SurfaceEventKind
	Item models.MediaItem
	Err  error
}

// Surface is the rendering target a session drives. Play begins rendering
// the item and returns immediately; readiness, completion and failure arrive
// asynchronously on Events. Stop clears whatever is currently showing.
type Surface interface {
	Play(item models.MediaItem) error
	Stop()
	Events() <-chan SurfaceEvent
}
