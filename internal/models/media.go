package models

import "time"

// MediaItem is one entry of a resolved playlist, ready for playback.
// Images display for Duration; videos play to their own end and Duration
// only sizes the stall watchdog.
type MediaItem struct {
	ID       string        `json:"id"`
	Type     CreativeType  `json:"type"`
	URL      string        `json:"url"`
	Duration time.Duration `json:"duration"`
}

// Playlist is the ordered sequence of eligible media computed for a screen
// at a point in time. Empty is a valid state, not an error.
type Playlist struct {
	ScreenID   string      `json:"screen_id"`
	Items      []MediaItem `json:"items"`
	ResolvedAt time.Time   `json:"resolved_at"`
}
