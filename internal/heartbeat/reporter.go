// Package heartbeat announces device liveness. Each screen session runs one
// Reporter; it is independent of playback and keeps ticking whatever state
// the player is in. Offline detection is the reader's job: a screen whose
// stored heartbeat is older than twice the interval is considered offline by
// whoever inspects the fleet, never by the device.
package heartbeat

import (
	"context"
	"log"
	"time"
)

// DefaultInterval is how often a device announces itself.
const DefaultInterval = 60 * time.Second

// OfflineThreshold returns the reader-side staleness bound for a given
// reporting interval.
func OfflineThreshold(interval time.Duration) time.Duration {
	return 2 * interval
}

// Sender delivers one liveness update for a screen.
type Sender interface {
	SendHeartbeat(ctx context.Context, screenID string, at time.Time) error
}

type Reporter struct {
	screenID string
	interval time.Duration
	sender   Sender
	now      func() time.Time
}

func NewReporter(screenID string, sender Sender, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{
		screenID: screenID,
		interval: interval,
		sender:   sender,
		now:      time.Now,
	}
}

// Run sends one heartbeat immediately, then one per interval until the
// context is cancelled. A failed send is logged and simply waits for the
// next tick; there is no immediate retry and no backoff.
func (r *Reporter) Run(ctx context.Context) error {
	r.send(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.send(ctx)
		}
	}
}

func (r *Reporter) send(ctx context.Context) {
	if err := r.sender.SendHeartbeat(ctx, r.screenID, r.now().UTC()); err != nil {
		log.Printf("heartbeat %s: send failed, retrying on next tick: %v", r.screenID, err)
	}
}
