// Package playlist derives the ordered sequence of playable media for a
// screen from the active campaigns that target it, gated by the screen
// owner's approvals. Resolution is read-only and idempotent: the device
// player re-runs it periodically to pick up newly approved or expired
// content without restarting.
package playlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"signage/internal/interfaces"
	"signage/internal/models"
)

// DefaultImageDuration is how long an image holds the screen when no
// explicit duration is configured.
const DefaultImageDuration = 10 * time.Second

type Resolver struct {
	screens   interfaces.ScreenRepository
	campaigns interfaces.CampaignRepository
	creatives interfaces.CreativeRepository
	approvals interfaces.ApprovalRepository

	imageDuration time.Duration
	now           func() time.Time
}

type Option func(*Resolver)

// WithImageDuration overrides the fixed display duration applied to images.
func WithImageDuration(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.imageDuration = d
		}
	}
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

func NewResolver(
	screens interfaces.ScreenRepository,
	campaigns interfaces.CampaignRepository,
	creatives interfaces.CreativeRepository,
	approvals interfaces.ApprovalRepository,
	opts ...Option,
) *Resolver {
	r := &Resolver{
		screens:       screens,
		campaigns:     campaigns,
		creatives:     creatives,
		approvals:     approvals,
		imageDuration: DefaultImageDuration,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve computes the playlist for a screen. A creative is included iff
// some active campaign bound to it targets the screen right now (date range,
// screen type and city all satisfied or wildcarded) and the screen's owner
// approved it for this screen. An empty playlist is a valid result.
func (r *Resolver) Resolve(ctx context.Context, screenID string) (*models.Playlist, error) {
	now := r.now().UTC()

	screen, err := r.screens.GetByID(ctx, screenID)
	if err != nil {
		return nil, fmt.Errorf("load screen %s: %w", screenID, err)
	}

	campaigns, err := r.campaigns.List(ctx, interfaces.CampaignFilter{
		Status: string(models.CampaignStatusActive),
	})
	if err != nil {
		return nil, fmt.Errorf("list active campaigns: %w", err)
	}

	// Stable rotation order: campaign creation time, ties broken by
	// creative id, so two resolutions of unchanged state agree.
	sort.SliceStable(campaigns, func(i, j int) bool {
		if campaigns[i].CreatedAt.Equal(campaigns[j].CreatedAt) {
			return campaigns[i].CreativeID < campaigns[j].CreativeID
		}
		return campaigns[i].CreatedAt.Before(campaigns[j].CreatedAt)
	})

	var items []models.MediaItem
	seen := make(map[string]bool)

	for _, campaign := range campaigns {
		if !campaign.RunsAt(now) || !campaign.Targets(screen) {
			continue
		}
		if seen[campaign.CreativeID] {
			continue
		}

		creative, err := r.creatives.GetByID(ctx, campaign.CreativeID)
		if err != nil {
			return nil, fmt.Errorf("load creative %s: %w", campaign.CreativeID, err)
		}

		approved, err := r.approvedFor(ctx, screen.ID, creative.ID)
		if err != nil {
			return nil, err
		}
		if !approved {
			continue
		}

		seen[creative.ID] = true
		items = append(items, r.mediaItem(creative))
	}

	return &models.Playlist{
		ScreenID:   screen.ID,
		Items:      items,
		ResolvedAt: now,
	}, nil
}

func (r *Resolver) approvedFor(ctx context.Context, screenID, creativeID string) (bool, error) {
	approval, err := r.approvals.GetForPair(ctx, screenID, creativeID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("load approval for (%s, %s): %w", screenID, creativeID, err)
	}
	return approval.Status == models.ApprovalStatusApproved, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func (r *Resolver) mediaItem(creative *models.Creative) models.MediaItem {
	duration := r.imageDuration
	if creative.Type == models.CreativeTypeVideo {
		// Videos are self-timed; the duration only sizes the player's
		// stall watchdog.
		duration = time.Duration(creative.DurationSeconds * float64(time.Second))
	}
	return models.MediaItem{
		ID:       creative.ID,
		Type:     creative.Type,
		URL:      creative.URL,
		Duration: duration,
	}
}
