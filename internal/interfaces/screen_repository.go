package interfaces

import (
	"context"
	"time"

	"signage/internal/models"
)

// ScreenFilter defines the filter criteria for listing screens
type ScreenFilter struct {
	OwnerID    string
	City       string
	ScreenType string
	Status     string
	Limit      int
	Offset     int
}

// ScreenRepository defines the interface for screen data operations.
// RecordHeartbeat touches only the liveness columns so it never races with
// owner-side CRUD on the same row.
type ScreenRepository interface {
	Create(ctx context.Context, screen *models.Screen) error
	GetByID(ctx context.Context, id string) (*models.Screen, error)
	List(ctx context.Context, filter ScreenFilter) ([]*models.Screen, error)
	Update(ctx context.Context, id string, screen *models.Screen) error
	Delete(ctx context.Context, id string) error
	RecordHeartbeat(ctx context.Context, id string, at time.Time) error
}
