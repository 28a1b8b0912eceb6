package interfaces

import (
	"context"
	"errors"
	"time"

	"signage/internal/models"
)

// ErrApprovalDecided is returned when a decision is attempted on a record
// that already left the pending state. The record is never mutated.
var ErrApprovalDecided = errors.New("approval already decided")

// ApprovalRepository defines the interface for approval data operations.
// Propose is an upsert: at most one record exists per (screen, creative)
// pair and re-proposing returns the existing record unchanged.
type ApprovalRepository interface {
	Propose(ctx context.Context, screenID, creativeID string) (*models.Approval, error)
	GetByID(ctx context.Context, id string) (*models.Approval, error)
	GetForPair(ctx context.Context, screenID, creativeID string) (*models.Approval, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.ApprovalWithContext, error)
	Decide(ctx context.Context, id string, status models.ApprovalStatus, decidedAt time.Time) (*models.Approval, error)
}
