package interfaces

import (
	"context"

	"signage/internal/models"
)

// CreativeRepository defines the interface for creative data operations
type CreativeRepository interface {
	Create(ctx context.Context, creative *models.Creative) error
	GetByID(ctx context.Context, id string) (*models.Creative, error)
	ListByAdvertiser(ctx context.Context, advertiserID string) ([]*models.Creative, error)
	Update(ctx context.Context, id string, req *models.UpdateCreativeRequest) error
	Delete(ctx context.Context, id string) error
}
