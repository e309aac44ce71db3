package repository

import (
	"context"

	"cliplink/internal/clip/models"
)

type ClipRepository interface {
	Create(ctx context.Context, c *models.Clip) error
	GetByID(ctx context.Context, id string) (*models.Clip, error)
	// IncrementViews atomically adds 1 to the view counter. Implementations
	// must not lose updates under concurrent callers for the same id.
	IncrementViews(ctx context.Context, id string) error
	// ListByOwner returns an owner's clips newest-first, capped at limit.
	ListByOwner(ctx context.Context, owner string, limit int) ([]models.Clip, error)
}
