package repository

import (
	"context"
	"sort"
	"sync"

	"cliplink/internal/clip/models"
)

type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string]*models.Clip
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		data: make(map[string]*models.Clip),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, c *models.Clip) error {
	if c == nil || c.ID == "" {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[c.ID]; exists {
		return models.ErrConflict
	}

	cp := cloneClip(c)
	r.data[c.ID] = cp

	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Clip, error) {
	if id == "" {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.data[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	return cloneClip(c), nil
}

func (r *MemoryRepository) IncrementViews(ctx context.Context, id string) error {
	if id == "" {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.data[id]
	if !ok {
		return models.ErrNotFound
	}
	c.Views++

	return nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, owner string, limit int) ([]models.Clip, error) {
	if owner == "" || limit <= 0 {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Clip
	for _, c := range r.data {
		if c.Owner == owner {
			out = append(out, *cloneClip(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

// cloneClip copies the record, settings bag included, so callers cannot
// mutate stored state through returned pointers.
func cloneClip(c *models.Clip) *models.Clip {
	cp := *c
	if c.Settings != nil {
		cp.Settings = make(models.Settings, len(c.Settings))
		for k, v := range c.Settings {
			cp.Settings[k] = v
		}
	}
	return &cp
}
