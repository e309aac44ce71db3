package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"cliplink/internal/clip/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS clips (
	id               TEXT PRIMARY KEY,
	owner            TEXT NOT NULL,
	filename         TEXT NOT NULL,
	storage_path     TEXT NOT NULL UNIQUE,
	duration_seconds DOUBLE PRECISION,
	file_size_bytes  BIGINT,
	resolution       TEXT,
	fps              INTEGER,
	bitrate_kbps     INTEGER,
	thumbnail_path   TEXT,
	created_at       TIMESTAMPTZ NOT NULL,
	views            BIGINT NOT NULL DEFAULT 0,
	settings         TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_clips_owner ON clips (owner);
CREATE INDEX IF NOT EXISTS idx_clips_created_at ON clips (created_at);
`

const clipColumns = `id, owner, filename, storage_path, duration_seconds,
	file_size_bytes, resolution, fps, bitrate_kbps, thumbnail_path,
	created_at, views, settings`

type ClipRepo struct {
	db *sqlx.DB
}

func NewClipRepo(db *sqlx.DB) *ClipRepo {
	return &ClipRepo{db: db}
}

// Init idempotently ensures the clips table and its indexes exist.
func (r *ClipRepo) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("clips schema init: %w", err)
	}
	return nil
}

func (r *ClipRepo) Create(ctx context.Context, c *models.Clip) error {
	const q = `
		INSERT INTO clips (` + clipColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.Owner, c.Filename, c.StoragePath, c.DurationSeconds,
		c.FileSizeBytes, c.Resolution, c.FPS, c.BitrateKbps, c.ThumbnailPath,
		c.CreatedAt, c.Views, c.Settings,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrConflict
		}
		return fmt.Errorf("clip create: %w", err)
	}
	return nil
}

func (r *ClipRepo) GetByID(ctx context.Context, id string) (*models.Clip, error) {
	const q = `
		SELECT ` + clipColumns + `
		FROM clips
		WHERE id = $1
	`

	var c models.Clip
	if err := r.db.GetContext(ctx, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("clip get by id: %w", err)
	}

	return &c, nil
}

// IncrementViews bumps the counter in a single UPDATE so concurrent viewers
// never lose updates.
func (r *ClipRepo) IncrementViews(ctx context.Context, id string) error {
	const q = `
		UPDATE clips
		SET views = views + 1
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("clip increment views: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ClipRepo) ListByOwner(ctx context.Context, owner string, limit int) ([]models.Clip, error) {
	const q = `
		SELECT ` + clipColumns + `
		FROM clips
		WHERE owner = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var clips []models.Clip
	if err := r.db.SelectContext(ctx, &clips, q, owner, limit); err != nil {
		return nil, fmt.Errorf("clip list by owner: %w", err)
	}

	return clips, nil
}
