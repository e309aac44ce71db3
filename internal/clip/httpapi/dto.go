package httpapi

import (
	"time"

	"cliplink/internal/clip/models"
)

// uploadForm carries the multipart form fields of an upload request. The
// media attributes are hints only; they are range-checked here but never
// verified against the actual bytes.
type uploadForm struct {
	Username   string   `validate:"required,max=128"`
	Duration   *float64 `validate:"omitempty,gte=0"`
	Resolution *string  `validate:"omitempty,max=32"`
	FPS        *int     `validate:"omitempty,gt=0,lte=1000"`
	Bitrate    *int     `validate:"omitempty,gt=0"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type UploadResponse struct {
	Link       string `json:"link"`
	ClipID     string `json:"clip_id"`
	StorageURL string `json:"storage_url"`
}

type ClipResponse struct {
	ID              string          `json:"id"`
	Owner           string          `json:"owner"`
	Filename        string          `json:"filename"`
	StoragePath     string          `json:"storage_path"`
	DurationSeconds *float64        `json:"duration_seconds,omitempty"`
	FileSizeBytes   *int64          `json:"file_size_bytes,omitempty"`
	Resolution      *string         `json:"resolution,omitempty"`
	FPS             *int            `json:"fps,omitempty"`
	BitrateKbps     *int            `json:"bitrate_kbps,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Views           int64           `json:"views"`
	Settings        models.Settings `json:"settings"`
}

func toClipResponse(c *models.Clip) ClipResponse {
	return ClipResponse{
		ID:              c.ID,
		Owner:           c.Owner,
		Filename:        c.Filename,
		StoragePath:     c.StoragePath,
		DurationSeconds: c.DurationSeconds,
		FileSizeBytes:   c.FileSizeBytes,
		Resolution:      c.Resolution,
		FPS:             c.FPS,
		BitrateKbps:     c.BitrateKbps,
		CreatedAt:       c.CreatedAt,
		Views:           c.Views,
		Settings:        c.Settings,
	}
}
