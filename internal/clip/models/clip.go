package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Settings is the opaque per-clip extension bag. It is stored as JSON text and
// must round-trip insert -> get with equal key/value content.
type Settings map[string]any

// Value serializes the bag for storage. A nil map serializes as the empty object.
func (s Settings) Value() (driver.Value, error) {
	if s == nil {
		s = Settings{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return string(b), nil
}

// Scan restores the bag from its stored representation. NULL and the empty
// string both come back as an empty, non-nil map.
func (s *Settings) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*s = Settings{}
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("scan settings: unsupported type %T", src)
	}

	if len(b) == 0 {
		*s = Settings{}
		return nil
	}

	out := Settings{}
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("unmarshal settings: %w", err)
	}
	*s = out
	return nil
}

// Clip is one uploaded video and its metadata record. ID and StoragePath are
// immutable once assigned; Views only ever grows. Media attributes are
// client-supplied hints and are not verified against the actual bytes.
type Clip struct {
	ID              string    `db:"id" json:"id"`
	Owner           string    `db:"owner" json:"owner"`
	Filename        string    `db:"filename" json:"filename"`
	StoragePath     string    `db:"storage_path" json:"storage_path"`
	DurationSeconds *float64  `db:"duration_seconds" json:"duration_seconds,omitempty"`
	FileSizeBytes   *int64    `db:"file_size_bytes" json:"file_size_bytes,omitempty"`
	Resolution      *string   `db:"resolution" json:"resolution,omitempty"`
	FPS             *int      `db:"fps" json:"fps,omitempty"`
	BitrateKbps     *int      `db:"bitrate_kbps" json:"bitrate_kbps,omitempty"`
	ThumbnailPath   *string   `db:"thumbnail_path" json:"thumbnail_path,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	Views           int64     `db:"views" json:"views"`
	Settings        Settings  `db:"settings" json:"settings"`
}
