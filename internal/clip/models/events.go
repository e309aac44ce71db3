package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// ClipUploaded is emitted after a clip has landed in object storage and its
// metadata record has been persisted.
type ClipUploaded struct {
	eventID    uuid.UUID
	clipID     string
	owner      string
	storageKey string
	occurredAt time.Time
}

func NewClipUploaded(clipID, owner, storageKey string) *ClipUploaded {
	return &ClipUploaded{
		eventID:    uuid.New(),
		clipID:     clipID,
		owner:      owner,
		storageKey: storageKey,
		occurredAt: time.Now(),
	}
}

func (e *ClipUploaded) EventID() uuid.UUID    { return e.eventID }
func (e *ClipUploaded) EventType() string     { return "ClipUploaded" }
func (e *ClipUploaded) AggregateID() string   { return e.clipID }
func (e *ClipUploaded) OccurredAt() time.Time { return e.occurredAt }

func (e *ClipUploaded) Owner() string      { return e.owner }
func (e *ClipUploaded) StorageKey() string { return e.storageKey }

func (e *ClipUploaded) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID    uuid.UUID `json:"event_id"`
		ClipID     string    `json:"clip_id"`
		Owner      string    `json:"owner"`
		StorageKey string    `json:"storage_key"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		EventID:    e.eventID,
		ClipID:     e.clipID,
		Owner:      e.owner,
		StorageKey: e.storageKey,
		OccurredAt: e.occurredAt,
	})
}
