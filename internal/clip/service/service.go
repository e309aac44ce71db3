package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"cliplink/internal/clip/models"
	"cliplink/internal/clip/repository"
)

// Clip ids are URL-safe nanoids; at this length a collision is negligible and
// is not checked for before insert. Should one happen anyway it surfaces as
// models.ErrConflict from the repository.
const clipIDLength = 12

// ObjectStorage is the blob-store port the workflow uploads through.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// TokenVerifier validates an upload token and returns the identity it binds.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// EventPublisher pushes domain events to the broker. Optional.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event models.DomainEvent) error
}

type Config struct {
	Repo              repository.ClipRepository
	Store             ObjectStorage
	Tokens            TokenVerifier
	Events            EventPublisher // nil disables event publication
	BaseURL           string
	AllowedExtensions map[string]struct{}
	Logger            zerolog.Logger
}

type Service struct {
	repo    repository.ClipRepository
	store   ObjectStorage
	tokens  TokenVerifier
	events  EventPublisher
	baseURL string
	allowed map[string]struct{}
	logger  zerolog.Logger
	clock   func() time.Time
	idGen   func() (string, error)
}

func New(cfg Config) (*Service, error) {
	if cfg.Repo == nil {
		return nil, fmt.Errorf("service: repository is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("service: object storage is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("service: token verifier is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("service: base url is required")
	}
	if len(cfg.AllowedExtensions) == 0 {
		return nil, fmt.Errorf("service: allowed extensions set is empty")
	}

	return &Service{
		repo:    cfg.Repo,
		store:   cfg.Store,
		tokens:  cfg.Tokens,
		events:  cfg.Events,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		allowed: cfg.AllowedExtensions,
		logger:  cfg.Logger.With().Str("component", "clip_service").Logger(),
		clock:   time.Now,
		idGen:   func() (string, error) { return gonanoid.New(clipIDLength) },
	}, nil
}

type SubmitInput struct {
	File        io.Reader
	Filename    string
	Identity    string
	Token       string // optional bearer token; empty means unauthenticated
	ContentType string
	Duration    *float64
	FileSize    *int64
	Resolution  *string
	FPS         *int
	Bitrate     *int
	Settings    models.Settings
}

type SubmitResult struct {
	Link    string
	ClipID  string
	BlobURL string
}

// WatchData is everything the watch page needs for one clip.
type WatchData struct {
	Clip     *models.Clip
	WatchURL string
	VideoURL string
}

// SubmitClip turns an incoming file into a persisted clip with a shareable
// link: verify the optional token, check the extension, upload the blob, then
// insert the metadata record. Single attempt throughout; a blob that lands
// before a failed insert is left orphaned rather than rolled back.
//
// The token is advisory: when absent the upload proceeds under the
// caller-supplied identity unauthenticated. Anyone can omit the token and
// claim any identity.
func (s *Service) SubmitClip(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if in.File == nil || in.Filename == "" || in.Identity == "" {
		return nil, models.ErrInvalidArgument
	}

	if in.Token != "" {
		tokenIdentity, err := s.tokens.Verify(in.Token)
		if err != nil {
			return nil, err
		}
		if tokenIdentity != in.Identity {
			return nil, models.ErrIdentityMismatch
		}
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	if _, ok := s.allowed[ext]; !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidExtension, ext)
	}

	id, err := s.idGen()
	if err != nil {
		return nil, fmt.Errorf("generate clip id: %w", err)
	}

	key := fmt.Sprintf("clips/%s/%s%s", in.Identity, id, ext)

	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "video/mp4"
	}

	blobURL, err := s.store.Upload(ctx, key, in.File, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload blob: %w", err)
	}

	settings := in.Settings
	if settings == nil {
		settings = models.Settings{}
	}

	clip := &models.Clip{
		ID:              id,
		Owner:           in.Identity,
		Filename:        in.Filename,
		StoragePath:     key,
		DurationSeconds: in.Duration,
		FileSizeBytes:   in.FileSize,
		Resolution:      in.Resolution,
		FPS:             in.FPS,
		BitrateKbps:     in.Bitrate,
		CreatedAt:       s.clock(),
		Views:           0,
		Settings:        settings,
	}

	if err := s.repo.Create(ctx, clip); err != nil {
		return nil, err
	}

	s.publishUploaded(ctx, clip)

	s.logger.Info().
		Str("clip_id", id).
		Str("owner", in.Identity).
		Str("storage_path", key).
		Msg("clip published")

	return &SubmitResult{
		Link:    s.WatchURL(id),
		ClipID:  id,
		BlobURL: blobURL,
	}, nil
}

// publishUploaded is best-effort: the clip is already durable, so a broker
// failure must not fail the request.
func (s *Service) publishUploaded(ctx context.Context, clip *models.Clip) {
	if s.events == nil {
		return
	}
	event := models.NewClipUploaded(clip.ID, clip.Owner, clip.StoragePath)
	if err := s.events.PublishEvent(ctx, event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("clip_id", clip.ID).
			Msg("failed to publish upload event")
	}
}

// WatchClip fetches the clip for rendering and bumps its view counter as a
// side effect. The increment is best-effort: the page is still served when it
// fails, and the returned record carries the pre-increment count.
func (s *Service) WatchClip(ctx context.Context, id string) (*WatchData, error) {
	clip, err := s.GetClip(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.IncrementViews(ctx, id); err != nil {
		s.logger.Warn().
			Err(err).
			Str("clip_id", id).
			Msg("failed to increment views")
	}

	return &WatchData{
		Clip:     clip,
		WatchURL: s.WatchURL(id),
		VideoURL: s.store.PublicURL(clip.StoragePath),
	}, nil
}

// GetClip returns the clip record, passing through models.ErrNotFound so the
// transport layer can map it.
func (s *Service) GetClip(ctx context.Context, id string) (*models.Clip, error) {
	if id == "" {
		return nil, models.ErrInvalidArgument
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, owner string, limit int) ([]models.Clip, error) {
	if owner == "" {
		return nil, models.ErrInvalidArgument
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListByOwner(ctx, owner, limit)
}

// WatchURL builds the shareable link for a clip id.
func (s *Service) WatchURL(id string) string {
	return s.baseURL + "/watch/" + id
}
