package service

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"cliplink/internal/clip/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) Create(ctx context.Context, c *models.Clip) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *RepoMock) GetByID(ctx context.Context, id string) (*models.Clip, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Clip), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) IncrementViews(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RepoMock) ListByOwner(ctx context.Context, owner string, limit int) ([]models.Clip, error) {
	args := m.Called(ctx, owner, limit)
	if v := args.Get(0); v != nil {
		return v.([]models.Clip), args.Error(1)
	}
	return nil, args.Error(1)
}

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}

func (m *StoreMock) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *StoreMock) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// verifierStub returns a fixed identity or error without real crypto.
type verifierStub struct {
	identity string
	err      error
	called   bool
}

func (v *verifierStub) Verify(token string) (string, error) {
	v.called = true
	return v.identity, v.err
}

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) PublishEvent(ctx context.Context, event models.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
