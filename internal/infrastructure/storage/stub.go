package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/costerbox/backend/internal/application/media"
)

var errMissingStorageKey = errors.New("storage key is required")

// StubObjectStorage fakes presigned URLs for local development, where no
// S3-compatible backend is configured.
type StubObjectStorage struct {
	// BaseURL is prepended to every generated URL.
	BaseURL string
}

var _ media.ObjectStorage = (*StubObjectStorage)(nil)

// NewStubObjectStorage creates a stub pointing at a placeholder host.
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{BaseURL: "https://storage.example.com"}
}

func (s *StubObjectStorage) presign(op, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errMissingStorageKey
	}
	expiresAt := time.Now().Add(expiresIn)
	url := fmt.Sprintf("%s/%s/%s?expires=%s", s.BaseURL, op, storageKey, expiresAt.Format(time.RFC3339))
	return url, expiresAt, nil
}

// GenerateUploadURL returns a fake presigned upload URL.
func (s *StubObjectStorage) GenerateUploadURL(_ context.Context, storageKey, _ string, expiresIn time.Duration) (string, time.Time, error) {
	return s.presign("upload", storageKey, expiresIn)
}

// GenerateDownloadURL returns a fake presigned download URL.
func (s *StubObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	return s.presign("download", storageKey, expiresIn)
}

// DeleteObject succeeds without doing anything.
func (s *StubObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errMissingStorageKey
	}
	return nil
}

// ObjectExists reports true so upload confirmation flows can be exercised
// without a real bucket.
func (s *StubObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errMissingStorageKey
	}
	return true, nil
}
