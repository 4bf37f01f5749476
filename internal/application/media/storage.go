// Package media defines the object storage contract used for chat
// attachments and product images.
package media

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ObjectStorage abstracts an S3-compatible object store.
type ObjectStorage interface {
	// GenerateUploadURL returns a presigned URL for uploading an object
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL returns a presigned URL for downloading an object
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject removes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks whether an object is present in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ChatMediaKey builds the storage key for a chat attachment.
func ChatMediaKey(threadID uuid.UUID, ext string) string {
	return fmt.Sprintf("chat/%s/%s%s", threadID, uuid.New(), ext)
}

// ProductImageKey builds the storage key for a product image.
func ProductImageKey(productID uuid.UUID, ext string) string {
	return fmt.Sprintf("products/%s/%s%s", productID, uuid.New(), ext)
}
