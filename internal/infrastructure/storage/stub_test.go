package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubObjectStorage_GenerateUploadURL(t *testing.T) {
	stub := NewStubObjectStorage()

	url, expiresAt, err := stub.GenerateUploadURL(context.Background(), "chat/abc/img.png", "image/png", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "/upload/chat/abc/img.png")
	assert.True(t, expiresAt.After(time.Now()))

	_, _, err = stub.GenerateUploadURL(context.Background(), "", "image/png", time.Minute)
	assert.Error(t, err)
}

func TestStubObjectStorage_GenerateDownloadURL(t *testing.T) {
	stub := NewStubObjectStorage()

	url, _, err := stub.GenerateDownloadURL(context.Background(), "products/p1/a.jpg", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "/download/products/p1/a.jpg")
}

func TestStubObjectStorage_ObjectExists(t *testing.T) {
	stub := NewStubObjectStorage()

	exists, err := stub.ObjectExists(context.Background(), "any/key")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, stub.DeleteObject(context.Background(), "any/key"))
}
