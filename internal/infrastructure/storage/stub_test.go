package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubStoragePresignDownload(t *testing.T) {
	s := NewStubStorage()

	url, err := s.PresignDownload(context.Background(), "products/abc/file.zip", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "/download/products/abc/file.zip")
	assert.Contains(t, url, "expires=")

	_, err = s.PresignDownload(context.Background(), "", time.Minute)
	assert.Error(t, err)
}

func TestStubStoragePresignUpload(t *testing.T) {
	s := NewStubStorage()

	url, err := s.PresignUpload(context.Background(), "products/abc/main.zip", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "/upload/products/abc/main.zip")

	_, err = s.PresignUpload(context.Background(), "", time.Minute)
	assert.Error(t, err)
}
