package storage

import (
	"context"
	"errors"
	"time"

	checkoutapp "github.com/devmarket/backend/internal/application/checkout"
	dashboardapp "github.com/devmarket/backend/internal/application/dashboard"
)

var (
	_ checkoutapp.DownloadURLSigner = (*StubStorage)(nil)
	_ dashboardapp.UploadURLSigner  = (*StubStorage)(nil)
)

// StubStorage is a placeholder signer for development without a
// storage backend. URLs it returns are not actually servable.
type StubStorage struct {
	// BaseURL is the prefix for generated URLs
	BaseURL string
}

// NewStubStorage creates a new StubStorage
func NewStubStorage() *StubStorage {
	return &StubStorage{
		BaseURL: "https://storage.invalid",
	}
}

// PresignDownload returns a fake download URL
func (s *StubStorage) PresignDownload(ctx context.Context, key string, expires time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expires)
	return s.BaseURL + "/download/" + key + "?expires=" + expiresAt.Format(time.RFC3339), nil
}

// PresignUpload returns a fake upload URL
func (s *StubStorage) PresignUpload(ctx context.Context, key string, expires time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expires)
	return s.BaseURL + "/upload/" + key + "?expires=" + expiresAt.Format(time.RFC3339), nil
}
