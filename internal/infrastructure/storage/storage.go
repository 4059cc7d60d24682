// Package storage keeps uploaded plant photos in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrKeyRequired is returned for an empty object key
var ErrKeyRequired = errors.New("storage key is required")

// ObjectStorage stores binary objects by key
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	// DownloadURL returns a time-limited URL for reading the object
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)
}
