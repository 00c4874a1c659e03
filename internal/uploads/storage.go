package uploads

import (
	"context"
	"io"
	"time"
)

// StorageDriver defines how document and preview bytes reach binary storage
type StorageDriver interface {
	// Save writes the content under key
	Save(ctx context.Context, key string, body io.Reader, contentType string) error

	// Get returns a ReadCloser to stream the object back and its content type
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GenerateURL returns an address the object can be fetched from
	GenerateURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// LocalPather is implemented by drivers that keep objects on the local disk.
type LocalPather interface {
	LocalPath(key string) string
}
