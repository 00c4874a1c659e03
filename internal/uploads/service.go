package uploads

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadService stores documents through a StorageDriver and hands back their metadata
type UploadService struct {
	Driver StorageDriver
}

func NewUploadService(driver StorageDriver) *UploadService {
	return &UploadService{Driver: driver}
}

// Upload saves the document under a fresh key and returns its metadata.
// The stored object is removed again if no URL can be produced for it.
func (s *UploadService) Upload(ctx context.Context, filename string, reader io.Reader, size int64, mime string) (*FileMetadata, error) {
	if mime == "" {
		mime = "application/octet-stream"
	}
	id := uuid.New()
	key := id.String() + strings.ToLower(filepath.Ext(filename))

	if err := s.Driver.Save(ctx, key, reader, mime); err != nil {
		return nil, fmt.Errorf("storage driver failed: %w", err)
	}

	url, err := s.Driver.GenerateURL(ctx, key, 0)
	if err != nil {
		s.discard(ctx, key)
		return nil, fmt.Errorf("failed to generate URL: %w", err)
	}

	slog.InfoContext(ctx, "document stored", "id", id, "key", key, "size", size)
	return &FileMetadata{
		ID:       id,
		Name:     filename,
		Key:      key,
		URL:      url,
		Size:     size,
		MimeType: mime,
	}, nil
}

// Download retrieves the stored content and its MIME type
func (s *UploadService) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return s.Driver.Get(ctx, key)
}

// Remove deletes a stored document, typically to undo an upload whose
// follow-up bookkeeping failed.
func (s *UploadService) Remove(ctx context.Context, key string) error {
	return s.Driver.Delete(ctx, key)
}

func (s *UploadService) discard(ctx context.Context, key string) {
	if err := s.Driver.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to cleanup orphaned file", "key", key, "error", err)
	}
}
