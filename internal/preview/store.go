package preview

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/OpenNSW/aadhaar/internal/filedata"
	"github.com/OpenNSW/aadhaar/internal/uploads"
)

const previewURLTTL = 15 * time.Minute

// DriverStore keeps preview bytes in a StorageDriver. The handle ID is the
// storage key.
type DriverStore struct {
	driver uploads.StorageDriver
}

func NewDriverStore(driver uploads.StorageDriver) *DriverStore {
	return &DriverStore{driver: driver}
}

func (s *DriverStore) Create(ctx context.Context, file *filedata.File) (Handle, error) {
	rc, err := file.Open()
	if err != nil {
		return Handle{}, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()

	key := "preview-" + uuid.NewString() + strings.ToLower(filepath.Ext(file.Name))
	if err := s.driver.Save(ctx, key, rc, file.Type); err != nil {
		return Handle{}, err
	}

	url, err := s.driver.GenerateURL(ctx, key, previewURLTTL)
	if err != nil {
		_ = s.driver.Delete(ctx, key)
		return Handle{}, err
	}
	return Handle{ID: key, URL: url}, nil
}

func (s *DriverStore) Revoke(ctx context.Context, h Handle) error {
	return s.driver.Delete(ctx, h.ID)
}

// MemoryStore keeps preview bytes in memory under mem:// URLs.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Create(ctx context.Context, file *filedata.File) (Handle, error) {
	rc, err := file.Open()
	if err != nil {
		return Handle{}, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return Handle{}, fmt.Errorf("read %s: %w", file.Name, err)
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.blobs[id] = data
	s.mu.Unlock()
	return Handle{ID: id, URL: "mem://" + id}, nil
}

func (s *MemoryStore) Revoke(ctx context.Context, h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[h.ID]; !ok {
		return fmt.Errorf("preview %s is not live", h.ID)
	}
	delete(s.blobs, h.ID)
	return nil
}

// Bytes returns the content behind a live handle.
func (s *MemoryStore) Bytes(id string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[id]
	return b, ok
}

// Live reports how many handles have not been revoked.
func (s *MemoryStore) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
