// Package preview owns the single preview handle a widget may hold for its
// selected file. Handles are created and revoked only through Manager.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/OpenNSW/aadhaar/internal/filedata"
)

// ErrClosed is returned by Show after the manager has been closed.
var ErrClosed = errors.New("preview manager closed")

// Handle is a revocable, locally addressable reference to a file's bytes.
type Handle struct {
	ID  string
	URL string
}

// Store allocates and releases preview handles.
type Store interface {
	Create(ctx context.Context, file *filedata.File) (Handle, error)
	Revoke(ctx context.Context, h Handle) error
}

// Manager holds at most one live handle.
type Manager struct {
	mu      sync.Mutex
	store   Store
	current *Handle
	closed  bool
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Show releases the held handle, if any, and creates one for file.
func (m *Manager) Show(ctx context.Context, file *filedata.File) (Handle, error) {
	if file == nil {
		return Handle{}, errors.New("preview: nil file")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Handle{}, ErrClosed
	}
	m.releaseLocked(ctx)

	h, err := m.store.Create(ctx, file)
	if err != nil {
		return Handle{}, fmt.Errorf("create preview for %s: %w", file.Name, err)
	}
	m.current = &h
	slog.DebugContext(ctx, "preview created", "id", h.ID, "file", file.Name)
	return h, nil
}

// Clear releases the held handle. It is a no-op when nothing is held.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked(ctx)
}

// Current returns the live handle, if any.
func (m *Manager) Current() (Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Handle{}, false
	}
	return *m.current, true
}

// Close releases whatever is held and refuses further handles. Safe to call
// more than once.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.releaseLocked(context.Background())
}

// releaseLocked forgets the current handle even when the store fails to
// revoke it, so a broken store cannot pin the manager.
func (m *Manager) releaseLocked(ctx context.Context) {
	if m.current == nil {
		return
	}
	h := *m.current
	m.current = nil
	if err := m.store.Revoke(ctx, h); err != nil {
		slog.WarnContext(ctx, "failed to revoke preview", "id", h.ID, "error", err)
		return
	}
	slog.DebugContext(ctx, "preview revoked", "id", h.ID)
}
