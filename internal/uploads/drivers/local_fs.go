package drivers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const defaultContentType = "application/octet-stream"

// LocalFSDriver keeps objects on local disk under a two-level hashed layout.
// The content type of each object lives in a ".meta" sidecar.
type LocalFSDriver struct {
	BaseDir   string
	PublicURL string
}

// NewLocalFSDriver creates a new LocalFSDriver.
// baseDir is where files will be stored.
// publicURL is the base URL used to generate links (e.g., /api/uploads).
// An empty publicURL makes GenerateURL return file:// URLs.
func NewLocalFSDriver(baseDir, publicURL string) (*LocalFSDriver, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &LocalFSDriver{BaseDir: baseDir, PublicURL: publicURL}, nil
}

// LocalPath returns where key is (or would be) stored on disk.
func (d *LocalFSDriver) LocalPath(key string) string {
	return filepath.Join(d.BaseDir, hashedPath(key))
}

// hashedPath spreads keys over two directory levels to avoid huge flat directories.
func hashedPath(key string) string {
	if len(key) < 4 {
		return key
	}
	return filepath.Join(key[0:2], key[2:4], key)
}

func (d *LocalFSDriver) Save(ctx context.Context, key string, body io.Reader, contentType string) error {
	fullPath := d.LocalPath(key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create hashed directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		os.Remove(fullPath)
		return fmt.Errorf("failed to save file content: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(fullPath)
		return fmt.Errorf("failed to flush file content: %w", err)
	}

	if contentType == "" {
		contentType = defaultContentType
	}
	if err := os.WriteFile(fullPath+".meta", []byte(contentType), 0o644); err != nil {
		os.Remove(fullPath)
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	return nil
}

func (d *LocalFSDriver) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	fullPath := d.LocalPath(key)
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, "", err
	}

	contentType := defaultContentType
	if metaBytes, err := os.ReadFile(fullPath + ".meta"); err == nil {
		contentType = string(metaBytes)
	}

	return f, contentType, nil
}

func (d *LocalFSDriver) Delete(ctx context.Context, key string) error {
	fullPath := d.LocalPath(key)
	if err := os.Remove(fullPath + ".meta"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (d *LocalFSDriver) GenerateURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if d.PublicURL == "" {
		abs, err := filepath.Abs(d.LocalPath(key))
		if err != nil {
			return "", fmt.Errorf("failed to resolve path: %w", err)
		}
		return "file://" + filepath.ToSlash(abs), nil
	}
	return fmt.Sprintf("%s/%s", d.PublicURL, key), nil
}
