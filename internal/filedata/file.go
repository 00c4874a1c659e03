// Package filedata describes a candidate file picked by the user: its name,
// size, MIME type and a handle to its bytes.
package filedata

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// File is a selected binary blob. Identity matters: two *File values are
// the same selection only if they are the same pointer.
type File struct {
	Name string
	Size int64
	Type string

	path string
	data []byte
}

// New wraps in-memory bytes as a File.
func New(name, mimeType string, data []byte) *File {
	return &File{
		Name: name,
		Size: int64(len(data)),
		Type: mimeType,
		data: data,
	}
}

// FromPath builds a File for a path on disk. The MIME type comes from the
// extension, like a browser does, and falls back to content sniffing when
// the extension is unknown.
func FromPath(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mimeType := typeByExtension(filepath.Ext(path))
	if mimeType == "" {
		if mt, err := mimetype.DetectFile(path); err == nil {
			mimeType = stripParams(mt.String())
		}
	}

	return &File{
		Name: filepath.Base(path),
		Size: info.Size(),
		Type: mimeType,
		path: path,
	}, nil
}

// Path returns the on-disk location, or "" for in-memory files.
func (f *File) Path() string {
	return f.path
}

// Open returns a reader over the file's bytes. Callers must close it.
func (f *File) Open() (io.ReadCloser, error) {
	if f.path != "" {
		return os.Open(f.path)
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func typeByExtension(ext string) string {
	if ext == "" {
		return ""
	}
	return stripParams(mime.TypeByExtension(strings.ToLower(ext)))
}

func stripParams(mediaType string) string {
	if mediaType == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		return parsed
	}
	return mediaType
}
