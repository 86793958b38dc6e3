package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Object describes a stored upload.
type Object struct {
	// Destination is the directory or bucket holding the object.
	Destination string
	// Path locates the object within the backend.
	Path string
	Size int64
}

// Store defines the interface for upload storage backends.
type Store interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, name string, data io.Reader, size int64, contentType string) (*Object, error)
}

// FileSystemStore stores uploaded files on the local filesystem.
type FileSystemStore struct {
	basePath string
}

// NewFileSystemStore creates a new filesystem storage backend.
func NewFileSystemStore(basePath string) *FileSystemStore {
	return &FileSystemStore{basePath: basePath}
}

// Init creates the storage directory if it doesn't exist.
func (fs *FileSystemStore) Init(_ context.Context) error {
	if err := os.MkdirAll(fs.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", fs.basePath, err)
	}
	return nil
}

// Save writes data to a file called name, replacing any file of that name.
func (fs *FileSystemStore) Save(_ context.Context, name string, data io.Reader, _ int64, _ string) (*Object, error) {
	filePath := filepath.Join(fs.basePath, name)

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	n, err := io.Copy(file, data)
	if err != nil {
		// Clean up partial file on error
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &Object{Destination: fs.basePath, Path: filePath, Size: n}, nil
}
