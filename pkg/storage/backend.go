package storage

import (
	"context"
	"time"
)

// FileInfo represents metadata about a file
type FileInfo struct {
	Path         string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	RelativePath string
}

// FileSystem defines the filesystem operations the snapshot engine needs.
// Implementations include the local filesystem and an in-memory fake.
type FileSystem interface {
	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// MkdirAll creates a directory and all necessary parents.
	// An existing directory is not an error.
	MkdirAll(ctx context.Context, path string) error

	// Remove deletes a file. A missing file is not an error.
	Remove(ctx context.Context, path string) error

	// ReadFile returns the content of a file
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile creates or replaces a file with data
	WriteFile(ctx context.Context, path string, data []byte) error

	// List returns all files below path recursively
	List(ctx context.Context, path string) ([]FileInfo, error)
}
