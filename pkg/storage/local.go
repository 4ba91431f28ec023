package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Local is a filesystem-based storage backend
type Local struct {
	rootPath string
}

// NewLocal creates a new local filesystem backend.
// Relative paths are resolved against rootPath; an empty root uses the working directory.
func NewLocal(rootPath string) (*Local, error) {
	if rootPath == "" {
		return &Local{}, nil
	}

	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{rootPath: absPath}, nil
}

func (l *Local) resolve(path string) string {
	if l.rootPath == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.rootPath, path)
}

// Exists checks if a file or directory exists
func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(l.resolve(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence: %w", err)
}

// MkdirAll creates a directory and all necessary parents
func (l *Local) MkdirAll(ctx context.Context, path string) error {
	fullPath := l.resolve(path)

	if err := os.MkdirAll(fullPath, 0755); err != nil {
		// Another writer may have created it between our checks
		if info, statErr := os.Stat(fullPath); statErr == nil && info.IsDir() {
			return nil
		}
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return nil
}

// Remove deletes a file
func (l *Local) Remove(ctx context.Context, path string) error {
	err := os.Remove(l.resolve(path))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}

// ReadFile reads a whole file
func (l *Local) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(l.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// WriteFile writes data through a temporary file and renames it into place
func (l *Local) WriteFile(ctx context.Context, path string, data []byte) error {
	fullPath := l.resolve(path)

	// Ensure parent directory exists
	dir := filepath.Dir(fullPath)
	if err := l.MkdirAll(ctx, dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}

// List returns all files in the directory recursively
func (l *Local) List(ctx context.Context, path string) ([]FileInfo, error) {
	fullPath := l.resolve(path)
	var files []FileInfo

	err := filepath.WalkDir(fullPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(fullPath, p)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, FileInfo{
			Path:         p,
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			RelativePath: relPath,
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}
