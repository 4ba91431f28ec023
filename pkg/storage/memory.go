package storage

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-memory FileSystem for tests
type Memory struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
	// FailWrites makes every WriteFile call fail when set
	FailWrites error
}

// NewMemory creates an empty in-memory filesystem
func NewMemory() *Memory {
	return &Memory{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"/": true},
	}
}

func clean(path string) string {
	return filepath.Clean(path)
}

// Exists checks if a file or directory exists
func (m *Memory) Exists(ctx context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := clean(path)
	_, isFile := m.files[p]
	return isFile || m.dirs[p], nil
}

// MkdirAll records the directory and all of its parents
func (m *Memory) MkdirAll(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mkdirAll(clean(path))
}

func (m *Memory) mkdirAll(p string) error {
	for dir := p; ; dir = filepath.Dir(dir) {
		if _, isFile := m.files[dir]; isFile {
			return fmt.Errorf("failed to create directory: %s is a file", dir)
		}
		m.dirs[dir] = true
		if parent := filepath.Dir(dir); parent == dir {
			return nil
		}
	}
}

// Remove deletes a file
func (m *Memory) Remove(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, clean(path))
	return nil
}

// ReadFile returns a copy of the file content
func (m *Memory) ReadFile(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[clean(path)]
	if !ok {
		return nil, fmt.Errorf("failed to read file: %w", fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

// WriteFile stores a copy of data, creating parent directories
func (m *Memory) WriteFile(ctx context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return fmt.Errorf("failed to write file: %w", m.FailWrites)
	}
	p := clean(path)
	if err := m.mkdirAll(filepath.Dir(p)); err != nil {
		return err
	}
	m.files[p] = append([]byte(nil), data...)
	return nil
}

// List returns every file below path in lexical order
func (m *Memory) List(ctx context.Context, path string) ([]FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	root := clean(path)
	prefix := strings.TrimSuffix(root, string(filepath.Separator)) + string(filepath.Separator)

	var files []FileInfo
	for p, data := range m.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		files = append(files, FileInfo{
			Path:         p,
			Size:         int64(len(data)),
			ModTime:      time.Time{},
			RelativePath: strings.TrimPrefix(p, prefix),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Files returns the paths of all stored files in lexical order
func (m *Memory) Files() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
