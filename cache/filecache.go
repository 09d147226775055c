package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/user"
	"path/filepath"
	"time"
)

// FileStore implements Store using one JSON file per key
type FileStore[V any] struct {
	dir string
}

// DefaultDir returns ~/.polisci_cache/<subdir>
func DefaultDir(subdir string) (string, error) {
	usr, err := user.Current()
	if err != nil {
		return "", err
	}

	baseDir := filepath.Join(usr.HomeDir, ".polisci_cache")
	if subdir != "" {
		baseDir = filepath.Join(baseDir, subdir)
	}
	return baseDir, nil
}

// NewFileStore creates a file-based store rooted at dir, creating it if needed
func NewFileStore[V any](dir string) (*FileStore[V], error) {
	if dir == "" {
		d, err := DefaultDir("")
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	return &FileStore[V]{dir: dir}, nil
}

// Dir returns the directory the store writes to
func (fs *FileStore[V]) Dir() string {
	return fs.dir
}

// Get implements Reader. Unreadable or corrupt files count as a miss.
func (fs *FileStore[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V
	entry, ok := fs.read(key)
	if !ok {
		return zero, false
	}
	return entry.Value, true
}

// Has implements Reader
func (fs *FileStore[V]) Has(_ context.Context, key string) bool {
	_, err := os.Stat(fs.path(key))
	return err == nil
}

// Set implements Writer
func (fs *FileStore[V]) Set(_ context.Context, key string, value V) error {
	path := fs.path(key)
	entry := Entry[V]{Key: key, Value: value, CreatedAt: time.Now()}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}

	// Write to temporary file first, then rename (atomic operation)
	tmpPath := path + fmt.Sprintf(".tmp.%d", rand.Int())
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// Entry returns the full stored entry for key
func (fs *FileStore[V]) Entry(key string) (Entry[V], bool) {
	return fs.read(key)
}

func (fs *FileStore[V]) read(key string) (Entry[V], bool) {
	var entry Entry[V]
	data, err := os.ReadFile(fs.path(key))
	if err != nil {
		return entry, false
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return entry, false
	}
	return entry, true
}

// path generates the full filesystem path for a cache key
func (fs *FileStore[V]) path(key string) string {
	return filepath.Join(fs.dir, FileName(key))
}
