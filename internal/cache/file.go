package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one JSON document per key under a cache directory. This is
// the default backend; it needs no external service and survives restarts.
type FileStore struct {
	dir string
	log *slog.Logger
}

// NewFileStore creates the cache directory if needed.
func NewFileStore(dir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

// Get reads an entry. Missing files are misses; unreadable or undecodable
// files are deleted and reported as misses so a corrupt cache self-heals.
func (s *FileStore) Get(ctx context.Context, key string) (*Entry, error) {
	path := s.path(key)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.log.Warn("Dropping corrupt cache entry", "key", key, "error", err)
		_ = os.Remove(path)
		return nil, nil
	}

	return &entry, nil
}

// Put writes an entry atomically (temp file + rename) so a concurrent reader
// never observes a half-written document.
func (s *FileStore) Put(ctx context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	path := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".cache-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	// Keys contain characters unsafe in filenames.
	safe := strings.NewReplacer(":", "_", "/", "_").Replace(key)
	return filepath.Join(s.dir, safe+".json")
}
