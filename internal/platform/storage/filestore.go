package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// BlobStore persists attachment binaries. Metadata lives in the database; the
// store only deals in opaque blobs addressed by key.
type BlobStore interface {
	// Put writes the blob and returns its storage key.
	Put(r io.Reader) (string, error)

	// Get opens the blob for reading. The caller must close it.
	Get(key string) (io.ReadCloser, error)

	// Delete removes the blob. Missing blobs are not an error.
	Delete(key string) error
}

// FileStore is a filesystem-backed BlobStore. Blobs are sharded into
// subdirectories by key prefix to keep directory sizes bounded.
type FileStore struct {
	root string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create attachment dir: %w", err)
	}
	return &FileStore{root: dir}, nil
}

func (s *FileStore) pathFor(key string) string {
	return filepath.Join(s.root, key[:2], key)
}

// Put writes the blob under a fresh key.
func (s *FileStore) Put(r io.Reader) (string, error) {
	key := uuid.New().String()
	path := s.pathFor(key)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create shard dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return key, nil
}

// Get opens the blob for reading.
func (s *FileStore) Get(key string) (io.ReadCloser, error) {
	f, err := os.Open(s.pathFor(key))
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s: %w", key, err)
	}
	return f, nil
}

// Delete removes the blob if present.
func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.pathFor(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}
