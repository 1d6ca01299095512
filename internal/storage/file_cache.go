package storage

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores one gob blob per key in a directory.
// It implements the EmbeddingCache interface.
type FileCache struct {
	dir string
}

// NewFileCache creates a FileCache rooted at dir. The directory is created
// on first save.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

type fileEntry struct {
	ChunkCount int
	Dimension  int
	Vectors    [][]float32
	CreatedAt  time.Time
}

// Path returns the blob path for key.
func (c *FileCache) Path(key string) string {
	return filepath.Join(c.dir, "embeddings_"+key+".gob")
}

// Load returns the entry for key, or ErrNotFound.
func (c *FileCache) Load(ctx context.Context, key string) (*CacheEntry, error) {
	f, err := os.Open(c.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var fe fileEntry
	if err := gob.NewDecoder(f).Decode(&fe); err != nil {
		return nil, fmt.Errorf("failed to decode cache file: %w", err)
	}

	return &CacheEntry{
		ChunkCount: fe.ChunkCount,
		Dimension:  fe.Dimension,
		Vectors:    fe.Vectors,
		CreatedAt:  fe.CreatedAt,
	}, nil
}

// Save writes entry to a temp file and renames it over the blob for key.
func (c *FileCache) Save(ctx context.Context, key string, entry *CacheEntry) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, "embeddings_*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	fe := fileEntry{
		ChunkCount: entry.ChunkCount,
		Dimension:  entry.Dimension,
		Vectors:    entry.Vectors,
		CreatedAt:  createdAt,
	}
	if err := gob.NewEncoder(tmp).Encode(&fe); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}

	if err := os.Rename(tmpPath, c.Path(key)); err != nil {
		return fmt.Errorf("failed to move cache file into place: %w", err)
	}
	return nil
}
