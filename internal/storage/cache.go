package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedding_cache.go -package=mocks grant-assistant/internal/storage EmbeddingCache

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no cache entry exists for a key.
var ErrNotFound = errors.New("record not found")

// EmbeddingCache persists embedding sets keyed by a content hash.
// Writes overwrite any existing entry for the key; concurrent writers are
// last-write-wins.
type EmbeddingCache interface {
	// Load returns the entry for key, or ErrNotFound.
	Load(ctx context.Context, key string) (*CacheEntry, error)
	// Save stores entry under key.
	Save(ctx context.Context, key string, entry *CacheEntry) error
}
