package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteCache stores embedding sets as rows of the embedding_cache table.
// It implements the EmbeddingCache interface.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache creates a new SQLiteCache over a migrated database.
func NewSQLiteCache(db *sql.DB) *SQLiteCache {
	return &SQLiteCache{db: db}
}

// Load returns the entry for key, or ErrNotFound.
func (c *SQLiteCache) Load(ctx context.Context, key string) (*CacheEntry, error) {
	var (
		entry   CacheEntry
		blob    []byte
		created sql.NullTime
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT chunk_count, dimension, vectors, created_at FROM embedding_cache WHERE cache_key = ?",
		key,
	).Scan(&entry.ChunkCount, &entry.Dimension, &blob, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	vectors, err := DecodeVectors(blob, entry.ChunkCount, entry.Dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	entry.Vectors = vectors
	if created.Valid {
		entry.CreatedAt = created.Time
	}

	return &entry, nil
}

// Save upserts entry under key.
func (c *SQLiteCache) Save(ctx context.Context, key string, entry *CacheEntry) error {
	blob, err := EncodeVectors(entry.Vectors, entry.Dimension)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO embedding_cache (cache_key, chunk_count, dimension, vectors, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET
			chunk_count = excluded.chunk_count,
			dimension = excluded.dimension,
			vectors = excluded.vectors,
			created_at = excluded.created_at`,
		key, entry.ChunkCount, entry.Dimension, blob, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save cache entry: %w", err)
	}
	return nil
}
