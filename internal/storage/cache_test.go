package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// cacheFactories lets both EmbeddingCache implementations share one contract test.
var cacheFactories = map[string]func(t *testing.T) EmbeddingCache{
	"file": func(t *testing.T) EmbeddingCache {
		return NewFileCache(filepath.Join(t.TempDir(), ".cache"))
	},
	"sqlite": func(t *testing.T) EmbeddingCache {
		db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		return NewSQLiteCache(db)
	},
}

func TestEmbeddingCache_Contract(t *testing.T) {
	ctx := context.Background()

	for name, factory := range cacheFactories {
		t.Run(name, func(t *testing.T) {
			cache := factory(t)

			if _, err := cache.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Load(missing) error = %v, want ErrNotFound", err)
			}

			entry := &CacheEntry{
				ChunkCount: 2,
				Dimension:  3,
				Vectors:    [][]float32{{0.1, 0.2, 0.3}, {0, 0, 0}},
			}
			if err := cache.Save(ctx, "abc", entry); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := cache.Load(ctx, "abc")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.ChunkCount != 2 || got.Dimension != 3 || len(got.Vectors) != 2 {
				t.Fatalf("Load() = %+v, want 2 vectors of dimension 3", got)
			}
			if got.Vectors[0][1] != 0.2 || got.Vectors[1][2] != 0 {
				t.Errorf("Load() vectors = %v, want %v", got.Vectors, entry.Vectors)
			}
			if got.CreatedAt.IsZero() {
				t.Error("Load() CreatedAt not set")
			}

			// Overwrite is last-write-wins.
			replacement := &CacheEntry{ChunkCount: 1, Dimension: 2, Vectors: [][]float32{{1, 2}}, CreatedAt: time.Now()}
			if err := cache.Save(ctx, "abc", replacement); err != nil {
				t.Fatalf("Save() overwrite error = %v", err)
			}
			got, err = cache.Load(ctx, "abc")
			if err != nil {
				t.Fatalf("Load() after overwrite error = %v", err)
			}
			if got.ChunkCount != 1 || got.Vectors[0][1] != 2 {
				t.Errorf("Load() after overwrite = %+v", got)
			}
		})
	}
}

func TestSQLiteCache_RejectsRaggedVectors(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	err = NewSQLiteCache(db).Save(context.Background(), "k", &CacheEntry{
		ChunkCount: 2,
		Dimension:  2,
		Vectors:    [][]float32{{1, 2}, {3}},
	})
	if err == nil {
		t.Error("Save() with ragged vectors expected error, got nil")
	}
}

func TestFileCache_Path(t *testing.T) {
	c := NewFileCache("/tmp/cache")
	if got, want := c.Path("deadbeef"), filepath.Join("/tmp/cache", "embeddings_deadbeef.gob"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestDecodeVectors_InvalidLength(t *testing.T) {
	if _, err := DecodeVectors([]byte{1, 2, 3}, 1, 1); err == nil {
		t.Error("DecodeVectors() expected error for short blob")
	}
	got, err := DecodeVectors(nil, 0, 0)
	if err != nil || len(got) != 0 {
		t.Errorf("DecodeVectors(nil, 0, 0) = %v, %v; want empty, nil", got, err)
	}
}
