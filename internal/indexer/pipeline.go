package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks grant-assistant/internal/indexer Embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"grant-assistant/internal/contextutil"
	"grant-assistant/internal/storage"
)

// Embedder computes document embeddings.
type Embedder interface {
	// EmbedDocument embeds one document text.
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	// EmbedDocuments embeds a batch of document texts, one vector per text.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Options configures index construction.
type Options struct {
	// BatchSize is the number of chunks sent per batch embedding call.
	BatchSize int
	// Dimension is the vector length used for placeholders when no
	// embedding succeeded at all.
	Dimension int
	// Namespace is mixed into the cache key so vectors from different
	// embedding models never share a cache entry.
	Namespace string
	// CharsPerToken is the rune-to-token ratio used for chunk token stats.
	CharsPerToken int
}

// Index holds exactly one vector per chunk, aligned by position.
type Index struct {
	Key     string
	Chunks  []Chunk
	Vectors [][]float32
	Stats   IndexStats
}

// Builder computes or loads the embedding index for a chunk set.
type Builder struct {
	embedder Embedder
	cache    storage.EmbeddingCache
	opts     Options
}

// NewBuilder creates a Builder. cache may be nil to disable caching.
func NewBuilder(embedder Embedder, cache storage.EmbeddingCache, opts Options) *Builder {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.Dimension <= 0 {
		opts.Dimension = 768
	}
	if opts.CharsPerToken <= 0 {
		opts.CharsPerToken = defaultCharsPerToken
	}
	return &Builder{embedder: embedder, cache: cache, opts: opts}
}

// CacheKey returns the content hash of a chunk set: SHA-256 over every
// chunk's path and content, with chunks ordered by path.
func CacheKey(chunks []Chunk) string {
	return cacheKey("", chunks)
}

func cacheKey(namespace string, chunks []Chunk) string {
	sorted := slices.Clone(chunks)
	slices.SortStableFunc(sorted, func(a, b Chunk) int {
		return strings.Compare(a.Path, b.Path)
	})

	h := sha256.New()
	if namespace != "" {
		h.Write([]byte(namespace))
		h.Write([]byte{0})
	}
	for _, c := range sorted {
		h.Write([]byte(c.Path))
		h.Write([]byte{0})
		h.Write([]byte(c.Content))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Build returns the index for chunks, loading it from the cache when the
// chunk set is unchanged and embedding it otherwise. Embedding failures
// degrade to zero vectors; only context cancellation aborts the build.
func (b *Builder) Build(ctx context.Context, chunks []Chunk) (*Index, error) {
	logger := contextutil.LoggerFromContext(ctx)
	started := time.Now()

	idx := &Index{
		Key:    cacheKey(b.opts.Namespace, chunks),
		Chunks: chunks,
		Stats:  newIndexStats(chunks, b.opts.CharsPerToken),
	}

	if vectors, ok := b.loadCached(ctx, idx.Key, len(chunks)); ok {
		idx.Vectors = vectors
		idx.Stats.CacheHit = true
		idx.Stats.Dimension = dimensionOf(vectors, b.opts.Dimension)
		logger.InfoContext(ctx, "embedding index loaded from cache",
			"cache_key", idx.Key,
			"chunks", len(chunks),
		)
		return idx, nil
	}

	vectors, err := b.embedAll(ctx, chunks, &idx.Stats)
	if err != nil {
		return nil, err
	}
	idx.Vectors = vectors

	if b.cache != nil {
		entry := &storage.CacheEntry{
			ChunkCount: len(chunks),
			Dimension:  idx.Stats.Dimension,
			Vectors:    vectors,
		}
		if err := b.cache.Save(ctx, idx.Key, entry); err != nil {
			logger.WarnContext(ctx, "failed to save embedding cache", "cache_key", idx.Key, "error", err)
		}
	}

	logger.InfoContext(ctx, "embedding index built",
		"cache_key", idx.Key,
		"chunks", len(chunks),
		"batches", idx.Stats.Batches,
		"batch_fallbacks", idx.Stats.BatchFallbacks,
		"zero_vectors", idx.Stats.ZeroVectors,
		"dimension", idx.Stats.Dimension,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return idx, nil
}

func (b *Builder) loadCached(ctx context.Context, key string, n int) ([][]float32, bool) {
	if b.cache == nil {
		return nil, false
	}
	logger := contextutil.LoggerFromContext(ctx)

	entry, err := b.cache.Load(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		logger.DebugContext(ctx, "embedding cache miss", "cache_key", key)
		return nil, false
	}
	if err != nil {
		logger.WarnContext(ctx, "failed to load embedding cache", "cache_key", key, "error", err)
		return nil, false
	}
	if entry.ChunkCount != n || len(entry.Vectors) != n {
		logger.WarnContext(ctx, "embedding cache entry does not match chunk set",
			"cache_key", key,
			"cached_chunks", entry.ChunkCount,
			"cached_vectors", len(entry.Vectors),
			"chunks", n,
		)
		return nil, false
	}
	return entry.Vectors, true
}

// embedAll embeds chunks in batches. A failed or mis-shaped batch falls back
// to one call per chunk; a failed chunk gets a zero vector.
func (b *Builder) embedAll(ctx context.Context, chunks []Chunk, stats *IndexStats) ([][]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)
	vectors := make([][]float32, len(chunks))

	for start := 0; start < len(chunks); start += b.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("failed to build embedding index: %w", err)
		}

		end := min(start+b.opts.BatchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		stats.Batches++
		batch, err := b.embedder.EmbedDocuments(ctx, texts)
		if err == nil && len(batch) == len(texts) {
			copy(vectors[start:end], batch)
			continue
		}

		stats.BatchFallbacks++
		logger.WarnContext(ctx, "batch embedding failed, embedding chunks individually",
			"batch_start", start,
			"batch_size", len(texts),
			"returned", len(batch),
			"error", err,
		)

		for i := start; i < end; i++ {
			vec, err := b.embedder.EmbedDocument(ctx, chunks[i].Content)
			if err != nil {
				logger.WarnContext(ctx, "chunk embedding failed, using zero vector",
					"chunk", chunks[i].ID(),
					"error", err,
				)
				continue
			}
			vectors[i] = vec
		}
	}

	dim := dimensionOf(vectors, b.opts.Dimension)
	for i, vec := range vectors {
		if len(vec) == dim {
			continue
		}
		if len(vec) > 0 {
			logger.WarnContext(ctx, "chunk embedding has unexpected dimension, using zero vector",
				"chunk", chunks[i].ID(),
				"dimension", len(vec),
				"want", dim,
			)
		}
		vectors[i] = make([]float32, dim)
		stats.ZeroVectors++
	}
	stats.Dimension = dim

	return vectors, nil
}

// dimensionOf returns the length of the first non-empty vector, or fallback.
func dimensionOf(vectors [][]float32, fallback int) int {
	for _, v := range vectors {
		if len(v) > 0 {
			return len(v)
		}
	}
	return fallback
}
