package rag

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"grant-assistant/internal/contextutil"
	"grant-assistant/internal/indexer"
	"grant-assistant/internal/vectorstore"
)

const (
	semanticPriorityBoost = 0.1
	keywordPriorityBoost  = 0.2
	upsertBatchSize       = 256
)

// Searcher ranks index chunks against a query by priority-boosted cosine
// similarity, falling back to keyword overlap when the query cannot be
// embedded.
type Searcher struct {
	embedder   QueryEmbedder
	store      vectorstore.VectorStore
	collection string
	chunks     []indexer.Chunk
	positions  map[string]int
}

// NewSearcher mirrors the index vectors into store under collection and
// returns a Searcher over them.
func NewSearcher(ctx context.Context, idx *indexer.Index, embedder QueryEmbedder, store vectorstore.VectorStore, collection string) (*Searcher, error) {
	logger := contextutil.LoggerFromContext(ctx)

	s := &Searcher{
		embedder:   embedder,
		store:      store,
		collection: collection,
		chunks:     idx.Chunks,
		positions:  make(map[string]int, len(idx.Chunks)),
	}
	if len(idx.Chunks) == 0 {
		return s, nil
	}

	if err := store.EnsureCollection(ctx, collection, idx.Stats.Dimension); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	points := make([]vectorstore.Point, 0, len(idx.Chunks))
	for i, c := range idx.Chunks {
		id := pointID(i, c)
		s.positions[id] = i
		points = append(points, vectorstore.Point{
			ID:  id,
			Vec: idx.Vectors[i],
			Meta: map[string]any{
				"path":       c.Path,
				"start_line": c.StartLine,
				"end_line":   c.EndLine,
				"priority":   c.Priority,
			},
		})
	}
	for start := 0; start < len(points); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(points))
		if err := store.Upsert(ctx, collection, points[start:end]); err != nil {
			return nil, fmt.Errorf("failed to upsert chunk vectors: %w", err)
		}
	}

	logger.InfoContext(ctx, "search index ready", "collection", collection, "chunks", len(points))
	return s, nil
}

// pointID is unique per position since two chunks of one document can share
// a start line.
func pointID(position int, c indexer.Chunk) string {
	return vectorstore.PointID(fmt.Sprintf("%d:%s", position, c.ID()))
}

// Search returns up to topK chunks with a strictly positive score, best
// first. It never fails: embedding or store errors switch to keyword search.
func (s *Searcher) Search(ctx context.Context, query string, topK int) []ScoredChunk {
	logger := contextutil.LoggerFromContext(ctx)

	if topK <= 0 || len(s.chunks) == 0 {
		return nil
	}

	qvec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		logger.WarnContext(ctx, "query embedding failed, using keyword search", "error", err)
		return s.keywordSearch(query, topK)
	}
	// Every cosine score against a zero vector is 0, so nothing can rank.
	if vectorstore.IsZero(qvec) {
		logger.DebugContext(ctx, "query embedded to a zero vector, no semantic results")
		return nil
	}

	hits, err := s.store.Search(ctx, s.collection, qvec, len(s.chunks))
	if err != nil {
		logger.WarnContext(ctx, "vector search failed, using keyword search", "error", err)
		return s.keywordSearch(query, topK)
	}

	scored := make([]rankedChunk, 0, len(hits))
	for _, hit := range hits {
		pos, ok := s.positions[hit.PointID]
		if !ok {
			continue
		}
		c := s.chunks[pos]
		score := float64(hit.Score) * (1 + c.Priority*semanticPriorityBoost)
		if score <= 0 {
			continue
		}
		scored = append(scored, rankedChunk{pos: pos, ScoredChunk: ScoredChunk{Chunk: c, Score: score}})
	}

	results := topRanked(scored, topK)
	logger.DebugContext(ctx, "semantic search completed", "results", len(results), "top_k", topK)
	return results
}

// keywordSearch scores chunks by the number of distinct query words they
// contain.
func (s *Searcher) keywordSearch(query string, topK int) []ScoredChunk {
	words := wordSet(query)
	if len(words) == 0 {
		return nil
	}

	var scored []rankedChunk
	for i, c := range s.chunks {
		n := overlap(words, c.Content)
		if n == 0 {
			continue
		}
		scored = append(scored, rankedChunk{
			pos:         i,
			ScoredChunk: ScoredChunk{Chunk: c, Score: float64(n) * (1 + c.Priority*keywordPriorityBoost)},
		})
	}
	return topRanked(scored, topK)
}

type rankedChunk struct {
	ScoredChunk
	pos int
}

// topRanked orders by score, breaking ties by index position, and keeps topK.
func topRanked(scored []rankedChunk, topK int) []ScoredChunk {
	slices.SortFunc(scored, func(a, b rankedChunk) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.pos, b.pos)
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	out := make([]ScoredChunk, len(scored))
	for i, r := range scored {
		out[i] = r.ScoredChunk
	}
	return out
}
