package indexer

import (
	"math"
	"sort"
	"unicode/utf8"
)

// defaultCharsPerToken approximates token counts from rune counts when no
// ratio is configured.
const defaultCharsPerToken = 2

// IndexStats describes one index build.
type IndexStats struct {
	// Chunks is the number of chunks in the index.
	Chunks int `json:"chunks"`
	// CacheHit reports whether vectors came from the embedding cache.
	CacheHit bool `json:"cache_hit"`
	// Batches is the number of batch embedding calls made.
	Batches int `json:"batches"`
	// BatchFallbacks is the number of batches re-embedded chunk by chunk.
	BatchFallbacks int `json:"batch_fallbacks"`
	// ZeroVectors is the number of chunks whose embedding failed.
	ZeroVectors int `json:"zero_vectors"`
	// Dimension is the vector length.
	Dimension int `json:"dimension"`
	// ChunkTokenStats summarizes estimated tokens per chunk.
	ChunkTokenStats ChunkTokenStats `json:"chunk_token_stats"`
}

// ChunkTokenStats contains statistics about token counts in chunks.
type ChunkTokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

func newIndexStats(chunks []Chunk, charsPerToken int) IndexStats {
	if charsPerToken <= 0 {
		charsPerToken = defaultCharsPerToken
	}
	tokenCounts := make([]int, 0, len(chunks))
	for _, c := range chunks {
		tokens := int(math.Round(float64(utf8.RuneCountInString(c.Content)) / float64(charsPerToken)))
		tokenCounts = append(tokenCounts, max(tokens, 1))
	}
	return IndexStats{
		Chunks:          len(chunks),
		ChunkTokenStats: computeTokenStats(tokenCounts),
	}
}

// computeTokenStats computes min, max, mean, and p95 from token counts.
func computeTokenStats(tokenCounts []int) ChunkTokenStats {
	if len(tokenCounts) == 0 {
		return ChunkTokenStats{}
	}

	sorted := make([]int, len(tokenCounts))
	copy(sorted, tokenCounts)
	sort.Ints(sorted)

	sum := 0
	for _, count := range tokenCounts {
		sum += count
	}
	mean := float64(sum) / float64(len(tokenCounts))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	return ChunkTokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}
