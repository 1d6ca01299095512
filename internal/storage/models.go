package storage

import "time"

// CacheEntry is one cached embedding set for a chunk-set content hash.
type CacheEntry struct {
	ChunkCount int         // Number of chunks the vectors were computed for
	Dimension  int         // Length of every vector
	Vectors    [][]float32 // One vector per chunk, in chunk order
	CreatedAt  time.Time
}
