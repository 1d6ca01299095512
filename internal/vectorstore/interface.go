package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks grant-assistant/internal/vectorstore VectorStore

import (
	"context"

	"github.com/google/uuid"
)

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
// Score is the cosine similarity between the query and the point.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns up to k points ordered by descending cosine similarity.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)
}

var pointNamespace = uuid.MustParse("6f1c2a4e-9b1d-4f8e-a3c5-2d7e8b9f0a11")

// PointID derives a stable UUID point ID from a name such as a chunk ID.
func PointID(name string) string {
	return uuid.NewSHA1(pointNamespace, []byte(name)).String()
}
