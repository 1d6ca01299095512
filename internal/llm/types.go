package llm

import "context"

// GenerateParams controls a single generation call.
type GenerateParams struct {
	Temperature float32
	// MaxTokens caps the output length. 0 leaves the backend default.
	MaxTokens int
	TopP      float32
	TopK      int
	// JSON asks the backend for a JSON object response.
	JSON bool
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, params GenerateParams) (string, error)
}

// Backend is an embedding and generation provider.
type Backend interface {
	Generator
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// Name identifies the backend and embedding model, e.g. "gemini/text-embedding-004".
	Name() string
	Close() error
}
