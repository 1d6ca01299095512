package rag

import (
	"context"
	"fmt"

	"grant-assistant/internal/contextutil"
	"grant-assistant/internal/indexer"
	"grant-assistant/internal/kb"
	"grant-assistant/internal/llm"
	"grant-assistant/internal/storage"
	"grant-assistant/internal/vectorstore"
)

// Options configures a Pipeline.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int

	// BatchSize, Dimension and Namespace are passed to the index builder.
	BatchSize int
	Dimension int
	Namespace string

	CollectionPrefix string

	Prompt     PromptConfig
	Generation llm.GenerateParams
}

// DefaultOptions returns the standard pipeline settings.
func DefaultOptions() Options {
	return Options{
		ChunkSize:        1000,
		ChunkOverlap:     200,
		TopK:             15,
		BatchSize:        100,
		Dimension:        768,
		CollectionPrefix: "grant_kb",
		Prompt:           DefaultPromptConfig(),
		Generation: llm.GenerateParams{
			Temperature: 0.5,
			MaxTokens:   8000,
			TopP:        0.95,
			TopK:        40,
			JSON:        true,
		},
	}
}

// Embedder embeds both knowledge-base chunks and search queries.
type Embedder interface {
	indexer.Embedder
	QueryEmbedder
}

// Deps are the external collaborators of a Pipeline.
type Deps struct {
	Embedder  Embedder
	Generator Generator
	// Cache may be nil to disable embedding caching.
	Cache storage.EmbeddingCache
	// Store defaults to an in-memory store.
	Store vectorstore.VectorStore
}

// Pipeline answers grant questions from one loaded knowledge base.
type Pipeline struct {
	index  *indexer.Index
	engine *Engine
	topK   int
}

// Open loads the knowledge base under root, builds or loads its embedding
// index and prepares the search store.
func Open(ctx context.Context, root string, opts Options, deps Deps) (*Pipeline, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if deps.Embedder == nil || deps.Generator == nil {
		return nil, fmt.Errorf("embedder and generator are required")
	}
	def := DefaultOptions()
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize, opts.ChunkOverlap = def.ChunkSize, def.ChunkOverlap
	}
	store := deps.Store
	if store == nil {
		store = vectorstore.NewMemoryStore()
	}

	docs, err := kb.NewLoader(root).LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}

	chunks := indexer.NewLineChunker(opts.ChunkSize, opts.ChunkOverlap).ChunkAll(docs)

	builder := indexer.NewBuilder(deps.Embedder, deps.Cache, indexer.Options{
		BatchSize: opts.BatchSize,
		Dimension: opts.Dimension,
		Namespace:     opts.Namespace,
		CharsPerToken: opts.Prompt.CharsPerToken,
	})
	idx, err := builder.Build(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to build embedding index: %w", err)
	}

	collection := vectorstore.CollectionName(opts.CollectionPrefix, idx.Key)
	searcher, err := NewSearcher(ctx, idx, deps.Embedder, store, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare search index: %w", err)
	}

	logger.InfoContext(ctx, "pipeline ready",
		"root", root,
		"documents", len(docs),
		"chunks", len(chunks),
		"cache_hit", idx.Stats.CacheHit,
	)

	return &Pipeline{
		index:  idx,
		engine: NewEngine(searcher, deps.Generator, NewPromptBuilder(opts.Prompt), opts.Generation),
		topK:   opts.TopK,
	}, nil
}

// Stats describes the loaded index.
func (p *Pipeline) Stats() indexer.IndexStats {
	return p.index.Stats
}

// Answer answers one batch of questions, tailored to sponsorContext when it
// is not blank.
func (p *Pipeline) Answer(ctx context.Context, qs []string, sponsorContext string) *BatchResult {
	return p.engine.AnswerBatch(ctx, qs, p.topK, sponsorContext)
}

// Answer opens a pipeline over root and answers one batch.
func Answer(ctx context.Context, qs []string, sponsorContext, root string, opts Options, deps Deps) (*BatchResult, error) {
	p, err := Open(ctx, root, opts, deps)
	if err != nil {
		return nil, err
	}
	return p.Answer(ctx, qs, sponsorContext), nil
}
