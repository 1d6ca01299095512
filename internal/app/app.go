// Package app wires configuration into a ready-to-use answering pipeline for
// the command-line and HTTP entry points.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"grant-assistant/internal/config"
	"grant-assistant/internal/llm"
	"grant-assistant/internal/rag"
	"grant-assistant/internal/storage"
	"grant-assistant/internal/vectorstore"
)

// NewLogger builds the process logger from the configured level and format.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// PipelineOptions maps configuration onto pipeline options. namespace keys
// the embedding cache, normally the backend and embedding model name.
func PipelineOptions(cfg *config.Config, namespace string) rag.Options {
	return rag.Options{
		ChunkSize:        cfg.ChunkSize,
		ChunkOverlap:     cfg.ChunkOverlap,
		TopK:             cfg.TopK,
		BatchSize:        cfg.EmbeddingBatchSize,
		Dimension:        cfg.EmbeddingDimension,
		Namespace:        namespace,
		CollectionPrefix: cfg.QdrantCollectionPrefix,
		Prompt: rag.PromptConfig{
			OrganizationName: cfg.OrganizationName,
			MaxContextTokens: cfg.MaxContextTokens,
			CharsPerToken:    cfg.CharsPerToken,
			MinChunks:        cfg.MinContextChunks,
			MaxTrimPasses:    cfg.MaxTrimPasses,
		},
		Generation: llm.GenerateParamsFromConfig(cfg),
	}
}

// Runtime is an open pipeline and the resources it holds.
type Runtime struct {
	Pipeline *rag.Pipeline
	closers  []func() error
}

// Close releases backend, cache and vector store connections.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	return errors.Join(errs...)
}

// Open builds the backend, embedding cache and vector store selected by cfg
// and loads the knowledge base under root.
func Open(ctx context.Context, cfg *config.Config, root string) (_ *Runtime, err error) {
	rt := &Runtime{}
	defer func() {
		if err != nil {
			_ = rt.Close()
		}
	}()

	backend, err := llm.NewBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM backend: %w", err)
	}
	rt.closers = append(rt.closers, backend.Close)

	cache, closeCache, err := NewCache(cfg)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, closeCache)

	var store vectorstore.VectorStore
	if cfg.VectorStore == config.VectorStoreQdrant {
		qs, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
		}
		rt.closers = append(rt.closers, qs.Close)
		store = qs
	}

	rt.Pipeline, err = rag.Open(ctx, root, PipelineOptions(cfg, backend.Name()), rag.Deps{
		Embedder:  backend,
		Generator: llm.NewRetryingGenerator(backend, cfg.GenerationMaxRetries, cfg.GenerationRetryInitial),
		Cache:     cache,
		Store:     store,
	})
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// NewCache opens the configured embedding cache. The returned func closes it.
func NewCache(cfg *config.Config) (storage.EmbeddingCache, func() error, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendSQLite:
		db, err := storage.Open(cfg.CacheDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open embedding cache: %w", err)
		}
		return storage.NewSQLiteCache(db), db.Close, nil
	default:
		return storage.NewFileCache(cfg.CacheDir), func() error { return nil }, nil
	}
}
