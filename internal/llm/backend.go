package llm

import (
	"context"
	"fmt"

	"grant-assistant/internal/config"
)

// NewBackend builds the backend selected by cfg.LLMBackend.
func NewBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.LLMBackend {
	case config.BackendGemini:
		return NewGeminiBackend(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.GenerationModel)
	case config.BackendOpenAI:
		return NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIEmbeddingModel, cfg.OpenAIGenerationModel)
	default:
		return nil, fmt.Errorf("unknown LLM backend %q", cfg.LLMBackend)
	}
}

// GenerateParamsFromConfig returns the configured generation parameters with
// JSON output requested.
func GenerateParamsFromConfig(cfg *config.Config) GenerateParams {
	return GenerateParams{
		Temperature: cfg.GenerationTemperature,
		MaxTokens:   cfg.GenerationMaxTokens,
		TopP:        cfg.GenerationTopP,
		TopK:        cfg.GenerationTopK,
		JSON:        true,
	}
}
