package llm

import (
	"context"
	"errors"
	"testing"

	"grant-assistant/internal/config"
)

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.Config
		wantName string
		wantErr  error
	}{
		{
			name:     "openai",
			cfg:      &config.Config{LLMBackend: config.BackendOpenAI, OpenAIAPIKey: "sk", OpenAIEmbeddingModel: "text-embedding-3-small"},
			wantName: "openai/text-embedding-3-small",
		},
		{
			name:    "openai without key",
			cfg:     &config.Config{LLMBackend: config.BackendOpenAI},
			wantErr: ErrMissingCredential,
		},
		{
			name:    "gemini without key",
			cfg:     &config.Config{LLMBackend: config.BackendGemini},
			wantErr: ErrMissingCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBackend(context.Background(), tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewBackend() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			defer func() { _ = b.Close() }()
			if b.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", b.Name(), tt.wantName)
			}
		})
	}

	if _, err := NewBackend(context.Background(), &config.Config{LLMBackend: "llama"}); err == nil {
		t.Error("NewBackend() with unknown backend should return error")
	}
}

func TestGenerateParamsFromConfig(t *testing.T) {
	cfg := &config.Config{GenerationTemperature: 0.5, GenerationMaxTokens: 8000, GenerationTopP: 0.95, GenerationTopK: 40}
	got := GenerateParamsFromConfig(cfg)
	want := GenerateParams{Temperature: 0.5, MaxTokens: 8000, TopP: 0.95, TopK: 40, JSON: true}
	if got != want {
		t.Errorf("GenerateParamsFromConfig() = %+v, want %+v", got, want)
	}
}
