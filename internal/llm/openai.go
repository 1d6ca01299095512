package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	oaioption "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"grant-assistant/internal/contextutil"
)

// OpenAIBackend talks to any OpenAI-compatible API.
type OpenAIBackend struct {
	client          openai.Client
	embeddingModel  string
	generationModel string
}

// NewOpenAIBackend creates an OpenAI client. baseURL may be empty for the
// public API.
func NewOpenAIBackend(apiKey, baseURL, embeddingModel, generationModel string) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingCredential)
	}

	opts := []oaioption.RequestOption{
		oaioption.WithAPIKey(apiKey),
		// retries are owned by RetryingGenerator and the index builder fallbacks
		oaioption.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, oaioption.WithBaseURL(baseURL))
	}

	return &OpenAIBackend{
		client:          openai.NewClient(opts...),
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
	}, nil
}

// Name returns the backend and embedding model identifier.
func (o *OpenAIBackend) Name() string {
	return "openai/" + o.embeddingModel
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (o *OpenAIBackend) Close() error {
	return nil
}

// EmbedDocument embeds one text.
func (o *OpenAIBackend) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	vectors, err := o.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedQuery embeds a search query. OpenAI models use one task type.
func (o *OpenAIBackend) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return o.EmbedDocument(ctx, text)
}

// EmbedDocuments embeds texts with one request. Results are placed by the
// index the API reports.
func (o *OpenAIBackend) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(o.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) || vectors[d.Index] != nil {
			return nil, fmt.Errorf("unexpected embedding index %d", d.Index)
		}
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("embedding %d is empty", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		vectors[d.Index] = vec
	}
	return vectors, nil
}

// Generate runs one chat completion with the prompt as the user message.
func (o *OpenAIBackend) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	req := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.generationModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(float64(params.Temperature)),
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = openai.Int(int64(params.MaxTokens))
	}
	if params.TopP > 0 {
		req.TopP = openai.Float(float64(params.TopP))
	}
	if params.JSON {
		req.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	logger.DebugContext(ctx, "generating content", "model", o.generationModel, "prompt_chars", len(prompt))
	resp, err := o.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
