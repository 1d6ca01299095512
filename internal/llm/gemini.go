package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"grant-assistant/internal/contextutil"
)

// GeminiBackend talks to the Gemini API for embeddings and generation.
type GeminiBackend struct {
	client          *genai.Client
	embeddingModel  string
	generationModel string
}

// NewGeminiBackend creates a Gemini client. Extra options are appended after
// the API key, which lets tests point the client at a local endpoint.
func NewGeminiBackend(ctx context.Context, apiKey, embeddingModel, generationModel string, opts ...option.ClientOption) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingCredential)
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiBackend{
		client:          client,
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
	}, nil
}

// Name returns the backend and embedding model identifier.
func (g *GeminiBackend) Name() string {
	return "gemini/" + g.embeddingModel
}

// Close releases the client.
func (g *GeminiBackend) Close() error {
	return g.client.Close()
}

// EmbedDocument embeds text for storage in the index.
func (g *GeminiBackend) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text, genai.TaskTypeRetrievalDocument)
}

// EmbedQuery embeds text for searching the index.
func (g *GeminiBackend) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text, genai.TaskTypeRetrievalQuery)
}

func (g *GeminiBackend) embed(ctx context.Context, text string, task genai.TaskType) ([]float32, error) {
	em := g.client.EmbeddingModel(g.embeddingModel)
	em.TaskType = task

	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errors.New("empty embedding returned")
	}
	return res.Embedding.Values, nil
}

// EmbedDocuments embeds texts with one batch request.
func (g *GeminiBackend) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	em := g.client.EmbeddingModel(g.embeddingModel)
	em.TaskType = genai.TaskTypeRetrievalDocument

	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to batch embed contents: %w", err)
	}
	if res == nil || len(res.Embeddings) != len(texts) {
		got := 0
		if res != nil {
			got = len(res.Embeddings)
		}
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), got)
	}

	vectors := make([][]float32, len(texts))
	for i, e := range res.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("embedding %d is empty", i)
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}

// Generate runs one content generation request.
func (g *GeminiBackend) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	model := g.client.GenerativeModel(g.generationModel)
	model.SetTemperature(params.Temperature)
	if params.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(params.MaxTokens))
	}
	if params.TopP > 0 {
		model.SetTopP(params.TopP)
	}
	if params.TopK > 0 {
		model.SetTopK(int32(params.TopK))
	}
	if params.JSON {
		model.ResponseMIMEType = "application/json"
	}

	logger.DebugContext(ctx, "generating content", "model", g.generationModel, "prompt_chars", len(prompt))
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return responseText(resp)
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no candidates returned")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("candidate has no text")
	}
	return b.String(), nil
}
