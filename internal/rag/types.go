package rag

import (
	"context"

	"grant-assistant/internal/indexer"
	"grant-assistant/internal/llm"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_rag.go -package=mocks grant-assistant/internal/rag QueryEmbedder,Generator

// QueryEmbedder embeds search queries.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator produces model output for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, params llm.GenerateParams) (string, error)
}

// Fixed answer texts.
const (
	NoInformationAnswer = "No relevant information found in the knowledge base."
	MissingAnswer       = "Error: Could not generate an answer for this question. Please try rephrasing or check if the question is relevant to the organization's work."
	ParseErrorAnswer    = "Error: Could not parse JSON response"
	QuotaErrorAnswer    = "Error: API quota exceeded"
)

// ScoredChunk is a search hit with its ranking score.
type ScoredChunk struct {
	indexer.Chunk
	Score float64
}

// AnswerRecord is the answer to one question and the documents that fed it.
type AnswerRecord struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
	// Titles maps a source path to its document title when one was found.
	Titles map[string]string `json:"titles,omitempty"`
}

// BatchResult is the outcome of answering one batch of questions.
//
// Answers holds exactly one record per deduplicated input question. The
// tailoring fields are set only when sponsor context was supplied.
type BatchResult struct {
	Questions            []string                `json:"questions"`
	Answers              map[string]AnswerRecord `json:"answers"`
	Tailored             bool                    `json:"tailored"`
	TailoringExplanation string                  `json:"tailoring_explanation"`
	FitScore             float64                 `json:"fit_score"`
	FitExplanation       string                  `json:"fit_explanation"`
}

// Records returns the answer records in question order.
func (r *BatchResult) Records() []AnswerRecord {
	out := make([]AnswerRecord, 0, len(r.Questions))
	for _, q := range r.Questions {
		out = append(out, r.Answers[q])
	}
	return out
}
