package rag

import (
	"context"
	"slices"
	"strings"

	"grant-assistant/internal/contextutil"
	"grant-assistant/internal/indexer"
	"grant-assistant/internal/llm"
	"grant-assistant/internal/questions"
)

const (
	// individualSearchLimit is the largest batch searched question by question.
	individualSearchLimit = 3
	// refineSample is how many leading questions get their own search in
	// combined-query mode.
	refineSample = 3

	noInfoTailoring = "Unable to tailor responses - no relevant information found in knowledge base."
	noInfoFit       = "Unable to assess fit - no relevant information found in knowledge base to compare against sponsor requirements."
)

// Retriever finds chunks relevant to a query.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) []ScoredChunk
}

// Engine answers batches of questions with one generation call per batch.
type Engine struct {
	retriever Retriever
	generator Generator
	prompts   *PromptBuilder
	params    llm.GenerateParams
}

// NewEngine creates an Engine.
func NewEngine(retriever Retriever, generator Generator, prompts *PromptBuilder, params llm.GenerateParams) *Engine {
	return &Engine{
		retriever: retriever,
		generator: generator,
		prompts:   prompts,
		params:    params,
	}
}

type chunkKey struct {
	path  string
	start int
}

// retrieval pools chunks across searches and tracks which documents fed
// each question.
type retrieval struct {
	pool    []indexer.Chunk
	seen    map[chunkKey]struct{}
	sources map[string]map[string]struct{}
	titles  map[string]string
}

func newRetrieval(qs []string) *retrieval {
	r := &retrieval{
		seen:    make(map[chunkKey]struct{}),
		sources: make(map[string]map[string]struct{}, len(qs)),
		titles:  make(map[string]string),
	}
	for _, q := range qs {
		r.sources[q] = make(map[string]struct{})
	}
	return r
}

func (r *retrieval) add(hits []ScoredChunk, attributeTo ...string) {
	for _, h := range hits {
		key := chunkKey{path: h.Path, start: h.StartLine}
		if _, ok := r.seen[key]; !ok {
			r.seen[key] = struct{}{}
			r.pool = append(r.pool, h.Chunk)
		}
		if h.Title != "" {
			r.titles[h.Path] = h.Title
		}
		for _, q := range attributeTo {
			r.sources[q][h.Path] = struct{}{}
		}
	}
}

func (r *retrieval) sourcesFor(q string) []string {
	out := make([]string, 0, len(r.sources[q]))
	for p := range r.sources[q] {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

func (r *retrieval) titlesFor(sources []string) map[string]string {
	var out map[string]string
	for _, p := range sources {
		if t, ok := r.titles[p]; ok {
			if out == nil {
				out = make(map[string]string, len(sources))
			}
			out[p] = t
		}
	}
	return out
}

// AnswerBatch answers every distinct question in input. The result holds
// exactly one answer per distinct question whatever fails along the way.
func (e *Engine) AnswerBatch(ctx context.Context, input []string, topK int, sponsorContext string) *BatchResult {
	logger := contextutil.LoggerFromContext(ctx)

	qs := questions.Dedupe(input)
	tailored := strings.TrimSpace(sponsorContext) != ""

	result := &BatchResult{
		Questions: qs,
		Answers:   make(map[string]AnswerRecord, len(qs)),
		Tailored:  tailored,
	}
	if len(qs) == 0 {
		return result
	}

	r := e.retrieve(ctx, qs, topK)
	logger.InfoContext(ctx, "retrieval completed", "questions", len(qs), "chunks", len(r.pool), "tailored", tailored)

	if len(r.pool) == 0 {
		for _, q := range qs {
			result.Answers[q] = AnswerRecord{Question: q, Answer: NoInformationAnswer, Sources: []string{}}
		}
		if tailored {
			result.TailoringExplanation = noInfoTailoring
			result.FitExplanation = noInfoFit
		}
		return result
	}

	prompt := e.prompts.Build(qs, r.pool, sponsorContext)
	logger.InfoContext(ctx, "generating answers",
		"context_chunks", prompt.Chunks,
		"dropped_chunks", prompt.Dropped,
		"estimated_tokens", prompt.EstimatedTokens,
	)

	var out BatchOutput
	raw, err := e.generator.Generate(ctx, prompt.Text, e.params)
	if err != nil {
		logger.WarnContext(ctx, "generation failed", "error", err, "rate_limited", llm.IsRateLimited(err))
		out = GenerationFailure(err, qs, tailored)
	} else {
		out = Extract(raw, qs, tailored)
		logger.DebugContext(ctx, "model output extracted", "output_chars", len(raw))
	}

	answers := out.AnswerMap()
	for _, q := range qs {
		sources := r.sourcesFor(q)
		result.Answers[q] = AnswerRecord{Question: q, Answer: answers[q], Sources: sources, Titles: r.titlesFor(sources)}
	}
	if t, ok := out.(TailoredAnswers); ok {
		result.TailoringExplanation = t.TailoringExplanation
		result.FitScore = t.FitScore
		result.FitExplanation = t.FitExplanation
	}
	return result
}

// retrieve searches each question of a small batch individually. Larger
// batches get one combined keyword query plus refinement searches for the
// first few questions.
func (e *Engine) retrieve(ctx context.Context, qs []string, topK int) *retrieval {
	r := newRetrieval(qs)

	if len(qs) <= individualSearchLimit {
		for _, q := range qs {
			r.add(e.retriever.Search(ctx, q, topK), q)
		}
		return r
	}

	if query := combinedQuery(qs); query != "" {
		r.add(e.retriever.Search(ctx, query, topK*2), qs...)
	}
	if k := topK / 2; k > 0 {
		for _, q := range qs[:min(refineSample, len(qs))] {
			r.add(e.retriever.Search(ctx, q, k), q)
		}
	}
	return r
}
