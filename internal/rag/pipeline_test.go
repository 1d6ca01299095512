package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"grant-assistant/internal/llm"
	"grant-assistant/internal/rag/mocks"
	"grant-assistant/internal/storage"
)

// topicEmbedder places texts on two axes: statistics and addresses.
type topicEmbedder struct {
	documentCalls int
}

func (e *topicEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	v := []float32{0.1, 0.1}
	if strings.Contains(lower, "statistic") || strings.Contains(lower, "percent") {
		v[0] = 1
	}
	if strings.Contains(lower, "address") || strings.Contains(lower, "street") {
		v[1] = 1
	}
	return v
}

func (e *topicEmbedder) EmbedDocument(_ context.Context, text string) ([]float32, error) {
	e.documentCalls++
	return e.vector(text), nil
}

func (e *topicEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.documentCalls += len(texts)
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *topicEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func writeKB(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"quantitative/impact_stats.md": "# Impact\nOur key statistic: 85 percent of participants found stable housing.\n",
		"contact/office.md":            "# Office\nOur mailing address is 12 Harbor Street, Portland.\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestPipeline_EndToEnd(t *testing.T) {
	ctx := context.Background()
	root := writeKB(t)
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	embedder := &topicEmbedder{}

	q1, q2 := "What statistic do you report?", "What is your address?"
	gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, prompt string, params llm.GenerateParams) (string, error) {
			if !params.JSON {
				t.Error("generation params do not request JSON")
			}
			quant := strings.Index(prompt, "[QUANTITATIVE DATA] Source: quantitative/impact_stats.md")
			contact := strings.Index(prompt, "[CONTACT INFO] Source: contact/office.md")
			if quant < 0 || contact < 0 || quant > contact {
				t.Errorf("prompt tiers out of order: quantitative at %d, contact at %d", quant, contact)
			}
			if !strings.Contains(prompt, "Source: quantitative/impact_stats.md\nTitle: Impact\n") {
				t.Error("prompt header does not carry the document title")
			}
			return fmt.Sprintf(`{%q: "85 percent found stable housing.", %q: "12 Harbor Street, Portland."}`, q1, q2), nil
		})

	p, err := Open(ctx, root, DefaultOptions(), Deps{Embedder: embedder, Generator: gen})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	searcher := p.engine.retriever.(*Searcher)
	hits := searcher.Search(ctx, q1, 5)
	if len(hits) != 2 {
		t.Fatalf("Search() returned %d hits, want 2", len(hits))
	}
	if hits[0].Path != "quantitative/impact_stats.md" || hits[0].Score <= hits[1].Score {
		t.Errorf("Search() ranking = %v (%v, %v), want quantitative first", paths(hits), hits[0].Score, hits[1].Score)
	}

	result := p.Answer(ctx, []string{q1, q2}, "")

	if len(result.Answers) != 2 {
		t.Fatalf("len(Answers) = %d, want 2", len(result.Answers))
	}
	if src := result.Answers[q1].Sources; !slices.Contains(src, "quantitative/impact_stats.md") {
		t.Errorf("Sources[q1] = %v, want quantitative document", src)
	}
	if src := result.Answers[q2].Sources; !slices.Contains(src, "contact/office.md") {
		t.Errorf("Sources[q2] = %v, want contact document", src)
	}
	if title := result.Answers[q1].Titles["quantitative/impact_stats.md"]; title != "Impact" {
		t.Errorf("Titles[q1] = %q, want heading title", title)
	}
	if result.Answers[q2].Answer != "12 Harbor Street, Portland." {
		t.Errorf("Answers[q2] = %q", result.Answers[q2].Answer)
	}
	if result.FitScore != 0 || result.TailoringExplanation != "" || result.FitExplanation != "" {
		t.Errorf("untailored result has tailoring fields: %+v", result)
	}
}

func TestOpen_ReusesEmbeddingCache(t *testing.T) {
	ctx := context.Background()
	root := writeKB(t)
	cache := storage.NewFileCache(t.TempDir())
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)

	first := &topicEmbedder{}
	p, err := Open(ctx, root, DefaultOptions(), Deps{Embedder: first, Generator: gen, Cache: cache})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if p.Stats().CacheHit || first.documentCalls == 0 {
		t.Errorf("first Open() CacheHit = %v, embed calls = %d", p.Stats().CacheHit, first.documentCalls)
	}

	second := &topicEmbedder{}
	p, err = Open(ctx, root, DefaultOptions(), Deps{Embedder: second, Generator: gen, Cache: cache})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !p.Stats().CacheHit || second.documentCalls != 0 {
		t.Errorf("second Open() CacheHit = %v, embed calls = %d, want cache hit", p.Stats().CacheHit, second.documentCalls)
	}
}

func TestOpen_TokenStatsUseConfiguredRatio(t *testing.T) {
	ctx := context.Background()
	root := writeKB(t)
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)

	maxTokens := func(charsPerToken int) int {
		opts := DefaultOptions()
		opts.Prompt.CharsPerToken = charsPerToken
		p, err := Open(ctx, root, opts, Deps{Embedder: &topicEmbedder{}, Generator: gen})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		return p.Stats().ChunkTokenStats.Max
	}

	perRune, perFour := maxTokens(1), maxTokens(4)
	if perRune <= perFour || perRune < 4*perFour-2 {
		t.Errorf("ChunkTokenStats.Max = %d with 1 rune/token, %d with 4 runes/token", perRune, perFour)
	}
}

func TestOpen_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)

	if _, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing"), DefaultOptions(), Deps{Embedder: &topicEmbedder{}, Generator: gen}); err == nil {
		t.Error("Open() with missing root error = nil, want error")
	}
	if _, err := Open(context.Background(), t.TempDir(), DefaultOptions(), Deps{Generator: gen}); err == nil {
		t.Error("Open() without embedder error = nil, want error")
	}
}

func TestAnswer_EmptyKnowledgeBase(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)

	result, err := Answer(context.Background(), []string{"What is your mission?"}, "", t.TempDir(), DefaultOptions(), Deps{Embedder: &topicEmbedder{}, Generator: gen})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got := result.Answers["What is your mission?"].Answer; got != NoInformationAnswer {
		t.Errorf("Answer = %q, want %q", got, NoInformationAnswer)
	}
}
