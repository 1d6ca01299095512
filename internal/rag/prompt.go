package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"grant-assistant/internal/indexer"
)

const contextSeparator = "\n\n---\n\n"

// Tier labels shown to the model, highest priority first.
const (
	TierQuantitative = "QUANTITATIVE DATA"
	TierQualitative  = "QUALITATIVE INFO"
	TierExample      = "GRANT EXAMPLE"
	TierContact      = "CONTACT INFO"
)

// TierOf maps a priority weight to its tier rank (0 is highest) and label.
func TierOf(priority float64) (int, string) {
	switch {
	case priority >= 4.0:
		return 0, TierQuantitative
	case priority >= 3.0:
		return 1, TierQualitative
	case priority >= 2.0:
		return 2, TierExample
	default:
		return 3, TierContact
	}
}

// PromptConfig bounds and personalizes prompts.
type PromptConfig struct {
	OrganizationName string
	MaxContextTokens int
	CharsPerToken    int
	MinChunks        int
	MaxTrimPasses    int
}

// DefaultPromptConfig returns the standard prompt bounds.
func DefaultPromptConfig() PromptConfig {
	return PromptConfig{
		OrganizationName: "the organization",
		MaxContextTokens: 1_000_000,
		CharsPerToken:    2,
		MinChunks:        10,
		MaxTrimPasses:    50,
	}
}

// Prompt is a rendered generation request.
type Prompt struct {
	Text            string
	Tailored        bool
	Chunks          int
	Dropped         int
	EstimatedTokens int
}

// PromptBuilder renders one generation request for a batch of questions.
type PromptBuilder struct {
	cfg PromptConfig
}

// NewPromptBuilder creates a PromptBuilder; zero fields take defaults.
func NewPromptBuilder(cfg PromptConfig) *PromptBuilder {
	def := DefaultPromptConfig()
	if cfg.OrganizationName == "" {
		cfg.OrganizationName = def.OrganizationName
	}
	if cfg.MaxContextTokens <= 0 {
		cfg.MaxContextTokens = def.MaxContextTokens
	}
	if cfg.CharsPerToken <= 0 {
		cfg.CharsPerToken = def.CharsPerToken
	}
	if cfg.MinChunks <= 0 {
		cfg.MinChunks = def.MinChunks
	}
	if cfg.MaxTrimPasses <= 0 {
		cfg.MaxTrimPasses = def.MaxTrimPasses
	}
	return &PromptBuilder{cfg: cfg}
}

// EstimateTokens approximates the token count of text.
func (b *PromptBuilder) EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / b.cfg.CharsPerToken
}

// Build orders chunks by tier and renders the prompt. When the estimate
// exceeds the budget, the lowest-priority chunks are dropped one per pass
// until it fits, the chunk floor is reached or the pass limit is hit. The
// sponsor context is always kept whole.
func (b *PromptBuilder) Build(questions []string, chunks []indexer.Chunk, sponsorContext string) Prompt {
	sponsorContext = strings.TrimSpace(sponsorContext)
	ordered := orderByTier(chunks)

	text := b.render(questions, ordered, sponsorContext)
	tokens := b.EstimateTokens(text)
	for pass := 0; tokens > b.cfg.MaxContextTokens && pass < b.cfg.MaxTrimPasses && len(ordered) > b.cfg.MinChunks; pass++ {
		ordered = ordered[:len(ordered)-1]
		text = b.render(questions, ordered, sponsorContext)
		tokens = b.EstimateTokens(text)
	}

	return Prompt{
		Text:            text,
		Tailored:        sponsorContext != "",
		Chunks:          len(ordered),
		Dropped:         len(chunks) - len(ordered),
		EstimatedTokens: tokens,
	}
}

// orderByTier concatenates tiers highest first, keeping input order within
// a tier.
func orderByTier(chunks []indexer.Chunk) []indexer.Chunk {
	var tiers [4][]indexer.Chunk
	for _, c := range chunks {
		rank, _ := TierOf(c.Priority)
		tiers[rank] = append(tiers[rank], c)
	}
	out := make([]indexer.Chunk, 0, len(chunks))
	for _, t := range tiers {
		out = append(out, t...)
	}
	return out
}

func (b *PromptBuilder) render(questions []string, chunks []indexer.Chunk, sponsorContext string) string {
	tailored := sponsorContext != ""
	org := b.cfg.OrganizationName

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an experienced grant writer preparing application answers for %s.", org)
	if tailored {
		sb.WriteString(" This application is for a specific sponsor; align every answer with the sponsor context below.")
	}
	sb.WriteString("\n\nRULES:\n")
	fmt.Fprintf(&sb, "- Use only facts found in the knowledge base context. Never invent numbers, programs or capabilities for %s.\n", org)
	sb.WriteString("- Lead with concrete statistics from QUANTITATIVE DATA where they are relevant.\n")
	sb.WriteString("- Never state past donation or fundraising totals, gift counts or current funding, even if they appear in the context. Discuss project costs and needs instead.\n")
	sb.WriteString("- Keep answers concise: 2 to 4 paragraphs for open questions, 2 to 4 sentences for simple facts such as an address.\n")

	if tailored {
		sb.WriteString("\nSPONSOR CONTEXT:\n")
		if hints := ExtractSponsorHints(sponsorContext); !hints.Empty() {
			sb.WriteString("Quick reference:\n")
			if hints.Name != "" {
				fmt.Fprintf(&sb, "- Sponsor/Funder: %s\n", hints.Name)
			}
			if hints.HasFocusAreas {
				sb.WriteString("- Key focus areas: referenced in the context below\n")
			}
			if hints.HasRequirements {
				sb.WriteString("- Specific requirements: referenced in the context below\n")
			}
			if len(hints.Amounts) > 0 {
				fmt.Fprintf(&sb, "- Grant amount: %s\n", strings.Join(hints.Amounts, ", "))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("Full sponsor context:\n")
		sb.WriteString(sponsorContext)
		sb.WriteString("\n\nUse the sponsor's language, address its stated requirements and emphasize the real programs that match its priorities.\n")
	}

	sb.WriteString("\nKNOWLEDGE BASE CONTEXT:\n")
	sections := make([]string, 0, len(chunks))
	for _, c := range chunks {
		_, label := TierOf(c.Priority)
		header := fmt.Sprintf("[%s] Source: %s", label, c.Path)
		if c.Title != "" {
			header += "\nTitle: " + c.Title
		}
		sections = append(sections, header+"\n"+c.Content)
	}
	sb.WriteString(strings.Join(sections, contextSeparator))

	sb.WriteString("\n\nQUESTIONS:\n")
	for _, q := range questions {
		fmt.Fprintf(&sb, "- %s\n", q)
	}

	sb.WriteString("\nOUTPUT FORMAT:\n")
	if tailored {
		sb.WriteString(`Return a JSON object with four keys:
1. "answers": an object whose keys are the exact questions above and whose values are the answers.
2. "tailoring_explanation": 2 to 4 sentences on how the answers were aligned with this sponsor.
3. "fit_score": a number from 0.0 to 5.0 rating how well the organization fits this sponsor.
4. "fit_explanation": 4 to 6 honest sentences explaining the fit score, including any misalignment.
`)
	} else {
		sb.WriteString("Return a JSON object whose keys are the exact questions above and whose values are the answers.\n")
	}
	return sb.String()
}
