package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_answerer.go -package=mocks grant-assistant/internal/service Answerer
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_grant_service.go -package=mocks -mock_names=GrantService=MockGrantService grant-assistant/internal/service GrantService

import (
	"context"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"grant-assistant/internal/contextutil"
	"grant-assistant/internal/questions"
	"grant-assistant/internal/rag"
)

// Answerer answers a batch of grant questions.
// This interface is defined from the service layer's perspective (consumer-first).
type Answerer interface {
	Answer(ctx context.Context, questions []string, sponsorContext string) *rag.BatchResult
}

// GenerateRequest is a grant answer request in the domain layer.
type GenerateRequest struct {
	// Questions is freeform pasted text; it is parsed into questions.
	Questions string
	// SponsorContext optionally describes the funder.
	SponsorContext string
}

// GeneratedAnswer is the answer to one question with display labels for
// its sources.
type GeneratedAnswer struct {
	Question string
	Answer   string
	Sources  []string
}

// GenerateResponse holds answers in question order.
type GenerateResponse struct {
	Results              []GeneratedAnswer
	Tailored             bool
	TailoringExplanation string
	FitScore             float64
	FitExplanation       string
}

// GrantService answers grant application questions.
type GrantService interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}

type grantService struct {
	answerer Answerer
}

// NewGrantService creates a new GrantService.
func NewGrantService(answerer Answerer) GrantService {
	return &grantService{answerer: answerer}
}

// Generate parses the request questions and answers them in one batch.
func (s *grantService) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	qs := questions.Parse(req.Questions)
	if len(qs) == 0 {
		logger.WarnContext(ctx, "no questions found in request", "input_length", len(req.Questions))
		return GenerateResponse{}, &ValidationError{
			Field:   "grantQuestions",
			Message: "no questions found",
		}
	}

	result := s.answerer.Answer(ctx, qs, req.SponsorContext)
	if result == nil {
		return GenerateResponse{}, WrapError(ErrExternalService, "answer pipeline returned no result")
	}

	resp := GenerateResponse{
		Results:              make([]GeneratedAnswer, 0, len(result.Questions)),
		Tailored:             result.Tailored,
		TailoringExplanation: result.TailoringExplanation,
		FitScore:             result.FitScore,
		FitExplanation:       result.FitExplanation,
	}
	for _, rec := range result.Records() {
		labels := make([]string, 0, len(rec.Sources))
		for _, src := range rec.Sources {
			labels = append(labels, SourceLabel(src, rec.Titles[src]))
		}
		resp.Results = append(resp.Results, GeneratedAnswer{
			Question: rec.Question,
			Answer:   rec.Answer,
			Sources:  labels,
		})
	}

	logger.InfoContext(ctx, "grant questions answered",
		"questions", len(resp.Results),
		"tailored", resp.Tailored,
	)
	return resp, nil
}

// SourceLabel renders a knowledge-base path as "Category → Name". Name is
// the document title when one was extracted, otherwise the file name.
// Documents at the root have no category.
func SourceLabel(relPath, title string) string {
	relPath = path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	dir, file := path.Split(relPath)
	name := strings.TrimSpace(title)
	if name == "" {
		name = titleCase(strings.TrimSuffix(file, path.Ext(file)))
	}

	category := path.Base(strings.TrimSuffix(dir, "/"))
	if dir == "" || category == "." || category == "/" {
		return name
	}
	return titleCase(category) + " → " + name
}

// titleCase turns "grant_examples" into "Grant Examples".
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
