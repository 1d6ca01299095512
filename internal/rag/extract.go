package rag

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"grant-assistant/internal/llm"
	"grant-assistant/internal/questions"
)

// Placeholder explanations used when the model output lacks them.
const (
	DefaultTailoringExplanation = "Responses were tailored based on sponsor context."
	DefaultFitExplanation       = "No fit analysis available."

	parseErrorTailoring = "Unable to generate tailoring explanation due to parsing error."
	parseErrorFit       = "Unable to generate fit analysis due to parsing error."
	quotaErrorTailoring = "Unable to generate tailoring explanation due to API error."
	quotaErrorFit       = "Unable to generate fit analysis due to API error."
	errorTailoring      = "Unable to generate tailoring explanation due to error."
	errorFit            = "Unable to generate fit analysis due to error."
)

// BatchOutput is the extracted model output for a batch: either
// PlainAnswers or TailoredAnswers, decided by whether sponsor context was
// supplied.
type BatchOutput interface {
	// AnswerMap has exactly one entry per requested question.
	AnswerMap() map[string]string
	isBatchOutput()
}

// PlainAnswers is the output shape without sponsor context.
type PlainAnswers struct {
	Answers map[string]string
}

// TailoredAnswers is the output shape with sponsor context.
type TailoredAnswers struct {
	Answers              map[string]string
	TailoringExplanation string
	FitScore             float64
	FitExplanation       string
}

func (p PlainAnswers) AnswerMap() map[string]string    { return p.Answers }
func (t TailoredAnswers) AnswerMap() map[string]string { return t.Answers }
func (PlainAnswers) isBatchOutput()                    {}
func (TailoredAnswers) isBatchOutput()                 {}

var (
	jsonFenceRe  = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	plainFenceRe = regexp.MustCompile("(?s)```\\s*(.*?)```")
)

// Extract parses raw model output into a fully populated BatchOutput. It
// never fails: unparseable output maps every question to an error answer.
func Extract(raw string, qs []string, tailored bool) BatchOutput {
	obj, ok := parseObject(raw)
	if !ok {
		return fill(qs, ParseErrorAnswer, tailored, parseErrorTailoring, parseErrorFit)
	}

	answers, hasAnswers := obj["answers"].(map[string]any)
	if !hasAnswers {
		answers = obj
	}

	if !tailored {
		return PlainAnswers{Answers: alignAnswers(qs, answers)}
	}

	out := TailoredAnswers{
		Answers:              alignAnswers(qs, answers),
		TailoringExplanation: DefaultTailoringExplanation,
		FitExplanation:       DefaultFitExplanation,
	}
	if hasAnswers {
		if s, ok := obj["tailoring_explanation"].(string); ok && strings.TrimSpace(s) != "" {
			out.TailoringExplanation = s
		}
		if s, ok := obj["fit_explanation"].(string); ok && strings.TrimSpace(s) != "" {
			out.FitExplanation = s
		}
		out.FitScore = parseFitScore(obj["fit_score"])
	}
	return out
}

// GenerationFailure builds the output for a failed generation call.
func GenerationFailure(err error, qs []string, tailored bool) BatchOutput {
	if llm.IsRateLimited(err) {
		return fill(qs, QuotaErrorAnswer, tailored, quotaErrorTailoring, quotaErrorFit)
	}
	return fill(qs, "Error: "+err.Error(), tailored, errorTailoring, errorFit)
}

func fill(qs []string, answer string, tailored bool, tailoring, fit string) BatchOutput {
	answers := make(map[string]string, len(qs))
	for _, q := range qs {
		answers[q] = answer
	}
	if !tailored {
		return PlainAnswers{Answers: answers}
	}
	return TailoredAnswers{Answers: answers, TailoringExplanation: tailoring, FitExplanation: fit}
}

// parseObject finds a JSON object in raw: the whole text, a ```json fence, a
// plain ``` fence, then the outermost braces.
func parseObject(raw string) (map[string]any, bool) {
	raw = strings.TrimSpace(raw)
	candidates := []string{raw}
	if m := jsonFenceRe.FindStringSubmatch(raw); m != nil {
		candidates = append(candidates, m[1])
	}
	if m := plainFenceRe.FindStringSubmatch(raw); m != nil {
		candidates = append(candidates, m[1])
	}
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		candidates = append(candidates, raw[start:end+1])
	}

	for _, c := range candidates {
		var obj map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(c)), &obj); err == nil && obj != nil {
			return obj, true
		}
	}
	return nil, false
}

// alignAnswers picks one answer per question: an exact key first, then a
// key equal under case and whitespace folding. Unrequested keys are dropped.
func alignAnswers(qs []string, m map[string]any) map[string]string {
	folded := make(map[string]any, len(m))
	for k, v := range m {
		key := questions.Key(k)
		if _, dup := folded[key]; !dup {
			folded[key] = v
		}
	}

	out := make(map[string]string, len(qs))
	for _, q := range qs {
		v, ok := m[q]
		if !ok {
			v, ok = folded[questions.Key(q)]
		}
		if !ok || v == nil {
			out[q] = MissingAnswer
			continue
		}
		out[q] = answerText(v)
	}
	return out
}

func answerText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// parseFitScore accepts a number or numeric string and clamps it to [0,5].
func parseFitScore(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return math.Min(5, math.Max(0, f))
}
