// Command ask answers grant questions from the command line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"grant-assistant/internal/app"
	"grant-assistant/internal/config"
	"grant-assistant/internal/contextutil"
	"grant-assistant/internal/questions"
	"grant-assistant/internal/rag"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	questions   string
	file        string
	sponsor     string
	sponsorFile string
	kbPath      string
	topK        int
	output      string
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.questions, "questions", "", "comma-separated questions")
	fs.StringVar(&o.file, "file", "", "file with pasted questions in any list format")
	fs.StringVar(&o.sponsor, "context", "", "sponsor context text")
	fs.StringVar(&o.sponsorFile, "context-file", "", "file with sponsor context")
	fs.StringVar(&o.kbPath, "kb-path", cfg.KBPath, "knowledge base directory")
	fs.IntVar(&o.topK, "top-k", cfg.TopK, "chunks retrieved per search")
	fs.StringVar(&o.output, "output", "", "write JSON results to this file instead of stdout")
	err := fs.Parse(args)
	return o, err
}

// collectQuestions merges -questions and -file input.
func collectQuestions(o options) ([]string, error) {
	var qs []string
	for _, q := range strings.Split(o.questions, ",") {
		if q = strings.TrimSpace(q); q != "" {
			qs = append(qs, q)
		}
	}
	if o.file != "" {
		raw, err := os.ReadFile(o.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read questions file: %w", err)
		}
		qs = append(qs, questions.Parse(string(raw))...)
	}
	return questions.Dedupe(qs), nil
}

func sponsorContext(o options) (string, error) {
	if o.sponsorFile == "" {
		return o.sponsor, nil
	}
	raw, err := os.ReadFile(o.sponsorFile)
	if err != nil {
		return "", fmt.Errorf("failed to read sponsor context file: %w", err)
	}
	return strings.TrimSpace(o.sponsor + "\n" + string(raw)), nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return 1
	}

	o, err := parseFlags(args, cfg, stderr)
	if err != nil {
		return 2
	}
	cfg.TopK = o.topK

	logger := app.NewLogger(cfg, stderr)

	qs, err := collectQuestions(o)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if len(qs) == 0 {
		fmt.Fprintln(stderr, "no questions given: use -questions or -file")
		return 1
	}
	sponsor, err := sponsorContext(o)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx = contextutil.WithLogger(ctx, logger)
	rt, err := app.Open(ctx, cfg, o.kbPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to open knowledge base: %v\n", err)
		return 1
	}
	defer func() { _ = rt.Close() }()

	result := rt.Pipeline.Answer(ctx, qs, sponsor)

	out := stdout
	if o.output != "" {
		f, err := os.Create(o.output)
		if err != nil {
			fmt.Fprintf(stderr, "failed to create output file: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	if err := writeResult(out, result); err != nil {
		fmt.Fprintf(stderr, "failed to write results: %v\n", err)
		return 1
	}
	return 0
}

type resultFile struct {
	Results              []rag.AnswerRecord `json:"results"`
	Tailored             bool               `json:"tailored"`
	TailoringExplanation string             `json:"tailoring_explanation,omitempty"`
	FitScore             float64            `json:"fit_score"`
	FitExplanation       string             `json:"fit_explanation,omitempty"`
}

func writeResult(w io.Writer, result *rag.BatchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(resultFile{
		Results:              result.Records(),
		Tailored:             result.Tailored,
		TailoringExplanation: result.TailoringExplanation,
		FitScore:             result.FitScore,
		FitExplanation:       result.FitExplanation,
	})
}
