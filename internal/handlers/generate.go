package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"grant-assistant/internal/contextutil"
	"grant-assistant/internal/service"
)

// maxRequestBytes bounds the size of a generate request body.
const maxRequestBytes = 1 << 20

// GenerateHandler handles HTTP requests for grant answer generation.
type GenerateHandler struct {
	grantService service.GrantService
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(grantService service.GrantService) *GenerateHandler {
	return &GenerateHandler{grantService: grantService}
}

// GenerateRequest represents the HTTP request payload for generation.
type GenerateRequest struct {
	GrantQuestions string `json:"grantQuestions"`
	GrantContext   string `json:"grantContext"`
}

// AnswerResult is one answered question.
type AnswerResult struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

// GenerateResponse represents the HTTP response payload for generation.
type GenerateResponse struct {
	Results              []AnswerResult `json:"results"`
	TailoringExplanation string         `json:"tailoring_explanation"`
	FitScore             float64        `json:"fit_score"`
	FitExplanation       string         `json:"fit_explanation"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles POST /api/generate.
func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	svcResp, err := h.grantService.Generate(ctx, service.GenerateRequest{
		Questions:      req.GrantQuestions,
		SponsorContext: req.GrantContext,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to generate answers")
		return
	}

	resp := GenerateResponse{
		Results:              make([]AnswerResult, 0, len(svcResp.Results)),
		TailoringExplanation: svcResp.TailoringExplanation,
		FitScore:             svcResp.FitScore,
		FitExplanation:       svcResp.FitExplanation,
	}
	for _, a := range svcResp.Results {
		sources := a.Sources
		if sources == nil {
			sources = []string{}
		}
		resp.Results = append(resp.Results, AnswerResult{
			Question: a.Question,
			Answer:   a.Answer,
			Sources:  sources,
		})
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

// handleServiceError maps service errors to HTTP status codes.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		logger.WarnContext(ctx, "request rejected", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Message))
		return
	}

	logger.ErrorContext(ctx, "service error", "error", err)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, service.ErrExternalService):
		writeError(w, http.StatusBadGateway, "External service error")
	default:
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
