package handlers

import (
	"net/http"

	"grant-assistant/internal/contextutil"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "grant-assistant"

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ServeHTTP handles GET /healthz. The knowledge base is loaded before the
// server starts listening, so a running process is a healthy one.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	writeJSON(ctx, w, http.StatusOK, HealthResponse{Status: "ok", Service: ServiceName})
}
