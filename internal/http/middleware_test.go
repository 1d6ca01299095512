package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"grant-assistant/internal/contextutil"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantID   func(string) bool
	}{
		{
			name:     "incoming correlation ID is reused",
			incoming: "req-123",
			wantID:   func(id string) bool { return id == "req-123" },
		},
		{
			name:   "new correlation ID is generated",
			wantID: func(id string) bool { return len(id) == 36 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctxID string
			var ctxLogger *slog.Logger
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = contextutil.CorrelationIDFromContext(r.Context())
				ctxLogger = contextutil.LoggerFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incoming != "" {
				req.Header.Set(CorrelationIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()

			LoggerMiddleware(handler).ServeHTTP(w, req)

			if !tt.wantID(ctxID) {
				t.Errorf("correlation ID in context = %q", ctxID)
			}
			if got := w.Header().Get(CorrelationIDHeader); got != ctxID {
				t.Errorf("response %s = %q, want %q", CorrelationIDHeader, got, ctxID)
			}
			if ctxLogger == slog.Default() {
				t.Error("LoggerMiddleware() did not add a request logger to the context")
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		statusCode int
	}{
		{name: "regular request", path: "/api/generate", statusCode: http.StatusOK},
		{name: "health check", path: "/healthz", statusCode: http.StatusOK},
		{name: "failed request", path: "/api/generate", statusCode: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			w := httptest.NewRecorder()
			RequestLogger(handler).ServeHTTP(w, httptest.NewRequest(http.MethodPost, tt.path, nil))

			if w.Code != tt.statusCode {
				t.Errorf("RequestLogger() status = %v, want %v", w.Code, tt.statusCode)
			}
		})
	}
}

func TestResponseWriter_WriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("responseWriter.WriteHeader() statusCode = %v, want %v", rw.statusCode, http.StatusNotFound)
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("responseWriter.WriteHeader() underlying status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestCORS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		allowed        []string
		method         string
		origin         string
		wantStatusCode int
		wantOrigin     string
	}{
		{
			name:           "preflight OPTIONS",
			allowed:        []string{"*"},
			method:         http.MethodOptions,
			origin:         "http://localhost:3000",
			wantStatusCode: http.StatusNoContent,
			wantOrigin:     "http://localhost:3000",
		},
		{
			name:           "wildcard without origin",
			allowed:        []string{"*"},
			method:         http.MethodPost,
			wantStatusCode: http.StatusOK,
			wantOrigin:     "*",
		},
		{
			name:           "listed origin",
			allowed:        []string{"https://grants.example.org"},
			method:         http.MethodPost,
			origin:         "https://grants.example.org",
			wantStatusCode: http.StatusOK,
			wantOrigin:     "https://grants.example.org",
		},
		{
			name:           "unlisted origin",
			allowed:        []string{"https://grants.example.org"},
			method:         http.MethodPost,
			origin:         "https://evil.example.com",
			wantStatusCode: http.StatusOK,
			wantOrigin:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			CORS(tt.allowed)(handler).ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Errorf("CORS() status = %v, want %v", w.Code, tt.wantStatusCode)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
				t.Errorf("Access-Control-Allow-Methods = %q", got)
			}
		})
	}
}
