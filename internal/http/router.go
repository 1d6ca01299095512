package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"grant-assistant/internal/handlers"
	"grant-assistant/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	GrantService   service.GrantService
	AllowedOrigins []string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS(deps.AllowedOrigins))

	r.Method(http.MethodGet, healthPath, handlers.NewHealthHandler())

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/generate", handlers.NewGenerateHandler(deps.GrantService))
	})

	return r
}
