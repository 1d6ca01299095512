package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grant-assistant/internal/app"
	"grant-assistant/internal/config"
	"grant-assistant/internal/http"
	"grant-assistant/internal/service"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slog.SetDefault(app.NewLogger(cfg, os.Stdout))
	slog.Debug("Logging configured", "level", cfg.LogLevel().String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The knowledge base is indexed before the server accepts requests
	rt, err := app.Open(ctx, cfg, cfg.KBPath)
	if err != nil {
		log.Fatalf("Failed to open answering pipeline: %v", err)
	}
	defer func() {
		_ = rt.Close()
	}()
	stats := rt.Pipeline.Stats()
	slog.Info("Knowledge base indexed",
		"path", cfg.KBPath,
		"chunks", stats.Chunks,
		"cache_hit", stats.CacheHit,
		"backend", cfg.LLMBackend,
		"vector_store", cfg.VectorStore,
	)

	router := http.NewRouter(&http.Deps{
		GrantService:   service.NewGrantService(rt.Pipeline),
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("API server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed to start: %v", err)
	}
	slog.Info("API server stopped")
}
