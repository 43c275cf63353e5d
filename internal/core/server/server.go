// Package server owns the http.Server lifecycle: mounting the route tree
// behind the shared middleware stack and shutting down gracefully when the
// context is cancelled.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/internetofwater/nldi-go/internal/core/config"
	"github.com/internetofwater/nldi-go/internal/core/health"
	"github.com/internetofwater/nldi-go/internal/core/middleware"
	"github.com/internetofwater/nldi-go/internal/core/router"
	"github.com/internetofwater/nldi-go/internal/db"
)

// Run mounts app's route tree behind the middleware stack, starts the
// listener, and blocks until ctx is cancelled or the listener fails.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, app *router.App, gw *db.Gateway) error {
	root := chi.NewRouter()
	root.Use(middleware.Recover())
	root.Use(middleware.Logging(logger))
	root.Use(middleware.CORS())

	root.Get("/healthz", health.Liveness())
	root.Get("/readyz", health.Readiness(func() error { return gw.Ping(ctx) }))
	root.Get("/metrics", promhttp.Handler().ServeHTTP)
	root.Mount("/", router.New(app))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
