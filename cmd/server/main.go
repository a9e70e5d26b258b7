package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bossnova23/shopify-tracker/internal/config"
	"github.com/bossnova23/shopify-tracker/internal/database"
	"github.com/bossnova23/shopify-tracker/internal/handlers"
	"github.com/bossnova23/shopify-tracker/internal/repository"
	"github.com/bossnova23/shopify-tracker/internal/shopify"
	"github.com/bossnova23/shopify-tracker/internal/theme"
	"github.com/bossnova23/shopify-tracker/internal/tracker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from .env and the environment
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database ready", "dialect", db.Dialect.String())

	// Initialize repository and services
	repo := repository.New(db)
	themes := theme.NewService(repo, nil, nil)
	trk := tracker.NewService(repo, shopify.NewClient(nil, cfg.FetchTimeout), repository.RetryPolicy{
		Attempts: cfg.RetryAttempts,
		Backoff:  cfg.RetryBackoff,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(handlers.Services{DB: repo, Themes: themes, Tracker: trk}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
