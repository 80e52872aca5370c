// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command metalmaster runs the МеталлМастер storefront API server. It
// serves the product catalog, user accounts, contact requests and site
// settings out of a single JSON data file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/metalmaster-go/internal/config"
	"github.com/olegiv/metalmaster-go/internal/handler"
	"github.com/olegiv/metalmaster-go/internal/logging"
	"github.com/olegiv/metalmaster-go/internal/middleware"
	"github.com/olegiv/metalmaster-go/internal/store"
	"github.com/olegiv/metalmaster-go/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "metalmaster - МеталлМастер storefront API server\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MM_SERVER_HOST         Bind host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MM_SERVER_PORT         Bind port (default: 3000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MM_DATA_FILE           JSON data file path (default: ./data.json)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MM_RATE_LIMIT_RPS      Per-IP rate on anonymous writes (default: 2)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MM_RATE_LIMIT_BURST    Burst on anonymous writes (default: 10)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MM_LOG_LEVEL           Log level: debug|info|warn|error (default: info)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("metalmaster %s (commit: %s, built: %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})

	// Keep recent WARN and ERROR records in memory alongside stdout.
	ring := logging.NewRingHandler(textHandler, logging.DefaultRingSize)
	logger := slog.New(ring)
	slog.SetDefault(logger)

	// Ensure the data directory exists
	dataDir := filepath.Dir(cfg.DataFile)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("opening data file", "path", cfg.DataFile)
	st, err := store.Open(cfg.DataFile, logger)
	if err != nil {
		return fmt.Errorf("opening data file: %w", err)
	}
	slog.Info("data file ready",
		"products", len(st.Data().Products),
		"users", len(st.Data().Users),
		"contacts", len(st.Data().Contacts),
	)

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Close()
	slog.Info("rate limiter initialized", "rps", cfg.RateLimitRPS, "burst", cfg.RateLimitBurst)

	h := handler.New(st, logger)
	h.SetRateLimiter(limiter.Middleware)
	r.Route("/api", h.Routes)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
