// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

// Package main is the entry point for the AquaScope server.
//
// AquaScope is a water quality monitoring and alerting API. It tracks
// measurements of parameters such as pH, dissolved oxygen, and fecal
// coliform across monitored locations, derives per-location risk levels,
// and raises alerts when thresholds are breached.
//
// The server initializes components in this order:
//
//  1. Configuration: defaults, optional YAML file, environment overrides (Koanf v2)
//  2. Logging: zerolog, JSON or console output
//  3. Database: SQLite with WAL journaling, schema migration, optional seed data
//  4. Authentication: HS256 JWT token manager
//  5. HTTP server: Chi router with rate limiting, CORS, and Prometheus metrics
//
// Configuration keys use the AQUASCOPE_ prefix in the environment, e.g.
// AQUASCOPE_SECURITY_JWT_SECRET. A config.yaml in the working directory
// or /etc/aquascope/ is loaded when present.
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, waits up to 10 seconds for in-flight requests,
// then closes the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/aquascope/aquascope/internal/api"
	"github.com/aquascope/aquascope/internal/auth"
	"github.com/aquascope/aquascope/internal/config"
	"github.com/aquascope/aquascope/internal/database"
	"github.com/aquascope/aquascope/internal/logging"
	"github.com/aquascope/aquascope/internal/metrics"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Msg("Starting AquaScope")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	tokens, err := auth.NewTokenManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("initialize token manager: %w", err)
	}

	handler := api.NewHandler(db, cfg, tokens)
	router := api.NewRouter(handler, auth.NewMiddleware(tokens), cfg)

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go trackUptime(ctx)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logging.Info().Msg("Server stopped gracefully")
	return nil
}

// trackUptime updates the uptime gauge until shutdown.
func trackUptime(ctx context.Context) {
	start := time.Now()
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.AppUptime.Set(time.Since(start).Seconds())
		}
	}
}
