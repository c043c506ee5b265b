// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

// Package api provides the HTTP surface: routing, request handling, and
// the response envelope shared by every endpoint.
package api

import (
	"net/http"
	"time"

	"github.com/aquascope/aquascope/internal/auth"
	"github.com/aquascope/aquascope/internal/cache"
	"github.com/aquascope/aquascope/internal/config"
	"github.com/aquascope/aquascope/internal/database"
	"github.com/aquascope/aquascope/internal/models"
)

// statsCacheTTL bounds staleness of the aggregated statistics responses.
const statsCacheTTL = 5 * time.Minute

// Handler carries the dependencies shared by all endpoint handlers.
type Handler struct {
	db         *database.DB
	cfg        *config.Config
	tokens     *auth.TokenManager
	statsCache *cache.Cache
}

// NewHandler wires the handler set.
func NewHandler(db *database.DB, cfg *config.Config, tokens *auth.TokenManager) *Handler {
	return &Handler{
		db:         db,
		cfg:        cfg,
		tokens:     tokens,
		statsCache: cache.New(statsCacheTTL),
	}
}

// healthPayload is the GET /api/health body.
type healthPayload struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Time     string `json:"time"`
}

// Health reports liveness and database connectivity.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	payload := healthPayload{
		Status:   "ok",
		Database: "ok",
		Time:     time.Now().UTC().Format(time.RFC3339),
	}

	status := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		payload.Status = "degraded"
		payload.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}

	// A degraded probe is a non-2xx response, so the envelope must not
	// claim success.
	respondJSON(w, status, &models.APIResponse{
		Success: status == http.StatusOK,
		Data:    payload,
	})
}

// pageWindow clamps limit/offset query parameters to the configured
// bounds.
func (h *Handler) pageWindow(r *http.Request) (limit, offset int) {
	limit = getIntParam(r, "limit", h.cfg.API.DefaultPageSize)
	if limit < 1 {
		limit = h.cfg.API.DefaultPageSize
	}
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}
	offset = getIntParam(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
