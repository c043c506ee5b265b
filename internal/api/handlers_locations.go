// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aquascope/aquascope/internal/cache"
	"github.com/aquascope/aquascope/internal/database"
	"github.com/aquascope/aquascope/internal/metrics"
	"github.com/aquascope/aquascope/internal/validation"
)

// LocationsQuery carries the validated query parameters of the locations
// list endpoint.
type LocationsQuery struct {
	State         string `validate:"omitempty,max=100"`
	WaterBodyType string `validate:"omitempty,max=50"`
}

// SearchQuery carries the validated search term.
type SearchQuery struct {
	Term string `validate:"required,min=1,max=100"`
}

// ListLocations handles GET /api/locations. Each location carries its
// active alert count, average WQI score, and derived risk level.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	q := LocationsQuery{
		State:         queryParam(r, "state"),
		WaterBodyType: queryParam(r, "water_body_type"),
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		metrics.ValidationFailures.WithLabelValues("/api/locations").Inc()
		respondValidationError(w, verr)
		return
	}

	locations, err := h.db.ListLocations(r.Context(), database.LocationFilter{
		State:         q.State,
		WaterBodyType: q.WaterBodyType,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	respondList(w, locations, len(locations), nil)
}

// LocationStats handles GET /api/locations/stats.
func (h *Handler) LocationStats(w http.ResponseWriter, r *http.Request) {
	key := cache.GenerateKey("location_stats", nil)
	if cached, ok := h.statsCache.Get(key); ok {
		metrics.RecordCacheAccess("stats", true)
		respondData(w, http.StatusOK, cached)
		return
	}
	metrics.RecordCacheAccess("stats", false)

	stats, err := h.db.GetLocationStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	h.statsCache.Set(key, stats)
	respondData(w, http.StatusOK, stats)
}

// RiskSummary handles GET /api/locations/risk-summary: location counts
// per derived risk level, all buckets always present.
func (h *Handler) RiskSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.db.RiskSummary(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	respondData(w, http.StatusOK, summary)
}

// SearchLocations handles GET /api/locations/search?q=term. The term is
// matched as a literal substring against name, state, and district; LIKE
// wildcards in the term have no special meaning.
func (h *Handler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	q := SearchQuery{Term: queryParam(r, "q")}
	if verr := validation.ValidateStruct(&q); verr != nil {
		metrics.ValidationFailures.WithLabelValues("/api/locations/search").Inc()
		respondValidationError(w, verr)
		return
	}

	locations, err := h.db.SearchLocations(r.Context(), q.Term)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	respondList(w, locations, len(locations), nil)
}

// GetLocation handles GET /api/locations/{id}.
func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid location ID", nil)
		return
	}

	location, err := h.db.GetLocation(r.Context(), id)
	if err != nil {
		respondStorageError(w, err, "Location not found")
		return
	}

	respondData(w, http.StatusOK, location)
}
