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
	"github.com/aquascope/aquascope/internal/models"
	"github.com/aquascope/aquascope/internal/sanitize"
	"github.com/aquascope/aquascope/internal/validation"
)

// ReadingsQuery carries the validated query parameters of the readings
// list endpoint. Enumerated fields are rejected up front rather than
// passed to storage as free text.
type ReadingsQuery struct {
	ParameterCode string `validate:"omitempty,max=50"`
	State         string `validate:"omitempty,max=100"`
	RiskLevel     string `validate:"omitempty,oneof=low medium high critical"`
}

// ListReadings handles GET /api/water-quality.
func (h *Handler) ListReadings(w http.ResponseWriter, r *http.Request) {
	q := ReadingsQuery{
		ParameterCode: queryParam(r, "parameter"),
		State:         queryParam(r, "state"),
		RiskLevel:     queryParam(r, "risk_level"),
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		metrics.ValidationFailures.WithLabelValues("/api/water-quality").Inc()
		respondValidationError(w, verr)
		return
	}

	filter := database.ReadingFilter{
		LocationID:    getInt64Param(r, "location_id"),
		ParameterCode: q.ParameterCode,
		State:         q.State,
		RiskLevel:     q.RiskLevel,
		StartDate:     getDateParam(r, "start_date"),
		EndDate:       getDateParam(r, "end_date"),
	}
	limit, offset := h.pageWindow(r)

	readings, total, err := h.db.ListReadings(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	respondList(w, readings, len(readings), models.NewPagination(total, limit, offset))
}

// Parameters handles GET /api/water-quality/parameters.
func (h *Handler) Parameters(w http.ResponseWriter, r *http.Request) {
	params, err := h.db.ListParameters(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	respondList(w, params, len(params), nil)
}

// WaterQualityStats handles GET /api/water-quality/stats. Results are
// cached per filter combination; the whole query is collapsed to scalars
// first so duplicate keys cannot mint distinct cache entries for the
// same effective filter.
func (h *Handler) WaterQualityStats(w http.ResponseWriter, r *http.Request) {
	params := sanitize.Normalize(r.URL.Query())
	filter := database.StatsFilter{
		State:         params["state"],
		ParameterCode: params["parameter"],
	}

	key := cache.GenerateKey("water_quality_stats", filter)
	if cached, ok := h.statsCache.Get(key); ok {
		metrics.RecordCacheAccess("stats", true)
		respondData(w, http.StatusOK, cached)
		return
	}
	metrics.RecordCacheAccess("stats", false)

	stats, err := h.db.GetWaterQualityStats(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	h.statsCache.Set(key, stats)
	respondData(w, http.StatusOK, stats)
}

// ReadingsByLocation handles GET /api/water-quality/location/{locationId}.
func (h *Handler) ReadingsByLocation(w http.ResponseWriter, r *http.Request) {
	locationID, err := pathID(chi.URLParam(r, "locationId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid location ID", nil)
		return
	}

	limit, _ := h.pageWindow(r)
	readings, err := h.db.ListReadingsByLocation(r.Context(), locationID, limit)
	if err != nil {
		respondStorageError(w, err, "Location not found")
		return
	}

	respondList(w, readings, len(readings), nil)
}

// GetReading handles GET /api/water-quality/{id}.
func (h *Handler) GetReading(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid reading ID", nil)
		return
	}

	reading, err := h.db.GetReading(r.Context(), id)
	if err != nil {
		respondStorageError(w, err, "Reading not found")
		return
	}

	respondData(w, http.StatusOK, reading)
}
