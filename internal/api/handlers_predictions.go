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
	"github.com/aquascope/aquascope/internal/validation"
)

// defaultHotspotLimit caps the hotspot ranking when no limit is given.
const defaultHotspotLimit = 10

// PredictionsQuery carries the validated query parameters of the
// predictions list endpoints.
type PredictionsQuery struct {
	ParameterCode string `validate:"omitempty,max=50"`
	RiskLevel     string `validate:"omitempty,oneof=low medium high critical"`
	ModelVersion  string `validate:"omitempty,max=50"`
}

// ListPredictions handles GET /api/predictions.
func (h *Handler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	q := PredictionsQuery{
		ParameterCode: queryParam(r, "parameter"),
		RiskLevel:     queryParam(r, "risk_level"),
		ModelVersion:  queryParam(r, "model_version"),
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		metrics.ValidationFailures.WithLabelValues("/api/predictions").Inc()
		respondValidationError(w, verr)
		return
	}

	filter := database.PredictionFilter{
		LocationID:    getInt64Param(r, "location_id"),
		ParameterCode: q.ParameterCode,
		RiskLevel:     q.RiskLevel,
		ForecastHours: getInt64Param(r, "forecast_hours"),
		ModelVersion:  q.ModelVersion,
	}
	limit, offset := h.pageWindow(r)

	predictions, total, err := h.db.ListPredictions(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	respondList(w, predictions, len(predictions), models.NewPagination(total, limit, offset))
}

// PredictionsByLocation handles GET /api/predictions/location/{locationId}.
func (h *Handler) PredictionsByLocation(w http.ResponseWriter, r *http.Request) {
	locationID, err := pathID(chi.URLParam(r, "locationId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid location ID", nil)
		return
	}

	q := PredictionsQuery{ParameterCode: queryParam(r, "parameter")}
	if verr := validation.ValidateStruct(&q); verr != nil {
		metrics.ValidationFailures.WithLabelValues("/api/predictions/location").Inc()
		respondValidationError(w, verr)
		return
	}

	filter := database.PredictionFilter{
		ParameterCode: q.ParameterCode,
		ForecastHours: getInt64Param(r, "forecast_hours"),
	}
	limit, _ := h.pageWindow(r)

	predictions, err := h.db.ListPredictionsByLocation(r.Context(), locationID, filter, limit)
	if err != nil {
		respondStorageError(w, err, "Location not found")
		return
	}

	respondList(w, predictions, len(predictions), nil)
}

// PredictionHotspots handles GET /api/predictions/hotspots.
func (h *Handler) PredictionHotspots(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", defaultHotspotLimit)
	if limit < 1 {
		limit = defaultHotspotLimit
	}
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}

	hotspots, err := h.db.PredictionHotspots(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	respondList(w, hotspots, len(hotspots), nil)
}

// PredictionStats handles GET /api/predictions/stats.
func (h *Handler) PredictionStats(w http.ResponseWriter, r *http.Request) {
	key := cache.GenerateKey("prediction_stats", nil)
	if cached, ok := h.statsCache.Get(key); ok {
		metrics.RecordCacheAccess("stats", true)
		respondData(w, http.StatusOK, cached)
		return
	}
	metrics.RecordCacheAccess("stats", false)

	stats, err := h.db.GetPredictionStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	h.statsCache.Set(key, stats)
	respondData(w, http.StatusOK, stats)
}

// GetPrediction handles GET /api/predictions/{id}.
func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid prediction ID", nil)
		return
	}

	prediction, err := h.db.GetPrediction(r.Context(), id)
	if err != nil {
		respondStorageError(w, err, "Prediction not found")
		return
	}

	respondData(w, http.StatusOK, prediction)
}
