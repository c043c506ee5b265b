// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aquascope/aquascope/internal/auth"
	"github.com/aquascope/aquascope/internal/cache"
	"github.com/aquascope/aquascope/internal/database"
	"github.com/aquascope/aquascope/internal/logging"
	"github.com/aquascope/aquascope/internal/metrics"
	"github.com/aquascope/aquascope/internal/models"
	"github.com/aquascope/aquascope/internal/validation"
)

// AlertsQuery carries the validated query parameters of the alerts list
// endpoint.
type AlertsQuery struct {
	Status        string `validate:"omitempty,oneof=active resolved dismissed"`
	Severity      string `validate:"omitempty,oneof=low medium high critical"`
	ParameterCode string `validate:"omitempty,max=50"`
	AlertType     string `validate:"omitempty,max=50"`
}

// ResolveAlertRequest is the PUT /api/alerts/{id}/resolve body.
type ResolveAlertRequest struct {
	ResolutionNotes string `json:"resolution_notes" validate:"omitempty,max=1000"`
}

// DismissAlertRequest is the PUT /api/alerts/{id}/dismiss body.
type DismissAlertRequest struct {
	DismissalReason string `json:"dismissal_reason" validate:"omitempty,max=1000"`
}

// ListAlerts handles GET /api/alerts.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	q := AlertsQuery{
		Status:        queryParam(r, "status"),
		Severity:      queryParam(r, "severity"),
		ParameterCode: queryParam(r, "parameter"),
		AlertType:     queryParam(r, "alert_type"),
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		metrics.ValidationFailures.WithLabelValues("/api/alerts").Inc()
		respondValidationError(w, verr)
		return
	}

	filter := database.AlertFilter{
		Status:        q.Status,
		Severity:      q.Severity,
		LocationID:    getInt64Param(r, "location_id"),
		ParameterCode: q.ParameterCode,
		AlertType:     q.AlertType,
		StartDate:     getDateParam(r, "start_date"),
		EndDate:       getDateParam(r, "end_date"),
	}
	limit, offset := h.pageWindow(r)

	alerts, total, err := h.db.ListAlerts(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	respondList(w, alerts, len(alerts), models.NewPagination(total, limit, offset))
}

// ActiveAlerts handles GET /api/alerts/active, a fixed view of the list
// endpoint used by dashboards. Only a severity filter applies.
func (h *Handler) ActiveAlerts(w http.ResponseWriter, r *http.Request) {
	q := AlertsQuery{Severity: queryParam(r, "severity")}
	if verr := validation.ValidateStruct(&q); verr != nil {
		metrics.ValidationFailures.WithLabelValues("/api/alerts/active").Inc()
		respondValidationError(w, verr)
		return
	}

	limit, offset := h.pageWindow(r)
	alerts, total, err := h.db.ListAlerts(r.Context(),
		database.AlertFilter{Status: models.AlertStatusActive, Severity: q.Severity}, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	respondList(w, alerts, len(alerts), models.NewPagination(total, limit, offset))
}

// AlertStats handles GET /api/alerts/stats.
func (h *Handler) AlertStats(w http.ResponseWriter, r *http.Request) {
	key := cache.GenerateKey("alert_stats", nil)
	if cached, ok := h.statsCache.Get(key); ok {
		metrics.RecordCacheAccess("stats", true)
		respondData(w, http.StatusOK, cached)
		return
	}
	metrics.RecordCacheAccess("stats", false)

	stats, err := h.db.GetAlertStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	h.statsCache.Set(key, stats)
	respondData(w, http.StatusOK, stats)
}

// GetAlert handles GET /api/alerts/{id}.
func (h *Handler) GetAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid alert ID", nil)
		return
	}

	alert, err := h.db.GetAlert(r.Context(), id)
	if err != nil {
		respondStorageError(w, err, "Alert not found")
		return
	}

	respondData(w, http.StatusOK, alert)
}

// ResolveAlert handles PUT /api/alerts/{id}/resolve. Restricted to
// moderators and admins by the router; the transition is atomic and
// resolved is terminal.
func (h *Handler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid alert ID", nil)
		return
	}

	var req ResolveAlertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		metrics.ValidationFailures.WithLabelValues("/api/alerts/resolve").Inc()
		respondValidationError(w, verr)
		return
	}

	alert, err := h.db.ResolveAlert(r.Context(), id, req.ResolutionNotes)
	if err != nil {
		respondStorageError(w, err, "Alert not found")
		return
	}

	h.invalidateStats()
	if subject := auth.SubjectFrom(r.Context()); subject != nil {
		logging.Info().
			Int64("alert_id", id).
			Int64("user_id", subject.UserID).
			Msg("alert resolved")
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Message: "Alert resolved successfully",
		Data:    alert,
	})
}

// DismissAlert handles PUT /api/alerts/{id}/dismiss. Restricted to
// moderators and admins by the router.
func (h *Handler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid alert ID", nil)
		return
	}

	var req DismissAlertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		metrics.ValidationFailures.WithLabelValues("/api/alerts/dismiss").Inc()
		respondValidationError(w, verr)
		return
	}

	alert, err := h.db.DismissAlert(r.Context(), id, req.DismissalReason)
	if err != nil {
		respondStorageError(w, err, "Alert not found")
		return
	}

	h.invalidateStats()
	if subject := auth.SubjectFrom(r.Context()); subject != nil {
		logging.Info().
			Int64("alert_id", id).
			Int64("user_id", subject.UserID).
			Msg("alert dismissed")
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Message: "Alert dismissed successfully",
		Data:    alert,
	})
}

// invalidateStats drops every cached aggregate after a status
// transition. A transition changes more than the alert stats: the
// location summary counts locations with active alerts too.
func (h *Handler) invalidateStats() {
	h.statsCache.Clear()
}
