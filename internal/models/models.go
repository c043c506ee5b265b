// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

// Package models defines the domain entities shared across the API,
// storage, and auth layers.
package models

import "time"

// User roles. RoleGate checks set membership, not ordering; the informal
// privilege order is user < moderator < admin.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Alert severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert statuses. Resolved and dismissed are terminal: no further
// transition is permitted once an alert leaves the active state.
const (
	AlertStatusActive    = "active"
	AlertStatusResolved  = "resolved"
	AlertStatusDismissed = "dismissed"
)

// RiskLevels enumerates reading risk levels in distribution order.
var RiskLevels = []string{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// AlertStatuses enumerates alert statuses in distribution order.
var AlertStatuses = []string{AlertStatusActive, AlertStatusResolved, AlertStatusDismissed}

// User is a registered account. Password holds the bcrypt hash and is
// never serialized into responses.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Location is a monitored water body site.
type Location struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	State         string   `json:"state"`
	District      string   `json:"district"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	WaterBodyType string   `json:"water_body_type"`
	ActiveAlerts  int      `json:"active_alerts"`
	AvgWQIScore   *float64 `json:"avg_wqi_score"`
	RiskLevel     string   `json:"risk_level"`
}

// Parameter is a catalog entry for a measured water quality parameter.
type Parameter struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Unit          string   `json:"unit"`
	SafeLimit     *float64 `json:"safe_limit"`
	ModerateLimit *float64 `json:"moderate_limit"`
	HighLimit     *float64 `json:"high_limit"`
	CriticalLimit *float64 `json:"critical_limit"`
	Description   string   `json:"description"`
}

// Reading is a single water quality measurement joined with its location
// and parameter metadata, matching the flattened API shape.
type Reading struct {
	ID              int64     `json:"id"`
	LocationID      int64     `json:"location_id"`
	LocationName    string    `json:"location_name"`
	State           string    `json:"state"`
	District        string    `json:"district"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Parameter       string    `json:"parameter"`
	ParameterCode   string    `json:"parameter_code"`
	Value           float64   `json:"value"`
	Unit            string    `json:"unit"`
	MeasurementDate time.Time `json:"measurement_date"`
	Source          string    `json:"source"`
	RiskLevel       string    `json:"risk_level"`
	QualityScore    *float64  `json:"quality_score"`
}

// Alert is a threshold breach raised against a location/parameter pair.
type Alert struct {
	ID              int64      `json:"id"`
	LocationID      int64      `json:"location_id"`
	LocationName    string     `json:"location_name"`
	State           string     `json:"state"`
	Parameter       string     `json:"parameter"`
	ParameterCode   string     `json:"parameter_code"`
	AlertType       string     `json:"alert_type"`
	Severity        string     `json:"severity"`
	Message         string     `json:"message"`
	ThresholdValue  *float64   `json:"threshold_value"`
	ActualValue     *float64   `json:"actual_value"`
	Status          string     `json:"status"`
	TriggeredAt     time.Time  `json:"triggered_at"`
	ResolvedAt      *time.Time `json:"resolved_at"`
	DismissedAt     *time.Time `json:"dismissed_at"`
	ResolutionNotes *string    `json:"resolution_notes"`
	DismissalReason *string    `json:"dismissal_reason"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Prediction is a model-generated forecast of a parameter value at a
// location, joined with location and parameter metadata like Reading.
type Prediction struct {
	ID              int64     `json:"id"`
	LocationID      int64     `json:"location_id"`
	LocationName    string    `json:"location_name"`
	State           string    `json:"state"`
	District        string    `json:"district"`
	Parameter       string    `json:"parameter"`
	ParameterCode   string    `json:"parameter_code"`
	PredictedValue  float64   `json:"predicted_value"`
	Unit            string    `json:"unit"`
	ConfidenceScore *float64  `json:"confidence_score"`
	PredictionDate  time.Time `json:"prediction_date"`
	ForecastHours   int       `json:"forecast_hours"`
	ModelVersion    string    `json:"model_version"`
	RiskLevel       string    `json:"risk_level"`
	CreatedAt       time.Time `json:"created_at"`
}

// PredictionHotspot is one row of the predicted-hotspots ranking: a
// location with high or critical forecasts, ordered by how many.
type PredictionHotspot struct {
	LocationID         int64    `json:"location_id"`
	LocationName       string   `json:"location_name"`
	State              string   `json:"state"`
	Latitude           float64  `json:"latitude"`
	Longitude          float64  `json:"longitude"`
	PredictionCount    int      `json:"prediction_count"`
	HighRiskParameters int      `json:"high_risk_parameters"`
	AvgConfidence      *float64 `json:"avg_confidence"`
}

// IsTerminal reports whether the alert has reached a terminal status.
func (a *Alert) IsTerminal() bool {
	return a.Status == AlertStatusResolved || a.Status == AlertStatusDismissed
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}
