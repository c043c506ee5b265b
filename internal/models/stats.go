// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package models

import "time"

// WaterQualityStats is the payload of GET /api/water-quality/stats.
// Distribution buckets always carry all four risk levels; empty datasets
// report explicit zeros and a null average, never omitted keys.
type WaterQualityStats struct {
	TotalReadings         int            `json:"total_readings"`
	RiskLevelDistribution map[string]int `json:"risk_level_distribution"`
	AverageQualityScore   *float64       `json:"average_quality_score"`
	ParametersMonitored   []string       `json:"parameters_monitored"`
	StatesMonitored       []string       `json:"states_monitored"`
	LatestReading         *time.Time     `json:"latest_reading"`
}

// AlertStats is the payload of GET /api/alerts/stats.
type AlertStats struct {
	TotalAlerts                int            `json:"total_alerts"`
	ActiveAlerts               int            `json:"active_alerts"`
	ResolvedAlerts             int            `json:"resolved_alerts"`
	DismissedAlerts            int            `json:"dismissed_alerts"`
	SeverityDistribution       map[string]int `json:"severity_distribution"`
	AlertTypes                 map[string]int `json:"alert_types"`
	ParametersWithAlerts       []string       `json:"parameters_with_alerts"`
	LocationsWithAlerts        int            `json:"locations_with_alerts"`
	AverageResolutionTimeHours *float64       `json:"average_resolution_time_hours"`
}

// PredictionStats is the payload of GET /api/predictions/stats. Forecast
// horizon buckets are keyed "24h", "48h", and so on.
type PredictionStats struct {
	TotalPredictions          int            `json:"total_predictions"`
	AverageConfidence         *float64       `json:"average_confidence"`
	RiskLevelDistribution     map[string]int `json:"risk_level_distribution"`
	ForecastHoursDistribution map[string]int `json:"forecast_hours_distribution"`
	ParametersPredicted       []string       `json:"parameters_predicted"`
	ModelVersions             []string       `json:"model_versions"`
	LocationsWithPredictions  int            `json:"locations_with_predictions"`
}

// LocationStats is the payload of GET /api/locations/stats.
type LocationStats struct {
	TotalLocations      int      `json:"total_locations"`
	StatesCovered       int      `json:"states_covered"`
	WaterBodyTypes      []string `json:"water_body_types"`
	LocationsWithAlerts int      `json:"locations_with_alerts"`
	AverageWQIScore     *float64 `json:"average_wqi_score"`
}
