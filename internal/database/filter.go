// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package database

import (
	"time"

	"github.com/aquascope/aquascope/internal/database/query"
)

// ReadingFilter selects water quality readings. Zero values mean "no
// constraint"; the builder skips them.
type ReadingFilter struct {
	LocationID    *int64
	ParameterCode string
	State         string // substring match, LIKE-escaped
	RiskLevel     string
	StartDate     *time.Time
	EndDate       *time.Time
}

// Where builds the predicate set for the readings join. The builder is
// constructed once per request and its output shared by the list query,
// the count query, and the stats fan-out.
func (f ReadingFilter) Where() *query.WhereBuilder {
	wb := query.NewWhereBuilder()
	wb.AddEqualsInt64("r.location_id", f.LocationID)
	wb.AddEquals("r.parameter_code", f.ParameterCode)
	wb.AddSubstring("l.state", f.State)
	wb.AddEquals("r.risk_level", f.RiskLevel)
	wb.AddDateRange("r.measurement_date", f.StartDate, f.EndDate)
	return wb
}

// AlertFilter selects alerts.
type AlertFilter struct {
	Status        string
	Severity      string
	LocationID    *int64
	ParameterCode string
	AlertType     string
	StartDate     *time.Time
	EndDate       *time.Time
}

// Where builds the predicate set for the alerts join.
func (f AlertFilter) Where() *query.WhereBuilder {
	wb := query.NewWhereBuilder()
	wb.AddEquals("a.status", f.Status)
	wb.AddEquals("a.severity", f.Severity)
	wb.AddEqualsInt64("a.location_id", f.LocationID)
	wb.AddEquals("a.parameter_code", f.ParameterCode)
	wb.AddEquals("a.alert_type", f.AlertType)
	wb.AddDateRange("a.triggered_at", f.StartDate, f.EndDate)
	return wb
}

// PredictionFilter selects model forecasts.
type PredictionFilter struct {
	LocationID    *int64
	ParameterCode string
	RiskLevel     string
	ForecastHours *int64
	ModelVersion  string
}

// Where builds the predicate set for the predictions join.
func (f PredictionFilter) Where() *query.WhereBuilder {
	wb := query.NewWhereBuilder()
	wb.AddEqualsInt64("ap.location_id", f.LocationID)
	wb.AddEquals("ap.parameter_code", f.ParameterCode)
	wb.AddEquals("ap.risk_level", f.RiskLevel)
	wb.AddEqualsInt64("ap.forecast_hours", f.ForecastHours)
	wb.AddEquals("ap.model_version", f.ModelVersion)
	return wb
}

// LocationFilter selects monitoring locations.
type LocationFilter struct {
	State         string // substring match, LIKE-escaped
	WaterBodyType string
}

// Where builds the predicate set for the locations query.
func (f LocationFilter) Where() *query.WhereBuilder {
	wb := query.NewWhereBuilder()
	wb.AddSubstring("l.state", f.State)
	wb.AddEquals("l.water_body_type", f.WaterBodyType)
	return wb
}

// StatsFilter narrows the readings statistics aggregation.
type StatsFilter struct {
	State         string
	ParameterCode string
}

// Where builds the predicate set shared by every aggregate goroutine.
func (f StatsFilter) Where() *query.WhereBuilder {
	wb := query.NewWhereBuilder()
	wb.AddSubstring("l.state", f.State)
	wb.AddEquals("r.parameter_code", f.ParameterCode)
	return wb
}
