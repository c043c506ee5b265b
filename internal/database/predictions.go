// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/aquascope/aquascope/internal/database/query"
	"github.com/aquascope/aquascope/internal/models"
)

const predictionColumns = `
	ap.id, ap.location_id, l.name, l.state, l.district, p.name,
	ap.parameter_code, ap.predicted_value, p.unit, ap.confidence_score,
	ap.prediction_date, ap.forecast_hours, COALESCE(ap.model_version, ''),
	ap.risk_level, ap.created_at`

const predictionFrom = `
	FROM ai_predictions ap
	JOIN locations l ON l.id = ap.location_id
	JOIN water_quality_parameters p ON p.code = ap.parameter_code`

// ListPredictions returns forecasts matching the filter, newest
// prediction date first, plus the total match count for pagination.
func (db *DB) ListPredictions(ctx context.Context, filter PredictionFilter, limit, offset int) ([]models.Prediction, int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	whereClause, args := filter.Where().Build()

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", predictionFrom, whereClause)
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count predictions: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s %s
		WHERE %s
		ORDER BY ap.prediction_date DESC, ap.id DESC
		LIMIT ? OFFSET ?`, predictionColumns, predictionFrom, whereClause)

	listArgs := append(append([]interface{}{}, args...), limit, offset)
	rows, err := db.conn.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list predictions: %w", err)
	}
	defer closeWithLog(rows, "predictions rows")

	predictions, err := scanPredictions(rows)
	if err != nil {
		return nil, 0, err
	}
	return predictions, total, nil
}

// ListPredictionsByLocation returns the most recent forecasts for one
// location, optionally narrowed by the filter. Returns ErrNotFound when
// the location does not exist.
func (db *DB) ListPredictionsByLocation(ctx context.Context, locationID int64, filter PredictionFilter, limit int) ([]models.Prediction, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var exists int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM locations WHERE id = ?", locationID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check location: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	filter.LocationID = &locationID
	whereClause, args := filter.Where().Build()

	listQuery := fmt.Sprintf(`
		SELECT %s %s
		WHERE %s
		ORDER BY ap.prediction_date DESC, ap.id DESC
		LIMIT ?`, predictionColumns, predictionFrom, whereClause)

	rows, err := db.conn.QueryContext(ctx, listQuery, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("list location predictions: %w", err)
	}
	defer closeWithLog(rows, "location predictions rows")

	return scanPredictions(rows)
}

// GetPrediction returns a single forecast by ID, or ErrNotFound.
func (db *DB) GetPrediction(ctx context.Context, id int64) (*models.Prediction, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	q := fmt.Sprintf("SELECT %s %s WHERE ap.id = ?", predictionColumns, predictionFrom)
	var p models.Prediction
	err := scanPredictionRow(db.conn.QueryRowContext(ctx, q, id).Scan, &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get prediction: %w", err)
	}
	return &p, nil
}

// PredictionHotspots ranks locations by their count of high and critical
// forecasts, most at-risk first.
func (db *DB) PredictionHotspots(ctx context.Context, limit int) ([]models.PredictionHotspot, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	wb := query.NewWhereBuilder()
	wb.AddIn("ap.risk_level", []string{models.SeverityHigh, models.SeverityCritical})
	whereClause, args := wb.BuildWithPrefix()

	q := fmt.Sprintf(`
		SELECT
			ap.location_id, l.name, l.state, l.latitude, l.longitude,
			COUNT(*),
			COUNT(DISTINCT ap.parameter_code),
			ROUND(AVG(ap.confidence_score), 2)
		FROM ai_predictions ap
		JOIN locations l ON l.id = ap.location_id
		%s
		GROUP BY ap.location_id, l.name, l.state, l.latitude, l.longitude
		ORDER BY COUNT(*) DESC, COUNT(DISTINCT ap.parameter_code) DESC
		LIMIT ?`, whereClause)

	rows, err := db.conn.QueryContext(ctx, q, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("prediction hotspots: %w", err)
	}
	defer closeWithLog(rows, "hotspot rows")

	hotspots := []models.PredictionHotspot{}
	for rows.Next() {
		var h models.PredictionHotspot
		if err := rows.Scan(&h.LocationID, &h.LocationName, &h.State,
			&h.Latitude, &h.Longitude, &h.PredictionCount,
			&h.HighRiskParameters, &h.AvgConfidence); err != nil {
			return nil, fmt.Errorf("scan hotspot: %w", err)
		}
		hotspots = append(hotspots, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hotspots: %w", err)
	}
	return hotspots, nil
}

// GetPredictionStats computes the forecast statistics payload with the
// same fan-out pattern as the readings and alerts stats.
func (db *DB) GetPredictionStats(ctx context.Context) (*models.PredictionStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		stats        models.PredictionStats
		riskDist     map[string]int
		forecastDist map[string]int
		parameters   []string
		versions     []string

		summaryErr  error
		riskErr     error
		forecastErr error
		paramsErr   error
		versionsErr error
		wg          sync.WaitGroup
	)

	wg.Add(5)

	go func() {
		defer wg.Done()
		summaryErr = db.conn.QueryRowContext(ctx, `
			SELECT
				COUNT(*),
				ROUND(AVG(confidence_score), 2),
				COUNT(DISTINCT location_id)
			FROM ai_predictions`).Scan(
			&stats.TotalPredictions, &stats.AverageConfidence,
			&stats.LocationsWithPredictions)
	}()

	go func() {
		defer wg.Done()
		riskDist, riskErr = db.groupCounts(ctx,
			"SELECT risk_level, COUNT(*) FROM ai_predictions GROUP BY risk_level")
	}()

	go func() {
		defer wg.Done()
		forecastDist, forecastErr = db.groupCounts(ctx,
			"SELECT forecast_hours, COUNT(*) FROM ai_predictions GROUP BY forecast_hours")
	}()

	go func() {
		defer wg.Done()
		parameters, paramsErr = db.distinctStrings(ctx,
			"SELECT DISTINCT parameter_code FROM ai_predictions ORDER BY parameter_code", nil)
	}()

	go func() {
		defer wg.Done()
		versions, versionsErr = db.distinctStrings(ctx, `
			SELECT DISTINCT model_version FROM ai_predictions
			WHERE model_version IS NOT NULL AND model_version != ''
			ORDER BY model_version`, nil)
	}()

	wg.Wait()

	if summaryErr != nil {
		return nil, fmt.Errorf("prediction summary query failed: %w", summaryErr)
	}
	if riskErr != nil {
		return nil, fmt.Errorf("risk distribution query failed: %w", riskErr)
	}
	if forecastErr != nil {
		return nil, fmt.Errorf("forecast distribution query failed: %w", forecastErr)
	}
	if paramsErr != nil {
		return nil, fmt.Errorf("predicted parameters query failed: %w", paramsErr)
	}
	if versionsErr != nil {
		return nil, fmt.Errorf("model versions query failed: %w", versionsErr)
	}

	// Horizon buckets read better keyed as durations: 24 becomes "24h".
	horizons := make(map[string]int, len(forecastDist))
	for hours, count := range forecastDist {
		horizons[hours+"h"] = count
	}

	stats.RiskLevelDistribution = fillBuckets(riskDist, models.RiskLevels)
	stats.ForecastHoursDistribution = horizons
	stats.ParametersPredicted = parameters
	stats.ModelVersions = versions
	return &stats, nil
}

// InsertPrediction stores a forecast. Used by seeding and tests.
func (db *DB) InsertPrediction(ctx context.Context, p *models.Prediction) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO ai_predictions
			(location_id, parameter_code, predicted_value, confidence_score,
			 prediction_date, forecast_hours, model_version, risk_level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.LocationID, p.ParameterCode, p.PredictedValue, p.ConfidenceScore,
		p.PredictionDate, p.ForecastHours, p.ModelVersion, p.RiskLevel)
	if err != nil {
		return 0, fmt.Errorf("insert prediction: %w", err)
	}
	return res.LastInsertId()
}

func scanPredictions(rows *sql.Rows) ([]models.Prediction, error) {
	var predictions []models.Prediction
	for rows.Next() {
		var p models.Prediction
		if err := scanPredictionRow(rows.Scan, &p); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	return predictions, nil
}

func scanPredictionRow(scan func(dest ...interface{}) error, p *models.Prediction) error {
	return scan(
		&p.ID, &p.LocationID, &p.LocationName, &p.State, &p.District, &p.Parameter,
		&p.ParameterCode, &p.PredictedValue, &p.Unit, &p.ConfidenceScore,
		&p.PredictionDate, &p.ForecastHours, &p.ModelVersion,
		&p.RiskLevel, &p.CreatedAt)
}
