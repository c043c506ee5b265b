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

	"github.com/aquascope/aquascope/internal/models"
)

// GetWaterQualityStats computes the readings statistics payload. The
// filter predicate is built once and shared read-only by every aggregate
// goroutine; each aggregate runs as its own query and any sub-query error
// fails the whole request.
func (db *DB) GetWaterQualityStats(ctx context.Context, filter StatsFilter) (*models.WaterQualityStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	whereClause, args := filter.Where().Build()

	var (
		total        int
		avgScore     *float64
		distribution map[string]int
		parameters   []string
		states       []string
		latest       *models.Reading

		summaryErr error
		distErr    error
		paramsErr  error
		statesErr  error
		latestErr  error
		wg         sync.WaitGroup
	)

	wg.Add(4)

	go func() {
		defer wg.Done()
		total, avgScore, summaryErr = db.readingSummary(ctx, whereClause, args)
		if summaryErr == nil {
			latest, latestErr = db.latestReading(ctx, whereClause, args)
		}
	}()

	go func() {
		defer wg.Done()
		distribution, distErr = db.readingRiskDistribution(ctx, whereClause, args)
	}()

	go func() {
		defer wg.Done()
		parameters, paramsErr = db.distinctStrings(ctx, fmt.Sprintf(`
			SELECT DISTINCT r.parameter_code
			FROM water_quality_readings r
			JOIN locations l ON l.id = r.location_id
			WHERE %s ORDER BY r.parameter_code`, whereClause), args)
	}()

	go func() {
		defer wg.Done()
		states, statesErr = db.distinctStrings(ctx, fmt.Sprintf(`
			SELECT DISTINCT l.state
			FROM water_quality_readings r
			JOIN locations l ON l.id = r.location_id
			WHERE %s ORDER BY l.state`, whereClause), args)
	}()

	wg.Wait()

	if summaryErr != nil {
		return nil, fmt.Errorf("readings summary query failed: %w", summaryErr)
	}
	if latestErr != nil {
		return nil, fmt.Errorf("latest reading query failed: %w", latestErr)
	}
	if distErr != nil {
		return nil, fmt.Errorf("risk distribution query failed: %w", distErr)
	}
	if paramsErr != nil {
		return nil, fmt.Errorf("parameters query failed: %w", paramsErr)
	}
	if statesErr != nil {
		return nil, fmt.Errorf("states query failed: %w", statesErr)
	}

	stats := &models.WaterQualityStats{
		TotalReadings:         total,
		RiskLevelDistribution: distribution,
		AverageQualityScore:   avgScore,
		ParametersMonitored:   parameters,
		StatesMonitored:       states,
	}
	if latest != nil {
		stats.LatestReading = &latest.MeasurementDate
	}
	return stats, nil
}

// GetAlertStats computes the alerts statistics payload with the same
// fan-out pattern.
func (db *DB) GetAlertStats(ctx context.Context) (*models.AlertStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		stats        models.AlertStats
		severityDist map[string]int
		alertTypes   map[string]int
		parameters   []string

		summaryErr  error
		severityErr error
		typesErr    error
		paramsErr   error
		wg          sync.WaitGroup
	)

	wg.Add(4)

	go func() {
		defer wg.Done()
		summaryErr = db.conn.QueryRowContext(ctx, `
			SELECT
				COUNT(*),
				COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0),
				COALESCE(SUM(CASE WHEN status = 'resolved' THEN 1 ELSE 0 END), 0),
				COALESCE(SUM(CASE WHEN status = 'dismissed' THEN 1 ELSE 0 END), 0),
				COUNT(DISTINCT location_id),
				ROUND(AVG(CASE
					WHEN status = 'resolved' AND resolved_at IS NOT NULL
					THEN (julianday(resolved_at) - julianday(triggered_at)) * 24.0
				END), 2)
			FROM alerts`).Scan(
			&stats.TotalAlerts, &stats.ActiveAlerts, &stats.ResolvedAlerts,
			&stats.DismissedAlerts, &stats.LocationsWithAlerts,
			&stats.AverageResolutionTimeHours)
	}()

	go func() {
		defer wg.Done()
		severityDist, severityErr = db.groupCounts(ctx,
			"SELECT severity, COUNT(*) FROM alerts GROUP BY severity")
	}()

	go func() {
		defer wg.Done()
		alertTypes, typesErr = db.groupCounts(ctx,
			"SELECT alert_type, COUNT(*) FROM alerts GROUP BY alert_type")
	}()

	go func() {
		defer wg.Done()
		parameters, paramsErr = db.distinctStrings(ctx,
			"SELECT DISTINCT parameter_code FROM alerts ORDER BY parameter_code", nil)
	}()

	wg.Wait()

	if summaryErr != nil {
		return nil, fmt.Errorf("alert summary query failed: %w", summaryErr)
	}
	if severityErr != nil {
		return nil, fmt.Errorf("severity distribution query failed: %w", severityErr)
	}
	if typesErr != nil {
		return nil, fmt.Errorf("alert types query failed: %w", typesErr)
	}
	if paramsErr != nil {
		return nil, fmt.Errorf("alert parameters query failed: %w", paramsErr)
	}

	// COUNT(DISTINCT) over an empty table still yields one row with zeros,
	// but LocationsWithAlerts must not count rows with no alerts at all.
	if stats.TotalAlerts == 0 {
		stats.LocationsWithAlerts = 0
	}

	stats.SeverityDistribution = fillBuckets(severityDist, models.RiskLevels)
	stats.AlertTypes = alertTypes
	stats.ParametersWithAlerts = parameters
	return &stats, nil
}

// GetLocationStats computes the locations summary payload.
func (db *DB) GetLocationStats(ctx context.Context) (*models.LocationStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		stats     models.LocationStats
		bodyTypes []string

		summaryErr error
		typesErr   error
		alertsErr  error
		wg         sync.WaitGroup
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		summaryErr = db.conn.QueryRowContext(ctx, `
			SELECT
				COUNT(*),
				COUNT(DISTINCT state),
				(SELECT ROUND(AVG(quality_score), 2) FROM water_quality_readings)
			FROM locations`).Scan(
			&stats.TotalLocations, &stats.StatesCovered, &stats.AverageWQIScore)
	}()

	go func() {
		defer wg.Done()
		bodyTypes, typesErr = db.distinctStrings(ctx, `
			SELECT DISTINCT water_body_type FROM locations
			WHERE water_body_type != '' ORDER BY water_body_type`, nil)
	}()

	go func() {
		defer wg.Done()
		alertsErr = db.conn.QueryRowContext(ctx, `
			SELECT COUNT(DISTINCT location_id) FROM alerts WHERE status = 'active'`).
			Scan(&stats.LocationsWithAlerts)
	}()

	wg.Wait()

	if summaryErr != nil {
		return nil, fmt.Errorf("location summary query failed: %w", summaryErr)
	}
	if typesErr != nil {
		return nil, fmt.Errorf("water body types query failed: %w", typesErr)
	}
	if alertsErr != nil {
		return nil, fmt.Errorf("alerted locations query failed: %w", alertsErr)
	}

	stats.WaterBodyTypes = bodyTypes
	return &stats, nil
}

func (db *DB) readingSummary(ctx context.Context, whereClause string, args []interface{}) (int, *float64, error) {
	var total int
	var avg *float64
	err := db.conn.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*), ROUND(AVG(r.quality_score), 2)
		FROM water_quality_readings r
		JOIN locations l ON l.id = r.location_id
		WHERE %s`, whereClause), args...).Scan(&total, &avg)
	if err != nil {
		return 0, nil, err
	}
	return total, avg, nil
}

func (db *DB) latestReading(ctx context.Context, whereClause string, args []interface{}) (*models.Reading, error) {
	var r models.Reading
	err := db.conn.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT r.id, r.measurement_date
		FROM water_quality_readings r
		JOIN locations l ON l.id = r.location_id
		WHERE %s
		ORDER BY r.measurement_date DESC, r.id DESC
		LIMIT 1`, whereClause), args...).Scan(&r.ID, &r.MeasurementDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (db *DB) readingRiskDistribution(ctx context.Context, whereClause string, args []interface{}) (map[string]int, error) {
	counts, err := db.groupCounts(ctx, fmt.Sprintf(`
		SELECT r.risk_level, COUNT(*)
		FROM water_quality_readings r
		JOIN locations l ON l.id = r.location_id
		WHERE %s
		GROUP BY r.risk_level`, whereClause), args...)
	if err != nil {
		return nil, err
	}
	return fillBuckets(counts, models.RiskLevels), nil
}

// groupCounts runs a two-column (key, count) query into a map.
func (db *DB) groupCounts(ctx context.Context, q string, args ...interface{}) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "group count rows")

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}
	return counts, rows.Err()
}

// distinctStrings runs a single-column query into a slice. Always returns
// a non-nil slice so JSON encodes [] rather than null.
func (db *DB) distinctStrings(ctx context.Context, q string, args []interface{}) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "distinct rows")

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// fillBuckets guarantees every expected bucket is present, zero-filled.
// Unexpected keys from the data are preserved.
func fillBuckets(counts map[string]int, buckets []string) map[string]int {
	filled := make(map[string]int, len(buckets))
	for _, b := range buckets {
		filled[b] = 0
	}
	for k, v := range counts {
		filled[k] = v
	}
	return filled
}
