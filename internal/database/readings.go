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
	"time"

	"github.com/aquascope/aquascope/internal/metrics"
	"github.com/aquascope/aquascope/internal/models"
)

// readingColumns is the flattened join shape every reading query returns.
const readingColumns = `
	r.id, r.location_id, l.name, l.state, l.district, l.latitude, l.longitude,
	p.name, r.parameter_code, r.value, p.unit, r.measurement_date, r.source,
	r.risk_level, r.quality_score`

const readingFrom = `
	FROM water_quality_readings r
	JOIN locations l ON l.id = r.location_id
	JOIN water_quality_parameters p ON p.code = r.parameter_code`

// ListReadings returns readings matching the filter, newest first, plus
// the total match count for pagination.
func (db *DB) ListReadings(ctx context.Context, filter ReadingFilter, limit, offset int) ([]models.Reading, int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	whereClause, args := filter.Where().Build()

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", readingFrom, whereClause)
	start := time.Now()
	err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	metrics.RecordDBQuery("count", "water_quality_readings", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("count readings: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s %s
		WHERE %s
		ORDER BY r.measurement_date DESC, r.id DESC
		LIMIT ? OFFSET ?`, readingColumns, readingFrom, whereClause)

	listArgs := append(append([]interface{}{}, args...), limit, offset)
	start = time.Now()
	rows, err := db.conn.QueryContext(ctx, listQuery, listArgs...)
	metrics.RecordDBQuery("select", "water_quality_readings", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("list readings: %w", err)
	}
	defer closeWithLog(rows, "readings rows")

	readings, err := scanReadings(rows)
	if err != nil {
		return nil, 0, err
	}
	return readings, total, nil
}

// GetReading returns a single reading by ID, or ErrNotFound.
func (db *DB) GetReading(ctx context.Context, id int64) (*models.Reading, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf("SELECT %s %s WHERE r.id = ?", readingColumns, readingFrom)
	row := db.conn.QueryRowContext(ctx, query, id)

	var r models.Reading
	err := scanReadingRow(row.Scan, &r)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reading: %w", err)
	}
	return &r, nil
}

// ListReadingsByLocation returns the most recent readings for one
// location. Returns ErrNotFound when the location does not exist.
func (db *DB) ListReadingsByLocation(ctx context.Context, locationID int64, limit int) ([]models.Reading, error) {
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

	query := fmt.Sprintf(`
		SELECT %s %s
		WHERE r.location_id = ?
		ORDER BY r.measurement_date DESC, r.id DESC
		LIMIT ?`, readingColumns, readingFrom)

	rows, err := db.conn.QueryContext(ctx, query, locationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list location readings: %w", err)
	}
	defer closeWithLog(rows, "location readings rows")

	return scanReadings(rows)
}

// ListParameters returns the parameter catalog ordered by code.
func (db *DB) ListParameters(ctx context.Context) ([]models.Parameter, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT code, name, unit, safe_limit, moderate_limit, high_limit, critical_limit, description
		FROM water_quality_parameters
		ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list parameters: %w", err)
	}
	defer closeWithLog(rows, "parameters rows")

	var params []models.Parameter
	for rows.Next() {
		var p models.Parameter
		if err := rows.Scan(&p.Code, &p.Name, &p.Unit,
			&p.SafeLimit, &p.ModerateLimit, &p.HighLimit, &p.CriticalLimit,
			&p.Description); err != nil {
			return nil, fmt.Errorf("scan parameter: %w", err)
		}
		params = append(params, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parameters: %w", err)
	}
	return params, nil
}

// InsertReading stores a measurement. Used by seeding and tests.
func (db *DB) InsertReading(ctx context.Context, r *models.Reading) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO water_quality_readings
			(location_id, parameter_code, value, measurement_date, source, risk_level, quality_score)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.LocationID, r.ParameterCode, r.Value, r.MeasurementDate, r.Source, r.RiskLevel, r.QualityScore)
	if err != nil {
		return 0, fmt.Errorf("insert reading: %w", err)
	}
	return res.LastInsertId()
}

func scanReadings(rows *sql.Rows) ([]models.Reading, error) {
	var readings []models.Reading
	for rows.Next() {
		var r models.Reading
		if err := scanReadingRow(rows.Scan, &r); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	return readings, nil
}

func scanReadingRow(scan func(dest ...interface{}) error, r *models.Reading) error {
	return scan(
		&r.ID, &r.LocationID, &r.LocationName, &r.State, &r.District,
		&r.Latitude, &r.Longitude,
		&r.Parameter, &r.ParameterCode, &r.Value, &r.Unit,
		&r.MeasurementDate, &r.Source, &r.RiskLevel, &r.QualityScore)
}
