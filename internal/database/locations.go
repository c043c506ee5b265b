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

	"github.com/aquascope/aquascope/internal/database/query"
	"github.com/aquascope/aquascope/internal/models"
)

// locationColumns includes two computed columns: the active alert count
// and the average quality score across the location's readings.
const locationColumns = `
	l.id, l.name, l.state, l.district, l.latitude, l.longitude, l.water_body_type,
	(SELECT COUNT(*) FROM alerts a WHERE a.location_id = l.id AND a.status = 'active'),
	(SELECT ROUND(AVG(r.quality_score), 2) FROM water_quality_readings r WHERE r.location_id = l.id)`

// WQI score thresholds for deriving a location's risk level. A location
// with no scored readings is reported as "unknown".
const (
	wqiLowFloor    = 80.0
	wqiMediumFloor = 60.0
	wqiHighFloor   = 40.0

	RiskUnknown = "unknown"
)

// riskLevelForScore derives a location risk level from its average WQI.
func riskLevelForScore(avg *float64) string {
	switch {
	case avg == nil:
		return RiskUnknown
	case *avg >= wqiLowFloor:
		return models.SeverityLow
	case *avg >= wqiMediumFloor:
		return models.SeverityMedium
	case *avg >= wqiHighFloor:
		return models.SeverityHigh
	default:
		return models.SeverityCritical
	}
}

// ListLocations returns locations matching the filter with their derived
// risk levels, ordered by state then name.
func (db *DB) ListLocations(ctx context.Context, filter LocationFilter) ([]models.Location, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	whereClause, args := filter.Where().Build()
	q := fmt.Sprintf(`
		SELECT %s FROM locations l
		WHERE %s
		ORDER BY l.state, l.name`, locationColumns, whereClause)

	return db.queryLocations(ctx, q, args...)
}

// GetLocation returns a single location by ID, or ErrNotFound.
func (db *DB) GetLocation(ctx context.Context, id int64) (*models.Location, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	q := fmt.Sprintf("SELECT %s FROM locations l WHERE l.id = ?", locationColumns)
	var loc models.Location
	err := scanLocationRow(db.conn.QueryRowContext(ctx, q, id).Scan, &loc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &loc, nil
}

// SearchLocations matches term as a literal substring of name, state, or
// district. The term is LIKE-escaped upstream of the pattern so stored
// wildcards never act as wildcards; an empty term returns no rows rather
// than the whole table.
func (db *DB) SearchLocations(ctx context.Context, term string) ([]models.Location, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	wb := query.NewWhereBuilder()
	nameWB := query.NewWhereBuilder().AddSubstring("l.name", term)
	if nameWB.IsEmpty() {
		return []models.Location{}, nil
	}
	nameClause, nameArgs := nameWB.Build()
	stateClause, stateArgs := query.NewWhereBuilder().AddSubstring("l.state", term).Build()
	districtClause, districtArgs := query.NewWhereBuilder().AddSubstring("l.district", term).Build()

	wb.AddClause(fmt.Sprintf("(%s OR %s OR %s)", nameClause, stateClause, districtClause),
		append(append(nameArgs, stateArgs...), districtArgs...)...)
	whereClause, args := wb.Build()

	q := fmt.Sprintf(`
		SELECT %s FROM locations l
		WHERE %s
		ORDER BY l.state, l.name`, locationColumns, whereClause)

	return db.queryLocations(ctx, q, args...)
}

// RiskSummary counts locations per derived risk level. Every risk level
// plus "unknown" appears in the result, zero-filled.
func (db *DB) RiskSummary(ctx context.Context) (map[string]int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT (SELECT ROUND(AVG(r.quality_score), 2)
		        FROM water_quality_readings r WHERE r.location_id = l.id)
		FROM locations l`)
	if err != nil {
		return nil, fmt.Errorf("risk summary: %w", err)
	}
	defer closeWithLog(rows, "risk summary rows")

	summary := make(map[string]int, len(models.RiskLevels)+1)
	for _, level := range models.RiskLevels {
		summary[level] = 0
	}
	summary[RiskUnknown] = 0

	for rows.Next() {
		var avg *float64
		if err := rows.Scan(&avg); err != nil {
			return nil, fmt.Errorf("scan risk summary: %w", err)
		}
		summary[riskLevelForScore(avg)]++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate risk summary: %w", err)
	}
	return summary, nil
}

// InsertLocation stores a location. Used by seeding and tests.
func (db *DB) InsertLocation(ctx context.Context, loc *models.Location) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO locations (name, state, district, latitude, longitude, water_body_type)
		VALUES (?, ?, ?, ?, ?, ?)`,
		loc.Name, loc.State, loc.District, loc.Latitude, loc.Longitude, loc.WaterBodyType)
	if err != nil {
		return 0, fmt.Errorf("insert location: %w", err)
	}
	return res.LastInsertId()
}

// InsertParameter stores a parameter catalog entry. Used by seeding and
// tests.
func (db *DB) InsertParameter(ctx context.Context, p *models.Parameter) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO water_quality_parameters
			(code, name, unit, safe_limit, moderate_limit, high_limit, critical_limit, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Code, p.Name, p.Unit, p.SafeLimit, p.ModerateLimit, p.HighLimit, p.CriticalLimit, p.Description)
	if err != nil {
		return fmt.Errorf("insert parameter: %w", err)
	}
	return nil
}

func (db *DB) queryLocations(ctx context.Context, q string, args ...interface{}) ([]models.Location, error) {
	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer closeWithLog(rows, "locations rows")

	var locations []models.Location
	for rows.Next() {
		var loc models.Location
		if err := scanLocationRow(rows.Scan, &loc); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return locations, nil
}

func scanLocationRow(scan func(dest ...interface{}) error, loc *models.Location) error {
	err := scan(&loc.ID, &loc.Name, &loc.State, &loc.District,
		&loc.Latitude, &loc.Longitude, &loc.WaterBodyType,
		&loc.ActiveAlerts, &loc.AvgWQIScore)
	if err != nil {
		return err
	}
	loc.RiskLevel = riskLevelForScore(loc.AvgWQIScore)
	return nil
}
