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

	"github.com/aquascope/aquascope/internal/models"
)

const alertColumns = `
	a.id, a.location_id, l.name, l.state, p.name, a.parameter_code,
	a.alert_type, a.severity, a.message, a.threshold_value, a.actual_value,
	a.status, a.triggered_at, a.resolved_at, a.dismissed_at,
	a.resolution_notes, a.dismissal_reason, a.created_at`

const alertFrom = `
	FROM alerts a
	JOIN locations l ON l.id = a.location_id
	JOIN water_quality_parameters p ON p.code = a.parameter_code`

// ListAlerts returns alerts matching the filter, newest first, plus the
// total match count for pagination.
func (db *DB) ListAlerts(ctx context.Context, filter AlertFilter, limit, offset int) ([]models.Alert, int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	whereClause, args := filter.Where().Build()

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", alertFrom, whereClause)
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count alerts: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s %s
		WHERE %s
		ORDER BY a.triggered_at DESC, a.id DESC
		LIMIT ? OFFSET ?`, alertColumns, alertFrom, whereClause)

	listArgs := append(append([]interface{}{}, args...), limit, offset)
	rows, err := db.conn.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list alerts: %w", err)
	}
	defer closeWithLog(rows, "alerts rows")

	alerts, err := scanAlerts(rows)
	if err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

// GetAlert returns a single alert by ID, or ErrNotFound.
func (db *DB) GetAlert(ctx context.Context, id int64) (*models.Alert, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf("SELECT %s %s WHERE a.id = ?", alertColumns, alertFrom)
	var a models.Alert
	err := scanAlertRow(db.conn.QueryRowContext(ctx, query, id).Scan, &a)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return &a, nil
}

// ResolveAlert transitions an active alert to resolved and stamps
// resolved_at. Terminal alerts return ErrAlreadyResolved; once resolved
// or dismissed, an alert never transitions again.
func (db *DB) ResolveAlert(ctx context.Context, id int64, notes string) (*models.Alert, error) {
	err := db.transitionAlert(ctx, id, func(status string) error {
		if status != models.AlertStatusActive {
			return ErrAlreadyResolved
		}
		return nil
	}, `UPDATE alerts SET status = ?, resolved_at = ?, resolution_notes = ? WHERE id = ?`,
		models.AlertStatusResolved, notes)
	if err != nil {
		return nil, err
	}
	return db.GetAlert(ctx, id)
}

// DismissAlert transitions an active alert to dismissed and stamps
// dismissed_at. Non-active alerts return ErrNotActive.
func (db *DB) DismissAlert(ctx context.Context, id int64, reason string) (*models.Alert, error) {
	err := db.transitionAlert(ctx, id, func(status string) error {
		if status != models.AlertStatusActive {
			return ErrNotActive
		}
		return nil
	}, `UPDATE alerts SET status = ?, dismissed_at = ?, dismissal_reason = ? WHERE id = ?`,
		models.AlertStatusDismissed, reason)
	if err != nil {
		return nil, err
	}
	return db.GetAlert(ctx, id)
}

// transitionAlert runs a status transition inside a transaction so the
// check and the update are atomic under concurrent requests.
func (db *DB) transitionAlert(ctx context.Context, id int64, check func(status string) error, updateQuery, newStatus, note string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	err = tx.QueryRowContext(ctx, "SELECT status FROM alerts WHERE id = ?", id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read alert status: %w", err)
	}

	if err := check(status); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, updateQuery, newStatus, time.Now().UTC(), note, id); err != nil {
		return fmt.Errorf("update alert status: %w", err)
	}

	return tx.Commit()
}

// InsertAlert stores an alert. Used by seeding and tests.
func (db *DB) InsertAlert(ctx context.Context, a *models.Alert) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	status := a.Status
	if status == "" {
		status = models.AlertStatusActive
	}
	triggered := a.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now().UTC()
	}

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO alerts
			(location_id, parameter_code, alert_type, severity, message,
			 threshold_value, actual_value, status, triggered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.LocationID, a.ParameterCode, a.AlertType, a.Severity, a.Message,
		a.ThresholdValue, a.ActualValue, status, triggered)
	if err != nil {
		return 0, fmt.Errorf("insert alert: %w", err)
	}
	return res.LastInsertId()
}

func scanAlerts(rows *sql.Rows) ([]models.Alert, error) {
	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := scanAlertRow(rows.Scan, &a); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return alerts, nil
}

func scanAlertRow(scan func(dest ...interface{}) error, a *models.Alert) error {
	return scan(
		&a.ID, &a.LocationID, &a.LocationName, &a.State, &a.Parameter, &a.ParameterCode,
		&a.AlertType, &a.Severity, &a.Message, &a.ThresholdValue, &a.ActualValue,
		&a.Status, &a.TriggeredAt, &a.ResolvedAt, &a.DismissedAt,
		&a.ResolutionNotes, &a.DismissalReason, &a.CreatedAt)
}
