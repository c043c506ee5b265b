// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package database

import "fmt"

// schemaStatements create the tables and indexes. Statements are
// idempotent so startup can run them unconditionally.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		state TEXT NOT NULL,
		district TEXT NOT NULL DEFAULT '',
		latitude REAL NOT NULL DEFAULT 0,
		longitude REAL NOT NULL DEFAULT 0,
		water_body_type TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS water_quality_parameters (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		safe_limit REAL,
		moderate_limit REAL,
		high_limit REAL,
		critical_limit REAL,
		description TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS water_quality_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location_id INTEGER NOT NULL REFERENCES locations(id),
		parameter_code TEXT NOT NULL REFERENCES water_quality_parameters(code),
		value REAL NOT NULL,
		measurement_date DATETIME NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		risk_level TEXT NOT NULL DEFAULT 'low',
		quality_score REAL
	)`,

	`CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location_id INTEGER NOT NULL REFERENCES locations(id),
		parameter_code TEXT NOT NULL REFERENCES water_quality_parameters(code),
		alert_type TEXT NOT NULL DEFAULT 'threshold_breach',
		severity TEXT NOT NULL DEFAULT 'medium',
		message TEXT NOT NULL DEFAULT '',
		threshold_value REAL,
		actual_value REAL,
		status TEXT NOT NULL DEFAULT 'active',
		triggered_at DATETIME NOT NULL,
		resolved_at DATETIME,
		dismissed_at DATETIME,
		resolution_notes TEXT,
		dismissal_reason TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS ai_predictions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location_id INTEGER NOT NULL REFERENCES locations(id),
		parameter_code TEXT NOT NULL REFERENCES water_quality_parameters(code),
		predicted_value REAL NOT NULL,
		confidence_score REAL,
		prediction_date DATETIME NOT NULL,
		forecast_hours INTEGER NOT NULL DEFAULT 24,
		model_version TEXT,
		risk_level TEXT NOT NULL DEFAULT 'low',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_readings_location ON water_quality_readings(location_id)`,
	`CREATE INDEX IF NOT EXISTS idx_readings_parameter ON water_quality_readings(parameter_code)`,
	`CREATE INDEX IF NOT EXISTS idx_readings_risk ON water_quality_readings(risk_level)`,
	`CREATE INDEX IF NOT EXISTS idx_readings_date ON water_quality_readings(measurement_date)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts(status)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_severity ON alerts(severity)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_location ON alerts(location_id)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_location ON ai_predictions(location_id)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_risk ON ai_predictions(risk_level)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_date ON ai_predictions(prediction_date)`,
	`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
}

func (db *DB) initSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
