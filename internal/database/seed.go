// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/aquascope/aquascope/internal/logging"
	"github.com/aquascope/aquascope/internal/models"
)

func f64(v float64) *float64 { return &v }

// seedParameters is the development parameter catalog with BIS 10500
// style limit bands.
var seedParameters = []models.Parameter{
	{Code: "ph", Name: "pH", Unit: "pH units", SafeLimit: f64(8.5), ModerateLimit: f64(9.0), HighLimit: f64(9.5), CriticalLimit: f64(10.0), Description: "Acidity/alkalinity of the water"},
	{Code: "do", Name: "Dissolved Oxygen", Unit: "mg/L", SafeLimit: f64(6.0), ModerateLimit: f64(5.0), HighLimit: f64(4.0), CriticalLimit: f64(3.0), Description: "Oxygen available to aquatic life"},
	{Code: "bod", Name: "Biochemical Oxygen Demand", Unit: "mg/L", SafeLimit: f64(3.0), ModerateLimit: f64(6.0), HighLimit: f64(10.0), CriticalLimit: f64(20.0), Description: "Organic pollution load"},
	{Code: "nitrate", Name: "Nitrate", Unit: "mg/L", SafeLimit: f64(45.0), ModerateLimit: f64(60.0), HighLimit: f64(80.0), CriticalLimit: f64(100.0), Description: "Agricultural runoff indicator"},
	{Code: "fecal_coliform", Name: "Fecal Coliform", Unit: "MPN/100ml", SafeLimit: f64(2500), ModerateLimit: f64(5000), HighLimit: f64(10000), CriticalLimit: f64(50000), Description: "Sewage contamination indicator"},
	{Code: "turbidity", Name: "Turbidity", Unit: "NTU", SafeLimit: f64(5.0), ModerateLimit: f64(10.0), HighLimit: f64(25.0), CriticalLimit: f64(50.0), Description: "Suspended particle load"},
}

var seedLocations = []models.Location{
	{Name: "Ganga at Varanasi", State: "Uttar Pradesh", District: "Varanasi", Latitude: 25.3176, Longitude: 82.9739, WaterBodyType: "river"},
	{Name: "Yamuna at Delhi", State: "Delhi", District: "New Delhi", Latitude: 28.6139, Longitude: 77.2090, WaterBodyType: "river"},
	{Name: "Godavari at Nashik", State: "Maharashtra", District: "Nashik", Latitude: 19.9975, Longitude: 73.7898, WaterBodyType: "river"},
	{Name: "Hussain Sagar", State: "Telangana", District: "Hyderabad", Latitude: 17.4239, Longitude: 78.4738, WaterBodyType: "lake"},
	{Name: "Dal Lake", State: "Jammu and Kashmir", District: "Srinagar", Latitude: 34.1218, Longitude: 74.8585, WaterBodyType: "lake"},
	{Name: "Cauvery at Mettur", State: "Tamil Nadu", District: "Salem", Latitude: 11.7898, Longitude: 77.8007, WaterBodyType: "reservoir"},
}

type seedReading struct {
	location  int // index into seedLocations
	parameter string
	value     float64
	daysAgo   int
	risk      string
	score     *float64
}

var seedReadings = []seedReading{
	{0, "bod", 12.4, 1, models.SeverityHigh, f64(42.5)},
	{0, "fecal_coliform", 24000, 1, models.SeverityHigh, f64(38.0)},
	{0, "do", 4.8, 2, models.SeverityMedium, f64(61.0)},
	{1, "bod", 28.0, 1, models.SeverityCritical, f64(22.0)},
	{1, "do", 2.1, 1, models.SeverityCritical, f64(18.5)},
	{1, "fecal_coliform", 92000, 3, models.SeverityCritical, f64(15.0)},
	{2, "ph", 7.6, 1, models.SeverityLow, f64(88.0)},
	{2, "nitrate", 22.0, 2, models.SeverityLow, f64(91.5)},
	{3, "turbidity", 18.0, 1, models.SeverityMedium, f64(64.0)},
	{3, "nitrate", 52.0, 4, models.SeverityMedium, f64(58.5)},
	{4, "do", 7.2, 1, models.SeverityLow, f64(92.0)},
	{4, "ph", 7.9, 2, models.SeverityLow, f64(89.0)},
	{5, "bod", 4.2, 1, models.SeverityMedium, f64(71.0)},
	{5, "turbidity", 6.5, 5, models.SeverityMedium, f64(68.0)},
}

type seedAlert struct {
	location  int
	parameter string
	alertType string
	severity  string
	message   string
	threshold *float64
	actual    *float64
	daysAgo   int
}

var seedAlerts = []seedAlert{
	{1, "bod", "threshold_breach", models.SeverityCritical, "BOD far above critical limit at Yamuna, Delhi", f64(20.0), f64(28.0), 1},
	{1, "do", "threshold_breach", models.SeverityCritical, "Dissolved oxygen collapsed below survival threshold", f64(3.0), f64(2.1), 1},
	{0, "fecal_coliform", "threshold_breach", models.SeverityHigh, "Fecal coliform above high limit at Varanasi", f64(10000), f64(24000), 2},
	{3, "nitrate", "trend_anomaly", models.SeverityMedium, "Nitrate rising steadily at Hussain Sagar", f64(45.0), f64(52.0), 4},
	{5, "bod", "threshold_breach", models.SeverityMedium, "BOD above safe limit at Mettur reservoir", f64(3.0), f64(4.2), 6},
}

type seedPrediction struct {
	location   int
	parameter  string
	value      float64
	confidence *float64
	hoursAhead int
	version    string
	risk       string
}

var seedPredictions = []seedPrediction{
	{1, "bod", 31.5, f64(0.87), 24, "wqi-forecast-v1.2", models.SeverityCritical},
	{1, "do", 1.8, f64(0.82), 24, "wqi-forecast-v1.2", models.SeverityCritical},
	{1, "bod", 29.0, f64(0.74), 48, "wqi-forecast-v1.2", models.SeverityCritical},
	{0, "fecal_coliform", 31000, f64(0.79), 24, "wqi-forecast-v1.2", models.SeverityHigh},
	{0, "bod", 13.1, f64(0.71), 48, "wqi-forecast-v1.1", models.SeverityHigh},
	{3, "nitrate", 58.0, f64(0.66), 72, "wqi-forecast-v1.1", models.SeverityMedium},
	{5, "bod", 4.6, f64(0.69), 24, "wqi-forecast-v1.2", models.SeverityMedium},
	{2, "ph", 7.7, f64(0.91), 24, "wqi-forecast-v1.2", models.SeverityLow},
	{4, "do", 7.0, f64(0.88), 48, "wqi-forecast-v1.1", models.SeverityLow},
}

// seedMockData loads the development fixture dataset into an empty
// database. A database that already has locations is left untouched so
// restarts do not duplicate rows.
func (db *DB) seedMockData() error {
	ctx := context.Background()

	var existing int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM locations").Scan(&existing); err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if existing > 0 {
		logging.Debug().Int("locations", existing).Msg("Skipping seed, data already present")
		return nil
	}

	for i := range seedParameters {
		if err := db.InsertParameter(ctx, &seedParameters[i]); err != nil {
			return err
		}
	}

	locationIDs := make([]int64, len(seedLocations))
	for i := range seedLocations {
		id, err := db.InsertLocation(ctx, &seedLocations[i])
		if err != nil {
			return err
		}
		locationIDs[i] = id
	}

	now := time.Now().UTC()
	for _, sr := range seedReadings {
		_, err := db.InsertReading(ctx, &models.Reading{
			LocationID:      locationIDs[sr.location],
			ParameterCode:   sr.parameter,
			Value:           sr.value,
			MeasurementDate: now.AddDate(0, 0, -sr.daysAgo),
			Source:          "mock",
			RiskLevel:       sr.risk,
			QualityScore:    sr.score,
		})
		if err != nil {
			return err
		}
	}

	for _, sa := range seedAlerts {
		_, err := db.InsertAlert(ctx, &models.Alert{
			LocationID:     locationIDs[sa.location],
			ParameterCode:  sa.parameter,
			AlertType:      sa.alertType,
			Severity:       sa.severity,
			Message:        sa.message,
			ThresholdValue: sa.threshold,
			ActualValue:    sa.actual,
			Status:         models.AlertStatusActive,
			TriggeredAt:    now.AddDate(0, 0, -sa.daysAgo),
		})
		if err != nil {
			return err
		}
	}

	for _, sp := range seedPredictions {
		_, err := db.InsertPrediction(ctx, &models.Prediction{
			LocationID:      locationIDs[sp.location],
			ParameterCode:   sp.parameter,
			PredictedValue:  sp.value,
			ConfidenceScore: sp.confidence,
			PredictionDate:  now.Add(time.Duration(sp.hoursAhead) * time.Hour),
			ForecastHours:   sp.hoursAhead,
			ModelVersion:    sp.version,
			RiskLevel:       sp.risk,
		})
		if err != nil {
			return err
		}
	}

	logging.Info().
		Int("locations", len(seedLocations)).
		Int("readings", len(seedReadings)).
		Int("alerts", len(seedAlerts)).
		Int("predictions", len(seedPredictions)).
		Msg("Seeded mock dataset")
	return nil
}
