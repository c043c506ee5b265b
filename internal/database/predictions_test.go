// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aquascope/aquascope/internal/models"
)

// seedPredictionFixtures installs four forecasts on top of the standard
// fixtures: two critical on the Yamuna, one high and one low on the
// Ganga. Dal Lake has none.
func seedPredictionFixtures(t *testing.T, db *DB, fx fixtures) {
	t.Helper()
	ctx := context.Background()

	base := time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC)
	for _, p := range []models.Prediction{
		{LocationID: fx.yamuna, ParameterCode: "bod", PredictedValue: 30.0, ConfidenceScore: f64(0.9),
			PredictionDate: base.Add(24 * time.Hour), ForecastHours: 24, ModelVersion: "wqi-forecast-v1.2", RiskLevel: models.SeverityCritical},
		{LocationID: fx.yamuna, ParameterCode: "bod", PredictedValue: 27.0, ConfidenceScore: f64(0.8),
			PredictionDate: base.Add(48 * time.Hour), ForecastHours: 48, ModelVersion: "wqi-forecast-v1.2", RiskLevel: models.SeverityCritical},
		{LocationID: fx.ganga, ParameterCode: "bod", PredictedValue: 13.0, ConfidenceScore: f64(0.7),
			PredictionDate: base.Add(24 * time.Hour), ForecastHours: 24, ModelVersion: "wqi-forecast-v1.1", RiskLevel: models.SeverityHigh},
		{LocationID: fx.ganga, ParameterCode: "ph", PredictedValue: 7.5, ConfidenceScore: f64(0.95),
			PredictionDate: base.Add(12 * time.Hour), ForecastHours: 24, ModelVersion: "wqi-forecast-v1.2", RiskLevel: models.SeverityLow},
	} {
		if _, err := db.InsertPrediction(ctx, &p); err != nil {
			t.Fatalf("insert prediction: %v", err)
		}
	}
}

func TestListPredictions(t *testing.T) {
	db := newTestDB(t)
	fx := seedFixtures(t, db)
	seedPredictionFixtures(t, db, fx)
	ctx := context.Background()

	predictions, total, err := db.ListPredictions(ctx, PredictionFilter{}, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 4 || len(predictions) != 4 {
		t.Fatalf("total = %d, len = %d, want 4/4", total, len(predictions))
	}

	// Newest prediction date first.
	if predictions[0].ForecastHours != 48 {
		t.Errorf("first prediction = %+v, want the 48h forecast", predictions[0])
	}
	if predictions[0].LocationName != "Yamuna at Delhi" || predictions[0].Parameter != "Biochemical Oxygen Demand" {
		t.Errorf("joined fields = %q/%q", predictions[0].LocationName, predictions[0].Parameter)
	}
	if predictions[0].Unit != "mg/L" {
		t.Errorf("unit = %q, want mg/L", predictions[0].Unit)
	}
}

func TestListPredictionsFiltered(t *testing.T) {
	db := newTestDB(t)
	fx := seedFixtures(t, db)
	seedPredictionFixtures(t, db, fx)
	ctx := context.Background()

	hours := int64(24)
	tests := []struct {
		name   string
		filter PredictionFilter
		want   int
	}{
		{"by risk level", PredictionFilter{RiskLevel: models.SeverityCritical}, 2},
		{"by location", PredictionFilter{LocationID: &fx.ganga}, 2},
		{"by parameter", PredictionFilter{ParameterCode: "ph"}, 1},
		{"by forecast hours", PredictionFilter{ForecastHours: &hours}, 3},
		{"by model version", PredictionFilter{ModelVersion: "wqi-forecast-v1.1"}, 1},
		{"no match", PredictionFilter{RiskLevel: models.SeverityMedium}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := db.ListPredictions(ctx, tt.filter, 10, 0)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if total != tt.want {
				t.Errorf("total = %d, want %d", total, tt.want)
			}
		})
	}
}

func TestGetPrediction(t *testing.T) {
	db := newTestDB(t)
	fx := seedFixtures(t, db)
	seedPredictionFixtures(t, db, fx)
	ctx := context.Background()

	predictions, _, err := db.ListPredictions(ctx, PredictionFilter{ParameterCode: "ph"}, 1, 0)
	if err != nil || len(predictions) != 1 {
		t.Fatalf("list: %v, len = %d", err, len(predictions))
	}

	p, err := db.GetPrediction(ctx, predictions[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.District != "Varanasi" || p.PredictedValue != 7.5 {
		t.Errorf("prediction = %+v", p)
	}

	if _, err := db.GetPrediction(ctx, 99999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing prediction: err = %v, want ErrNotFound", err)
	}
}

func TestListPredictionsByLocation(t *testing.T) {
	db := newTestDB(t)
	fx := seedFixtures(t, db)
	seedPredictionFixtures(t, db, fx)
	ctx := context.Background()

	predictions, err := db.ListPredictionsByLocation(ctx, fx.yamuna, PredictionFilter{}, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(predictions) != 2 {
		t.Fatalf("len = %d, want 2", len(predictions))
	}
	for _, p := range predictions {
		if p.LocationID != fx.yamuna {
			t.Errorf("stray location %d in result", p.LocationID)
		}
	}

	// Narrowing by parameter applies on top of the location.
	predictions, err = db.ListPredictionsByLocation(ctx, fx.ganga, PredictionFilter{ParameterCode: "ph"}, 10)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(predictions) != 1 {
		t.Errorf("len = %d, want 1", len(predictions))
	}

	// A location with no forecasts is still found.
	predictions, err = db.ListPredictionsByLocation(ctx, fx.dal, PredictionFilter{}, 10)
	if err != nil {
		t.Fatalf("empty location: %v", err)
	}
	if len(predictions) != 0 {
		t.Errorf("len = %d, want 0", len(predictions))
	}

	if _, err := db.ListPredictionsByLocation(ctx, 99999, PredictionFilter{}, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing location: err = %v, want ErrNotFound", err)
	}
}

func TestPredictionHotspots(t *testing.T) {
	db := newTestDB(t)
	fx := seedFixtures(t, db)
	seedPredictionFixtures(t, db, fx)

	hotspots, err := db.PredictionHotspots(context.Background(), 10)
	if err != nil {
		t.Fatalf("hotspots: %v", err)
	}

	// Only high/critical forecasts count: Yamuna has two, Ganga one; the
	// Ganga low forecast and Dal Lake never appear.
	if len(hotspots) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(hotspots), hotspots)
	}
	if hotspots[0].LocationID != fx.yamuna || hotspots[0].PredictionCount != 2 {
		t.Errorf("top hotspot = %+v, want Yamuna with 2", hotspots[0])
	}
	if hotspots[0].HighRiskParameters != 1 {
		t.Errorf("high risk parameters = %d, want 1", hotspots[0].HighRiskParameters)
	}
	// (0.9 + 0.8) / 2 = 0.85
	if hotspots[0].AvgConfidence == nil || *hotspots[0].AvgConfidence != 0.85 {
		t.Errorf("avg confidence = %v, want 0.85", hotspots[0].AvgConfidence)
	}
	if hotspots[1].LocationID != fx.ganga || hotspots[1].PredictionCount != 1 {
		t.Errorf("second hotspot = %+v, want Ganga with 1", hotspots[1])
	}
}

func TestPredictionHotspotsEmpty(t *testing.T) {
	db := newTestDB(t)
	seedFixtures(t, db)

	hotspots, err := db.PredictionHotspots(context.Background(), 10)
	if err != nil {
		t.Fatalf("hotspots: %v", err)
	}
	if hotspots == nil || len(hotspots) != 0 {
		t.Errorf("hotspots = %v, want empty non-nil slice", hotspots)
	}
}

func TestGetPredictionStats(t *testing.T) {
	db := newTestDB(t)
	fx := seedFixtures(t, db)
	seedPredictionFixtures(t, db, fx)

	stats, err := db.GetPredictionStats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.TotalPredictions != 4 {
		t.Errorf("total = %d, want 4", stats.TotalPredictions)
	}
	// (0.9 + 0.8 + 0.7 + 0.95) / 4 = 0.8375, rounded to 0.84.
	if stats.AverageConfidence == nil || *stats.AverageConfidence != 0.84 {
		t.Errorf("avg confidence = %v, want 0.84", stats.AverageConfidence)
	}

	wantDist := map[string]int{
		models.SeverityLow:      1,
		models.SeverityMedium:   0,
		models.SeverityHigh:     1,
		models.SeverityCritical: 2,
	}
	for level, want := range wantDist {
		got, present := stats.RiskLevelDistribution[level]
		if !present {
			t.Errorf("distribution bucket %q missing", level)
			continue
		}
		if got != want {
			t.Errorf("distribution[%s] = %d, want %d", level, got, want)
		}
	}

	if stats.ForecastHoursDistribution["24h"] != 3 || stats.ForecastHoursDistribution["48h"] != 1 {
		t.Errorf("horizons = %v, want 24h:3 48h:1", stats.ForecastHoursDistribution)
	}
	if len(stats.ParametersPredicted) != 2 {
		t.Errorf("parameters = %v, want [bod ph]", stats.ParametersPredicted)
	}
	if len(stats.ModelVersions) != 2 {
		t.Errorf("versions = %v, want 2 versions", stats.ModelVersions)
	}
	if stats.LocationsWithPredictions != 2 {
		t.Errorf("locations = %d, want 2", stats.LocationsWithPredictions)
	}
}

func TestGetPredictionStatsEmpty(t *testing.T) {
	db := newTestDB(t)

	stats, err := db.GetPredictionStats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.TotalPredictions != 0 || stats.LocationsWithPredictions != 0 {
		t.Errorf("counts = %+v, want zeros", stats)
	}
	if stats.AverageConfidence != nil {
		t.Errorf("avg confidence = %v, want nil", stats.AverageConfidence)
	}
	for _, level := range models.RiskLevels {
		if count := stats.RiskLevelDistribution[level]; count != 0 {
			t.Errorf("distribution[%s] = %d, want 0", level, count)
		}
	}
	if stats.ParametersPredicted == nil || stats.ModelVersions == nil {
		t.Error("list fields are nil, want empty slices")
	}
	if len(stats.ForecastHoursDistribution) != 0 {
		t.Errorf("horizons = %v, want empty", stats.ForecastHoursDistribution)
	}
}
