// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/goccy/go-json"

	"github.com/aquascope/aquascope/internal/models"
)

func decodeReadings(t *testing.T, body *envelope) []models.Reading {
	t.Helper()
	var readings []models.Reading
	if err := json.Unmarshal(body.Data, &readings); err != nil {
		t.Fatalf("decode readings: %v", err)
	}
	return readings
}

func TestListReadings(t *testing.T) {
	env := newTestEnv(t)
	seedFixtures(t, env.db)

	rec, body := env.do(t, http.MethodGet, "/api/water-quality", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	readings := decodeReadings(t, body)
	if len(readings) != 3 {
		t.Fatalf("len = %d, want 3", len(readings))
	}
	if body.Pagination == nil || body.Pagination.Total != 3 || body.Pagination.HasMore {
		t.Errorf("pagination = %+v", body.Pagination)
	}
	// Flattened join shape.
	if readings[0].LocationName == "" || readings[0].Parameter == "" {
		t.Errorf("reading = %+v, want joined fields", readings[0])
	}
}

func TestListReadingsFilters(t *testing.T) {
	env := newTestEnv(t)
	fx := seedFixtures(t, env.db)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"by risk level", "/api/water-quality?risk_level=critical", 1},
		{"by location", fmt.Sprintf("/api/water-quality?location_id=%d", fx.yamuna), 2},
		{"by state substring", "/api/water-quality?state=delhi", 2},
		{"state wildcard is literal", "/api/water-quality?state=%25", 0},
		{"by date range", "/api/water-quality?start_date=2026-08-01", 1},
		{"no match", "/api/water-quality?risk_level=medium", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := env.do(t, http.MethodGet, tt.target, "", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if body.Count == nil || *body.Count != tt.want {
				t.Errorf("count = %v, want %d", body.Count, tt.want)
			}
		})
	}
}

// Duplicate query keys must not bypass filtering: the last value wins and
// the rest are discarded.
func TestListReadingsDuplicateParamsLastWins(t *testing.T) {
	env := newTestEnv(t)
	seedFixtures(t, env.db)

	rec, body := env.do(t, http.MethodGet,
		"/api/water-quality?risk_level=low&risk_level=critical", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	readings := decodeReadings(t, body)
	if len(readings) != 1 {
		t.Fatalf("len = %d, want 1", len(readings))
	}
	if readings[0].RiskLevel != models.SeverityCritical {
		t.Errorf("risk = %q, want critical (last value)", readings[0].RiskLevel)
	}
}

func TestListReadingsRejectsUnknownRiskLevel(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/water-quality?risk_level=severe", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body.Error != "Validation failed" || len(body.Errors) == 0 {
		t.Errorf("body = %+v", body)
	}
}

func TestListReadingsPagination(t *testing.T) {
	env := newTestEnv(t)
	seedFixtures(t, env.db)

	rec, body := env.do(t, http.MethodGet, "/api/water-quality?limit=2&offset=0", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body.Count == nil || *body.Count != 2 {
		t.Errorf("count = %v, want 2", body.Count)
	}
	if body.Pagination == nil || !body.Pagination.HasMore || body.Pagination.Total != 3 {
		t.Errorf("pagination = %+v", body.Pagination)
	}

	rec, body = env.do(t, http.MethodGet, "/api/water-quality?limit=2&offset=2", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body.Count == nil || *body.Count != 1 {
		t.Errorf("count = %v, want 1", body.Count)
	}
	if body.Pagination.HasMore {
		t.Error("hasMore = true on last page")
	}
}

func TestGetReading(t *testing.T) {
	env := newTestEnv(t)
	fx := seedFixtures(t, env.db)

	rec, body := env.do(t, http.MethodGet, fmt.Sprintf("/api/water-quality/%d", fx.reading), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var reading models.Reading
	if err := json.Unmarshal(body.Data, &reading); err != nil {
		t.Fatalf("decode reading: %v", err)
	}
	if reading.ID != fx.reading || reading.ParameterCode != "ph" {
		t.Errorf("reading = %+v", reading)
	}

	rec, body = env.do(t, http.MethodGet, "/api/water-quality/99999", "", "")
	if rec.Code != http.StatusNotFound || body.Error != "Reading not found" {
		t.Errorf("status = %d, error = %q", rec.Code, body.Error)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/water-quality/abc", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id: status = %d, want 400", rec.Code)
	}
}

func TestReadingsByLocation(t *testing.T) {
	env := newTestEnv(t)
	fx := seedFixtures(t, env.db)

	rec, body := env.do(t, http.MethodGet,
		fmt.Sprintf("/api/water-quality/location/%d", fx.yamuna), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body.Count == nil || *body.Count != 2 {
		t.Errorf("count = %v, want 2", body.Count)
	}

	rec, body = env.do(t, http.MethodGet, "/api/water-quality/location/99999", "", "")
	if rec.Code != http.StatusNotFound || body.Error != "Location not found" {
		t.Errorf("status = %d, error = %q", rec.Code, body.Error)
	}
}

func TestParameters(t *testing.T) {
	env := newTestEnv(t)
	seedFixtures(t, env.db)

	rec, body := env.do(t, http.MethodGet, "/api/water-quality/parameters", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var params []models.Parameter
	if err := json.Unmarshal(body.Data, &params); err != nil {
		t.Fatalf("decode parameters: %v", err)
	}
	if len(params) != 1 || params[0].Code != "ph" {
		t.Errorf("params = %+v", params)
	}
}

func TestWaterQualityStats(t *testing.T) {
	env := newTestEnv(t)
	seedFixtures(t, env.db)

	rec, body := env.do(t, http.MethodGet, "/api/water-quality/stats", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats models.WaterQualityStats
	if err := json.Unmarshal(body.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalReadings != 3 {
		t.Errorf("total = %d, want 3", stats.TotalReadings)
	}
	// (82 + 21 + 44) / 3 = 49
	if stats.AverageQualityScore == nil || *stats.AverageQualityScore != 49.0 {
		t.Errorf("avg = %v, want 49", stats.AverageQualityScore)
	}
}

// Empty datasets report zeros and nulls, not errors or omitted keys.
func TestWaterQualityStatsEmpty(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/water-quality/stats", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats models.WaterQualityStats
	if err := json.Unmarshal(body.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalReadings != 0 || stats.AverageQualityScore != nil || stats.LatestReading != nil {
		t.Errorf("stats = %+v, want zero values", stats)
	}
	if len(stats.RiskLevelDistribution) != len(models.RiskLevels) {
		t.Errorf("distribution = %v, want all buckets", stats.RiskLevelDistribution)
	}
}

// Filtered stats requests must not share cache entries.
func TestWaterQualityStatsCacheKeyedByFilter(t *testing.T) {
	env := newTestEnv(t)
	seedFixtures(t, env.db)

	_, all := env.do(t, http.MethodGet, "/api/water-quality/stats", "", "")
	_, delhi := env.do(t, http.MethodGet, "/api/water-quality/stats?state=delhi", "", "")

	var allStats, delhiStats models.WaterQualityStats
	if err := json.Unmarshal(all.Data, &allStats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(delhi.Data, &delhiStats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if allStats.TotalReadings != 3 || delhiStats.TotalReadings != 2 {
		t.Errorf("totals = %d / %d, want 3 / 2", allStats.TotalReadings, delhiStats.TotalReadings)
	}
}

// Duplicate query keys collapse to the last value before the filter and
// its cache key are built, so a polluted query cannot diverge from the
// equivalent single-key request.
func TestWaterQualityStatsDuplicateParamsLastWins(t *testing.T) {
	env := newTestEnv(t)
	seedFixtures(t, env.db)

	rec, body := env.do(t, http.MethodGet,
		"/api/water-quality/stats?state=Delhi&state=Uttar", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats models.WaterQualityStats
	if err := json.Unmarshal(body.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	// Only the Uttar Pradesh reading counts.
	if stats.TotalReadings != 1 {
		t.Errorf("total = %d, want 1", stats.TotalReadings)
	}
	if stats.AverageQualityScore == nil || *stats.AverageQualityScore != 82.0 {
		t.Errorf("avg = %v, want 82", stats.AverageQualityScore)
	}
}
