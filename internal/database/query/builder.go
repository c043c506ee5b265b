// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

// Package query provides SQL query building utilities for the database
// package. It keeps parameter handling in one place so every filter path
// stays parameterized.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/aquascope/aquascope/internal/sanitize"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddDateRange("r.measurement_date", startDate, endDate)
//	wb.AddEquals("r.risk_level", "high")
//	whereClause, args := wb.Build()
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments. Useful for
// conditions not covered by helper methods.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddEquals adds "column = ?" when value is non-empty.
func (wb *WhereBuilder) AddEquals(column, value string) *WhereBuilder {
	if value != "" {
		wb.clauses = append(wb.clauses, column+" = ?")
		wb.args = append(wb.args, value)
	}
	return wb
}

// AddEqualsInt64 adds "column = ?" when value is non-nil.
func (wb *WhereBuilder) AddEqualsInt64(column string, value *int64) *WhereBuilder {
	if value != nil {
		wb.clauses = append(wb.clauses, column+" = ?")
		wb.args = append(wb.args, *value)
	}
	return wb
}

// AddSubstring adds a case-insensitive substring match on column. The
// value is LIKE-escaped so user-supplied wildcards match literally; an
// empty value is skipped entirely, never turned into a match-all pattern.
func (wb *WhereBuilder) AddSubstring(column, value string) *WhereBuilder {
	escaped := sanitize.EscapeLike(value)
	if escaped == "" {
		return wb
	}
	wb.clauses = append(wb.clauses,
		fmt.Sprintf("%s LIKE ? ESCAPE '%s'", column, sanitize.LikeEscapeChar))
	wb.args = append(wb.args, "%"+escaped+"%")
	return wb
}

// AddDateRange adds start and/or end bounds on a timestamp column. Nil
// dates are skipped.
func (wb *WhereBuilder) AddDateRange(column string, startDate, endDate *time.Time) *WhereBuilder {
	if startDate != nil {
		wb.clauses = append(wb.clauses, column+" >= ?")
		wb.args = append(wb.args, *startDate)
	}
	if endDate != nil {
		wb.clauses = append(wb.clauses, column+" <= ?")
		wb.args = append(wb.args, *endDate)
	}
	return wb
}

// AddIn adds "column IN (?, ?, ...)" with proper parameterization.
// An empty value list is skipped.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) > 0 {
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = "?"
			wb.args = append(wb.args, v)
		}
		wb.clauses = append(wb.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	}
	return wb
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", []) if no clauses were
// added, so callers can always interpolate the result after WHERE.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
