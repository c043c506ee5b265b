// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/aquascope/aquascope/internal/logging"
	"github.com/aquascope/aquascope/internal/models"
	"github.com/aquascope/aquascope/internal/sanitize"
	"github.com/aquascope/aquascope/internal/validation"
)

// maxBodyBytes bounds request bodies; every write endpoint carries small
// JSON documents.
const maxBodyBytes = 1 << 20

// respondJSON writes the response envelope with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData writes a success envelope around a payload.
func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, &models.APIResponse{Success: true, Data: data})
}

// respondList writes a success envelope with a count and optional
// pagination block.
func respondList(w http.ResponseWriter, data interface{}, count int, pagination *models.Pagination) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success:    true,
		Data:       data,
		Count:      &count,
		Pagination: pagination,
	})
}

// respondError writes a failure envelope. The wrapped error is logged
// server-side with sanitized values; the client sees only the message.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		logging.Error().
			Int("status", status).
			Str("error", sanitize.LogValue(err.Error())).
			Msg("API error")
	}
	respondJSON(w, status, &models.APIResponse{Success: false, Error: message})
}

// respondValidationError writes the 400 validation envelope with the
// structured field errors.
func respondValidationError(w http.ResponseWriter, verr *validation.RequestValidationError) {
	fieldErrors := verr.FieldErrors()
	errors := make([]models.FieldError, len(fieldErrors))
	for i, fe := range fieldErrors {
		errors[i] = models.FieldError{Field: fe.Field, Message: fe.Message}
	}
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Success: false,
		Error:   "Validation failed",
		Errors:  errors,
	})
}

// decodeJSON reads a JSON request body into dst with a size cap and
// unknown fields rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// queryParam reads a scalar query parameter with the last-value-wins
// policy, so duplicate keys cannot smuggle array-shaped values past the
// handlers.
func queryParam(r *http.Request, key string) string {
	return sanitize.LastValue(r.URL.Query(), key)
}

// getIntParam reads an integer query parameter with a default. Unparsable
// values fall back to the default rather than erroring, matching the
// permissive read behavior of list endpoints.
func getIntParam(r *http.Request, key string, def int) int {
	raw := queryParam(r, key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// getInt64Param reads an optional int64 query parameter. Returns nil when
// absent or unparsable.
func getInt64Param(r *http.Request, key string) *int64 {
	raw := queryParam(r, key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// getDateParam reads an optional date query parameter, accepting RFC3339
// or plain dates. Returns nil when absent or unparsable.
func getDateParam(r *http.Request, key string) *time.Time {
	raw := queryParam(r, key)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// pathID parses a numeric chi path parameter.
func pathID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", sanitize.LogValue(raw))
	}
	return id, nil
}
