// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

// Package middleware holds HTTP middleware shared across route groups:
// request ID propagation, Prometheus instrumentation, and security
// headers.
package middleware

import (
	"net/http"

	"github.com/aquascope/aquascope/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns each request a unique ID, honoring one supplied by a
// trusted upstream proxy. The ID is echoed in the response header and
// stored in the logging context so every log line of the request carries
// it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}

		w.Header().Set(requestIDHeader, requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
