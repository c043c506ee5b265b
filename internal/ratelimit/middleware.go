// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/aquascope/aquascope/internal/logging"
	"github.com/aquascope/aquascope/internal/models"
)

// Limiter is a fixed-window rate limiting middleware keyed by
// (scope, resolved client address). Requests beyond Max within one window
// are rejected with 429 and do not reset the window.
type Limiter struct {
	// Scope namespaces the counter keys so different route groups with
	// the same limits never share buckets.
	Scope string

	// Max is the number of requests allowed per window.
	Max int

	// Window is the fixed counting interval.
	Window time.Duration

	// TrustDepth is the number of trusted reverse-proxy hops used for
	// client address resolution.
	TrustDepth int

	// Store holds the counters. Shared across limiters by design; the
	// scope keeps keys disjoint.
	Store CounterStore

	// OnReject, when set, observes each rejected request (metrics).
	OnReject func(scope string)
}

// Handler wraps next with the rate limit check.
func (l *Limiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := ClientAddr(r, l.TrustDepth)
		count, reset := l.Store.Increment(l.Scope+"|"+addr, l.Window)

		remaining := l.Max - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("RateLimit-Limit", strconv.Itoa(l.Max))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if count > l.Max {
			if l.OnReject != nil {
				l.OnReject(l.Scope)
			}
			logging.Warn().
				Str("scope", l.Scope).
				Str("client", addr).
				Int("count", count).
				Msg("rate limit exceeded")

			w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(reset).Seconds())+1))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			body, err := json.Marshal(&models.APIResponse{
				Success: false,
				Error:   "Too many requests, please try again later",
			})
			if err == nil {
				_, _ = w.Write(body)
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}
