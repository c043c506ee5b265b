// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// loginFrom issues a login request with a forwarded client address, as a
// reverse proxy at trust depth 1 would present it.
func loginFrom(handler http.Handler, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"x@example.com","password":"Password1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:41000" // the proxy
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Disabled = false
	cfg.RateLimit.AuthRequests = 3
	env := newTestEnvWith(t, cfg)

	for i := 0; i < 3; i++ {
		if rec := loginFrom(env.handler, "203.0.113.7"); rec.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d limited early", i+1)
		}
	}

	rec := loginFrom(env.handler, "203.0.113.7")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After missing")
	}
	if !strings.Contains(rec.Body.String(), "Too many requests") {
		t.Errorf("body = %q", rec.Body.String())
	}

	// A different forwarded client behind the same proxy is unaffected.
	if rec := loginFrom(env.handler, "203.0.113.8"); rec.Code == http.StatusTooManyRequests {
		t.Error("other client shares the exhausted bucket")
	}
}

// At trust depth 0 the forwarded header is attacker-controlled noise;
// rotating it must not mint fresh buckets.
func TestAuthRateLimitDepthZeroIgnoresForgedHeader(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Disabled = false
	cfg.RateLimit.AuthRequests = 3
	cfg.RateLimit.TrustProxyDepth = 0
	env := newTestEnvWith(t, cfg)

	addrs := []string{"1.1.1.1", "2.2.2.2", "3.3.3.3", "4.4.4.4"}
	var last int
	for _, spoofed := range addrs {
		last = loginFrom(env.handler, spoofed).Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 despite rotating header", last)
	}
}

// The strict auth limiter must not throttle the read endpoints.
func TestAuthRateLimitScopedToAuthRoutes(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Disabled = false
	cfg.RateLimit.AuthRequests = 1
	env := newTestEnvWith(t, cfg)

	loginFrom(env.handler, "203.0.113.7")
	if rec := loginFrom(env.handler, "203.0.113.7"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("auth: status = %d, want 429", rec.Code)
	}

	rec, _ := env.do(t, http.MethodGet, "/api/locations", "", "")
	if rec.Code == http.StatusTooManyRequests {
		t.Error("read endpoint throttled by auth limiter")
	}
}

func TestGeneralRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Disabled = false
	cfg.RateLimit.Requests = 5
	env := newTestEnvWith(t, cfg)

	var code int
	for i := 0; i < 6; i++ {
		rec, _ := env.do(t, http.MethodGet, "/api/locations", "", "")
		code = rec.Code
	}
	if code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 on sixth request", code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	// Generate at least one instrumented request first.
	env.do(t, http.MethodGet, "/api/health", "", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Error("exposition missing api_requests_total")
	}
}

func TestCORSHeaders(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/locations", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
