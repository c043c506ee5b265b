// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/aquascope/aquascope/internal/models"
)

func newTestLimiter(max int, trustDepth int) *Limiter {
	return &Limiter{
		Scope:      "auth",
		Max:        max,
		Window:     15 * time.Minute,
		TrustDepth: trustDepth,
		Store:      NewMemoryStore(),
	}
}

func doRequest(h http.Handler, remoteAddr, forwardedFor string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	r.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		r.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLimiter_BlocksOverLimit(t *testing.T) {
	limiter := newTestLimiter(5, 0)
	h := limiter.Handler(okHandler())

	for i := 1; i <= 5; i++ {
		w := doRequest(h, "203.0.113.9:41000", "")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
	}

	w := doRequest(h, "203.0.113.9:41000", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("request 6: status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After header")
	}

	var resp models.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal 429 body: %v", err)
	}
	if resp.Success {
		t.Error("429 body has success=true")
	}
	if resp.Error != "Too many requests, please try again later" {
		t.Errorf("429 error = %q", resp.Error)
	}
}

// Exhausting one client's budget must not touch another client's. With a
// trusted proxy in front, identity comes from the forwarded chain.
func TestLimiter_ClientsAreIsolated(t *testing.T) {
	limiter := newTestLimiter(5, 1)
	h := limiter.Handler(okHandler())

	for i := 0; i < 6; i++ {
		doRequest(h, "192.0.2.1:443", "10.0.0.1")
	}
	if w := doRequest(h, "192.0.2.1:443", "10.0.0.1"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("exhausted client: status = %d, want 429", w.Code)
	}

	if w := doRequest(h, "192.0.2.1:443", "10.0.0.2"); w.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", w.Code)
	}
}

// A forged X-Forwarded-For must not mint fresh identities when no proxy
// is trusted.
func TestLimiter_DepthZeroIgnoresForgedHeader(t *testing.T) {
	limiter := newTestLimiter(5, 0)
	h := limiter.Handler(okHandler())

	for i := 0; i < 5; i++ {
		doRequest(h, "203.0.113.9:41000", "10.0.0.1")
	}
	w := doRequest(h, "203.0.113.9:41000", "99.99.99.99")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("forged header evaded limit: status = %d, want 429", w.Code)
	}
}

// Requests made while over the limit count against the same window; they
// must not push the reset time forward.
func TestLimiter_OverLimitDoesNotExtendWindow(t *testing.T) {
	store := NewMemoryStore()
	now := time.Unix(5000, 0)
	store.now = func() time.Time { return now }

	limiter := &Limiter{
		Scope:  "auth",
		Max:    2,
		Window: time.Minute,
		Store:  store,
	}
	h := limiter.Handler(okHandler())

	doRequest(h, "203.0.113.9:41000", "")
	first := doRequest(h, "203.0.113.9:41000", "")
	wantReset := first.Header().Get("RateLimit-Reset")

	now = now.Add(30 * time.Second)
	over := doRequest(h, "203.0.113.9:41000", "")
	if over.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", over.Code)
	}
	if got := over.Header().Get("RateLimit-Reset"); got != wantReset {
		t.Errorf("over-limit request moved reset: %s -> %s", wantReset, got)
	}

	// After the original window elapses the client is admitted again.
	now = now.Add(31 * time.Second)
	if w := doRequest(h, "203.0.113.9:41000", ""); w.Code != http.StatusOK {
		t.Errorf("post-window status = %d, want 200", w.Code)
	}
}

func TestLimiter_SetsRateLimitHeaders(t *testing.T) {
	limiter := newTestLimiter(5, 0)
	h := limiter.Handler(okHandler())

	w := doRequest(h, "203.0.113.9:41000", "")
	if got := w.Header().Get("RateLimit-Limit"); got != "5" {
		t.Errorf("RateLimit-Limit = %q, want 5", got)
	}
	if got := w.Header().Get("RateLimit-Remaining"); got != "4" {
		t.Errorf("RateLimit-Remaining = %q, want 4", got)
	}
	if w.Header().Get("RateLimit-Reset") == "" {
		t.Error("RateLimit-Reset not set")
	}
}

func TestLimiter_ScopesDoNotShareBuckets(t *testing.T) {
	store := NewMemoryStore()
	authLimiter := &Limiter{Scope: "auth", Max: 1, Window: time.Minute, Store: store}
	apiLimiter := &Limiter{Scope: "api", Max: 1, Window: time.Minute, Store: store}

	authHandler := authLimiter.Handler(okHandler())
	apiHandler := apiLimiter.Handler(okHandler())

	doRequest(authHandler, "203.0.113.9:41000", "")
	if w := doRequest(authHandler, "203.0.113.9:41000", ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("auth scope: status = %d, want 429", w.Code)
	}
	if w := doRequest(apiHandler, "203.0.113.9:41000", ""); w.Code != http.StatusOK {
		t.Errorf("api scope shares auth bucket: status = %d, want 200", w.Code)
	}
}

func TestLimiter_OnRejectFires(t *testing.T) {
	var rejected []string
	limiter := newTestLimiter(1, 0)
	limiter.OnReject = func(scope string) { rejected = append(rejected, scope) }
	h := limiter.Handler(okHandler())

	doRequest(h, "203.0.113.9:41000", "")
	doRequest(h, "203.0.113.9:41000", "")
	if len(rejected) != 1 || rejected[0] != "auth" {
		t.Errorf("OnReject calls = %v, want [auth]", rejected)
	}
}
