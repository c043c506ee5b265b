// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aquascope/aquascope/internal/auth"
	"github.com/aquascope/aquascope/internal/config"
	"github.com/aquascope/aquascope/internal/metrics"
	"github.com/aquascope/aquascope/internal/middleware"
	"github.com/aquascope/aquascope/internal/models"
	"github.com/aquascope/aquascope/internal/ratelimit"
)

// NewRouter assembles the full HTTP surface: middleware chain, rate
// limiters, and route groups with their auth requirements.
func NewRouter(h *Handler, authmw *auth.Middleware, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.PrometheusMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	generalLimit := generalLimiter(cfg)
	authLimit := authLimiter(cfg)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Login and registration carry a strict limiter so credential
		// stuffing burns out quickly.
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authLimit)
				r.Post("/register", h.Register)
				r.Post("/login", h.Login)
			})
			r.Group(func(r chi.Router) {
				r.Use(generalLimit)
				r.Use(authmw.Authenticate)
				r.Get("/me", h.Me)
				r.Put("/me", h.UpdateMe)
			})
		})

		// Read endpoints are public; a valid token still attaches the
		// subject for request logging.
		r.Route("/water-quality", func(r chi.Router) {
			r.Use(generalLimit)
			r.Use(authmw.OptionalAuth)
			r.Get("/", h.ListReadings)
			r.Get("/parameters", h.Parameters)
			r.Get("/stats", h.WaterQualityStats)
			r.Get("/location/{locationId}", h.ReadingsByLocation)
			r.Get("/{id}", h.GetReading)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Use(generalLimit)

			r.Group(func(r chi.Router) {
				r.Use(authmw.OptionalAuth)
				r.Get("/", h.ListAlerts)
				r.Get("/active", h.ActiveAlerts)
				r.Get("/stats", h.AlertStats)
				r.Get("/{id}", h.GetAlert)
			})

			// Status transitions are restricted to moderators and admins.
			r.Group(func(r chi.Router) {
				r.Use(authmw.Authenticate)
				r.Use(auth.RequireRoles(models.RoleModerator, models.RoleAdmin))
				r.Put("/{id}/resolve", h.ResolveAlert)
				r.Put("/{id}/dismiss", h.DismissAlert)
			})
		})

		r.Route("/predictions", func(r chi.Router) {
			r.Use(generalLimit)
			r.Use(authmw.OptionalAuth)
			r.Get("/", h.ListPredictions)
			r.Get("/hotspots", h.PredictionHotspots)
			r.Get("/stats", h.PredictionStats)
			r.Get("/location/{locationId}", h.PredictionsByLocation)
			r.Get("/{id}", h.GetPrediction)
		})

		r.Route("/locations", func(r chi.Router) {
			r.Use(generalLimit)
			r.Use(authmw.OptionalAuth)
			r.Get("/", h.ListLocations)
			r.Get("/stats", h.LocationStats)
			r.Get("/risk-summary", h.RiskSummary)
			r.Get("/search", h.SearchLocations)
			r.Get("/{id}", h.GetLocation)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "Endpoint not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	return r
}

// generalLimiter builds the shared API limiter. The key function runs the
// same proxy-aware address resolution as the strict limiter, so both see
// the same client identity.
func generalLimiter(cfg *config.Config) func(http.Handler) http.Handler {
	if cfg.RateLimit.Disabled {
		return passthrough
	}
	depth := cfg.RateLimit.TrustProxyDepth
	return httprate.Limit(
		cfg.RateLimit.Requests,
		cfg.RateLimit.Window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return ratelimit.ClientAddr(r, depth), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			metrics.RecordRateLimitRejection("api")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			body, err := json.Marshal(&models.APIResponse{
				Success: false,
				Error:   "Too many requests, please try again later",
			})
			if err == nil {
				_, _ = w.Write(body)
			}
		}),
	)
}

// authLimiter builds the strict fixed-window limiter mounted on login and
// registration.
func authLimiter(cfg *config.Config) func(http.Handler) http.Handler {
	if cfg.RateLimit.Disabled {
		return passthrough
	}
	limiter := &ratelimit.Limiter{
		Scope:      "auth",
		Max:        cfg.RateLimit.AuthRequests,
		Window:     cfg.RateLimit.AuthWindow,
		TrustDepth: cfg.RateLimit.TrustProxyDepth,
		Store:      ratelimit.NewMemoryStore(),
		OnReject:   metrics.RecordRateLimitRejection,
	}
	return limiter.Handler
}

func passthrough(next http.Handler) http.Handler { return next }
