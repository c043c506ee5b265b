// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/aquascope/aquascope/internal/logging"
	"github.com/aquascope/aquascope/internal/models"
)

// Middleware provides the authentication and authorization HTTP
// middleware. Role checks run on every request; nothing is cached across
// requests for a token.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware creates the auth middleware around a TokenManager.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Authenticate requires a valid bearer token. The verified subject is
// attached to the request context; missing, malformed, tampered, or
// expired tokens fail closed with 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondAuthError(w, http.StatusUnauthorized, "No token provided")
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				respondAuthError(w, http.StatusUnauthorized, "Token expired")
				return
			}
			respondAuthError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		subject := &Subject{UserID: claims.UserID(), Email: claims.Email, Role: claims.Role}
		next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
	})
}

// OptionalAuth attaches a subject when a valid bearer token is present
// and continues anonymously otherwise. An invalid token is ignored, not
// rejected.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if claims, err := m.tokens.Verify(token); err == nil {
				subject := &Subject{UserID: claims.UserID(), Email: claims.Email, Role: claims.Role}
				r = r.WithContext(WithSubject(r.Context(), subject))
			} else {
				logging.Debug().Str("path", r.URL.Path).Msg("optional auth token rejected")
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoles gates a route to the given role set. It must be mounted
// after Authenticate. An unauthenticated request gets 401; an
// authenticated subject outside the set gets 403.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := SubjectFrom(r.Context())
			if subject == nil {
				respondAuthError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !subject.HasRole(roles...) {
				logging.Warn().
					Int64("user_id", subject.UserID).
					Str("role", subject.Role).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Msg("access denied: role not permitted")
				respondAuthError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	return token, token != ""
}

func respondAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body, err := json.Marshal(&models.APIResponse{Success: false, Error: message})
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal auth error response")
		return
	}
	if _, err := w.Write(body); err != nil {
		logging.Error().Err(err).Msg("failed to write auth error response")
	}
}
