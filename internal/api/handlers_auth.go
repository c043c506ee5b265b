// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package api

import (
	"net/http"

	"github.com/aquascope/aquascope/internal/auth"
	"github.com/aquascope/aquascope/internal/logging"
	"github.com/aquascope/aquascope/internal/metrics"
	"github.com/aquascope/aquascope/internal/models"
	"github.com/aquascope/aquascope/internal/sanitize"
	"github.com/aquascope/aquascope/internal/validation"
)

// RegisterRequest is the POST /api/auth/register body.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,passwordpolicy"`
	Name     string `json:"name" validate:"omitempty,min=2,max=100,personname"`
}

// LoginRequest is the POST /api/auth/login body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is the PUT /api/auth/me body. Both fields are
// optional; absent fields keep their current value.
type UpdateProfileRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	Name  string `json:"name" validate:"omitempty,min=2,max=100,personname"`
}

// authPayload is the register/login response body.
type authPayload struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new account. Every account starts with the user
// role; privilege escalation through the registration body is not
// possible because the role is never read from the request.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		metrics.ValidationFailures.WithLabelValues("/api/auth/register").Inc()
		respondValidationError(w, verr)
		return
	}

	email := sanitize.Email(req.Email)

	hash, err := auth.HashPassword(req.Password, h.cfg.Security.BcryptCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	user, err := h.db.CreateUser(r.Context(), email, hash, req.Name, models.RoleUser)
	if err != nil {
		metrics.RecordAuthAttempt("register", false)
		respondStorageError(w, err, "User not found")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	metrics.RecordAuthAttempt("register", true)
	logging.Info().Int64("user_id", user.ID).Msg("user registered")

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Success: true,
		Message: "User registered successfully",
		Data:    authPayload{Token: token, User: user},
	})
}

// Login authenticates by email and password. Unknown email and wrong
// password produce the same 401 body, and the unknown-email path still
// burns a bcrypt comparison so response timing does not reveal whether
// the account exists.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		metrics.ValidationFailures.WithLabelValues("/api/auth/login").Inc()
		respondValidationError(w, verr)
		return
	}

	email := sanitize.Email(req.Email)

	user, err := h.db.GetUserByEmail(r.Context(), email)
	if err != nil {
		auth.VerifyPassword(req.Password, "")
		metrics.RecordAuthAttempt("login", false)
		respondError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	if !auth.VerifyPassword(req.Password, user.Password) {
		metrics.RecordAuthAttempt("login", false)
		logging.Warn().Int64("user_id", user.ID).Msg("failed login attempt")
		respondError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	metrics.RecordAuthAttempt("login", true)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Message: "Login successful",
		Data:    authPayload{Token: token, User: user},
	})
}

// Me returns the authenticated user's profile, read fresh from storage
// so role or profile changes since token issuance are visible.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	subject := auth.SubjectFrom(r.Context())
	if subject == nil {
		respondError(w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	user, err := h.db.GetUserByID(r.Context(), subject.UserID)
	if err != nil {
		respondStorageError(w, err, "User not found")
		return
	}

	respondData(w, http.StatusOK, user)
}

// UpdateMe updates the authenticated user's email and/or name. The role
// is never updatable through this endpoint.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	subject := auth.SubjectFrom(r.Context())
	if subject == nil {
		respondError(w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		metrics.ValidationFailures.WithLabelValues("/api/auth/me").Inc()
		respondValidationError(w, verr)
		return
	}

	current, err := h.db.GetUserByID(r.Context(), subject.UserID)
	if err != nil {
		respondStorageError(w, err, "User not found")
		return
	}

	email := current.Email
	if req.Email != "" {
		email = sanitize.Email(req.Email)
	}
	name := current.Name
	if req.Name != "" {
		name = req.Name
	}

	user, err := h.db.UpdateUser(r.Context(), subject.UserID, email, name)
	if err != nil {
		respondStorageError(w, err, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Message: "Profile updated successfully",
		Data:    user,
	})
}
