// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package api

import (
	"errors"
	"net/http"

	"github.com/aquascope/aquascope/internal/database"
)

// respondStorageError maps storage sentinels onto the HTTP taxonomy.
// notFoundMessage names the missing resource; anything unrecognized is a
// 500 with a generic body, the underlying error stays server-side.
func respondStorageError(w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, notFoundMessage, nil)
	case errors.Is(err, database.ErrAlreadyResolved):
		respondError(w, http.StatusBadRequest, "Alert is already resolved", nil)
	case errors.Is(err, database.ErrNotActive):
		respondError(w, http.StatusBadRequest, "Only active alerts can be dismissed", nil)
	case errors.Is(err, database.ErrDuplicateEmail):
		respondError(w, http.StatusBadRequest, "Email already registered", nil)
	default:
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
	}
}
