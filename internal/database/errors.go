// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package database

import (
	"errors"
	"io"

	"github.com/aquascope/aquascope/internal/logging"
)

// Storage sentinels. The API layer maps these onto HTTP status codes and
// the exact user-facing messages; handlers must never leak raw SQL errors.
var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyResolved is returned when a state transition is attempted
	// on an alert already in a terminal status.
	ErrAlreadyResolved = errors.New("alert is already resolved")

	// ErrNotActive is returned when dismissing an alert that is not active.
	ErrNotActive = errors.New("only active alerts can be dismissed")

	// ErrDuplicateEmail is returned when registering an email that is
	// already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// closeQuietly closes a resource and explicitly ignores any error.
// Use in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// closeWithLog closes a resource and logs any error. Use for cleanup
// where errors should be acknowledged but not fail the operation.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}
