// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package auth

import "context"

// Subject is the authenticated identity attached to a request context by
// the Authenticate and OptionalAuth middleware.
type Subject struct {
	UserID int64
	Email  string
	Role   string
}

// HasRole reports whether the subject's role is in the allowed set. This
// is a plain set-membership check; no privilege ordering is assumed.
func (s *Subject) HasRole(roles ...string) bool {
	for _, role := range roles {
		if s.Role == role {
			return true
		}
	}
	return false
}

type subjectKey struct{}

// WithSubject stores the authenticated subject in the context.
func WithSubject(ctx context.Context, s *Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, s)
}

// SubjectFrom returns the authenticated subject, or nil for anonymous
// requests.
func SubjectFrom(ctx context.Context) *Subject {
	s, _ := ctx.Value(subjectKey{}).(*Subject)
	return s
}
