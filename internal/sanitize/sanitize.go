// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

// Package sanitize normalizes untrusted query-string input before it
// reaches validation or query construction.
//
// Two attack surfaces are covered:
//
//   - HTTP Parameter Pollution: a client may bind the same query key more
//     than once (?q=A&q=B). Every scalar read goes through LastValue so a
//     duplicate key deterministically resolves to the last supplied value
//     instead of an array-shaped surprise downstream.
//   - Pattern injection: values interpolated into LIKE predicates are
//     escaped with EscapeLike so "%" and "_" lose their metacharacter
//     meaning and an empty input can never become a match-all pattern.
//
// All functions are pure.
package sanitize

import (
	"fmt"
	"net/url"
	"strings"
)

// LikeEscapeChar is the escape character used in LIKE ... ESCAPE clauses
// built from EscapeLike output.
const LikeEscapeChar = `\`

// LastValue resolves a possibly-duplicated query key to a single scalar
// using the last-value-wins policy. Returns "" when the key is absent.
func LastValue(values url.Values, key string) string {
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return ""
	}
	return vs[len(vs)-1]
}

// Normalize reduces every key of a raw query to a single scalar value,
// applying the last-value-wins policy across the whole map.
func Normalize(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for key, vs := range values {
		if len(vs) == 0 {
			continue
		}
		out[key] = vs[len(vs)-1]
	}
	return out
}

// EscapeLike escapes LIKE metacharacters (%, _) and the escape character
// itself. The result is safe to embed between wildcards in a substring
// predicate ("%" + EscapeLike(v) + "%") together with ESCAPE '\'.
// Empty input yields "", which callers must treat as "no filter", never
// as a wildcard.
func EscapeLike(value string) string {
	if value == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch r {
		case '%', '_', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Email lowercases, trims, and shape-checks an email address. Returns ""
// when the input does not look like an address, so callers fail closed.
func Email(email string) string {
	s := strings.ToLower(strings.TrimSpace(email))
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return ""
	}
	domain := s[at+1:]
	if strings.ContainsAny(s, " \t\r\n") || strings.IndexByte(domain, '@') >= 0 {
		return ""
	}
	dot := strings.LastIndexByte(domain, '.')
	if dot <= 0 || dot == len(domain)-1 {
		return ""
	}
	return s
}

// LogValue replaces control characters with their hex escapes so
// request-derived strings cannot forge log lines.
func LogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
