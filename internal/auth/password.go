// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost balances security and login latency.
const DefaultBcryptCost = 12

// dummyHash is compared against when no stored hash exists, so a login
// probe for an unknown email costs the same bcrypt work as a real
// verification and cannot be distinguished by timing.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("aquascope-timing-pad"), DefaultBcryptCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy hash: %v", err))
	}
	return h
}()

// HashPassword hashes a plaintext password with bcrypt at the given cost.
// Cost values outside bcrypt's range fall back to DefaultBcryptCost.
func HashPassword(plaintext string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches the stored hash. When
// hash is empty (unknown user), the comparison runs against a dummy hash
// so the work done does not leak account existence.
func VerifyPassword(plaintext, hash string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plaintext))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
