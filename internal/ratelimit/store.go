// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package ratelimit

import (
	"sync"
	"time"
)

// CounterStore is a keyed fixed-window counter. Increment must be atomic
// per key under concurrent requests: a read-modify-write race would let a
// burst of simultaneous requests all observe "below limit" and bypass the
// cap. The in-process MemoryStore suits single-instance deployments; a
// shared atomic counter service can implement the same interface for
// multi-instance ones.
type CounterStore interface {
	// Increment adds one request to the key's current window and
	// returns the post-increment count plus the window's reset time.
	// A window that has elapsed is replaced before counting.
	Increment(key string, window time.Duration) (count int, reset time.Time)
}

type bucket struct {
	count       int
	windowStart time.Time
}

// MemoryStore is a process-wide CounterStore backed by a mutex-protected
// map. Counts are monotonically increasing within a window and reset
// exactly at window rollover.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewMemoryStore creates an empty in-process counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Increment implements CounterStore. The whole read-modify-write runs
// under the store lock, so concurrent increments on one bucket serialize.
func (s *MemoryStore) Increment(key string, window time.Duration) (int, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]
	if !ok || now.Sub(b.windowStart) >= window {
		b = &bucket{windowStart: now}
		s.buckets[key] = b
	}
	b.count++
	return b.count, b.windowStart.Add(window)
}

// Len returns the number of live buckets. Intended for tests and
// introspection.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}
