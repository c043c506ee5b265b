// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_Monotonic(t *testing.T) {
	store := NewMemoryStore()

	for i := 1; i <= 10; i++ {
		count, _ := store.Increment("auth|10.0.0.1", time.Minute)
		if count != i {
			t.Fatalf("increment %d returned count %d", i, count)
		}
	}
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	store := NewMemoryStore()

	for i := 0; i < 5; i++ {
		store.Increment("auth|10.0.0.1", time.Minute)
	}
	count, _ := store.Increment("auth|10.0.0.2", time.Minute)
	if count != 1 {
		t.Errorf("fresh key count = %d, want 1", count)
	}
}

func TestMemoryStore_WindowRollover(t *testing.T) {
	store := NewMemoryStore()
	now := time.Unix(1000, 0)
	store.now = func() time.Time { return now }

	window := time.Minute
	count, reset := store.Increment("k", window)
	if count != 1 {
		t.Fatalf("first count = %d, want 1", count)
	}
	if want := now.Add(window); !reset.Equal(want) {
		t.Errorf("reset = %v, want %v", reset, want)
	}

	// Still inside the window: count keeps rising.
	now = now.Add(59 * time.Second)
	if count, _ = store.Increment("k", window); count != 2 {
		t.Errorf("in-window count = %d, want 2", count)
	}

	// Window elapsed: count restarts at 1.
	now = now.Add(2 * time.Second)
	if count, _ = store.Increment("k", window); count != 1 {
		t.Errorf("post-rollover count = %d, want 1", count)
	}
}

// Concurrent increments on one bucket must not lose updates; a lost
// update is exactly the race that lets a burst bypass the limit.
func TestMemoryStore_ConcurrentIncrements(t *testing.T) {
	store := NewMemoryStore()

	const goroutines = 50
	const perGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				store.Increment("burst", time.Hour)
			}
		}()
	}
	wg.Wait()

	count, _ := store.Increment("burst", time.Hour)
	if want := goroutines*perGoroutine + 1; count != want {
		t.Errorf("final count = %d, want %d", count, want)
	}
}

func TestMemoryStore_ManyKeys(t *testing.T) {
	store := NewMemoryStore()
	for i := 0; i < 100; i++ {
		store.Increment(fmt.Sprintf("k%d", i), time.Minute)
	}
	if store.Len() != 100 {
		t.Errorf("Len = %d, want 100", store.Len())
	}
}
