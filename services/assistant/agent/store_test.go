// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "session_dashboard", SessionKey("dashboard"))
	assert.Equal(t, "session_", SessionKey(""))
}

func TestInMemorySessionStore(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("get or create is idempotent", func(t *testing.T) {
		store := NewInMemorySessionStore(0)
		a := store.GetOrCreate("session_dashboard", "dashboard", now)
		b := store.GetOrCreate("session_dashboard", "dashboard", now.Add(time.Minute))
		assert.Same(t, a, b)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("get returns nil for unknown key", func(t *testing.T) {
		store := NewInMemorySessionStore(0)
		assert.Nil(t, store.Get("session_missing"))
	})

	t.Run("delete removes the session", func(t *testing.T) {
		store := NewInMemorySessionStore(0)
		store.GetOrCreate("session_dashboard", "dashboard", now)
		store.Delete("session_dashboard")
		assert.Nil(t, store.Get("session_dashboard"))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("sweep removes idle sessions past the timeout", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Hour)
		stale := store.GetOrCreate("session_routes", "routes", now)
		stale.Touch(now)
		fresh := store.GetOrCreate("session_trips", "trips", now)
		fresh.Touch(now.Add(50 * time.Minute))

		removed := store.SweepExpired(now.Add(61 * time.Minute))
		assert.Equal(t, 1, removed)
		assert.Nil(t, store.Get("session_routes"))
		require.NotNil(t, store.Get("session_trips"))
	})

	t.Run("sweep keeps sessions inside the timeout", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Hour)
		sess := store.GetOrCreate("session_dashboard", "dashboard", now)
		sess.Touch(now)
		assert.Equal(t, 0, store.SweepExpired(now.Add(time.Hour)))
		assert.NotNil(t, store.Get("session_dashboard"))
	})

	t.Run("zero last access counts as expired", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Hour)
		sess := store.GetOrCreate("session_dashboard", "dashboard", now)
		sess.Touch(time.Time{})
		assert.Equal(t, 1, store.SweepExpired(now))
	})

	t.Run("sweep skips busy sessions", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Hour)
		sess := store.GetOrCreate("session_dashboard", "dashboard", now)
		sess.Touch(now)
		require.True(t, sess.TryAcquire())

		assert.Equal(t, 0, store.SweepExpired(now.Add(2*time.Hour)))
		require.NotNil(t, store.Get("session_dashboard"))

		sess.Release()
		assert.Equal(t, 1, store.SweepExpired(now.Add(2*time.Hour)))
		assert.Nil(t, store.Get("session_dashboard"))
	})

	t.Run("busy latch is exclusive", func(t *testing.T) {
		store := NewInMemorySessionStore(0)
		sess := store.GetOrCreate("session_dashboard", "dashboard", now)
		require.True(t, sess.TryAcquire())
		assert.False(t, sess.TryAcquire())
		sess.Release()
		assert.True(t, sess.TryAcquire())
	})
}

func TestSessionStoreConcurrentTouchAndSweep(t *testing.T) {
	store := NewInMemorySessionStore(time.Hour)
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	sess := store.GetOrCreate("session_dashboard", "dashboard", base)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			sess.Touch(base.Add(time.Duration(i) * time.Second))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			store.SweepExpired(base.Add(time.Duration(i) * time.Second))
		}
	}()
	wg.Wait()

	require.NotNil(t, store.Get("session_dashboard"))
	assert.Equal(t, base.Add(999*time.Second).UnixNano(), sess.LastAccess().UnixNano())
}
