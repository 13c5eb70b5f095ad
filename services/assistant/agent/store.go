// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"sync"
	"time"

	"github.com/moviops/movi/services/assistant/datatypes"
)

// DefaultSessionTimeout is how long a session may sit idle before it
// is swept.
const DefaultSessionTimeout = time.Hour

// SessionKey derives the store key from the page context. Sessions are
// keyed by page alone: every operator on the same page shares one
// conversation. This mirrors the dashboard's single-operator deployment
// model and is a known limitation for multi-operator use.
func SessionKey(page string) string {
	return "session_" + page
}

// SessionStore owns conversation state across turns.
//
// Thread Safety: implementations must be safe for concurrent use.
// Note that the store guards its map, not the sessions themselves;
// per-session exclusivity comes from the session busy latch.
type SessionStore interface {
	// GetOrCreate returns the session for key, creating it if absent.
	GetOrCreate(key, page string, now time.Time) *datatypes.Session

	// Get returns the session for key, or nil.
	Get(key string) *datatypes.Session

	// Put stores a session under its key.
	Put(s *datatypes.Session)

	// Delete removes a session.
	Delete(key string)

	// SweepExpired removes every session idle past the timeout and
	// returns how many were removed. A session with a zero last-access
	// time is treated as expired; a session whose busy latch is held is
	// never removed, whatever its age.
	SweepExpired(now time.Time) int

	// Len returns the number of live sessions.
	Len() int
}

// InMemorySessionStore is a map-backed SessionStore with idle-timeout
// sweeping. The sweep is opportunistic: the orchestrator calls
// SweepExpired at the start of every turn, and the ttl sweeper may also
// run it on an interval.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*datatypes.Session
	timeout  time.Duration
}

// NewInMemorySessionStore creates a store with the given idle timeout.
// A non-positive timeout falls back to DefaultSessionTimeout.
func NewInMemorySessionStore(timeout time.Duration) *InMemorySessionStore {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	return &InMemorySessionStore{
		sessions: make(map[string]*datatypes.Session),
		timeout:  timeout,
	}
}

// GetOrCreate implements SessionStore.
func (s *InMemorySessionStore) GetOrCreate(key, page string, now time.Time) *datatypes.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[key]; ok {
		return sess
	}
	sess := datatypes.NewSession(key, page, now)
	s.sessions[key] = sess
	return sess
}

// Get implements SessionStore.
func (s *InMemorySessionStore) Get(key string) *datatypes.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[key]
}

// Put implements SessionStore.
func (s *InMemorySessionStore) Put(sess *datatypes.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Key] = sess
}

// Delete implements SessionStore.
func (s *InMemorySessionStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}

// SweepExpired implements SessionStore.
func (s *InMemorySessionStore) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, sess := range s.sessions {
		if sess.Busy() {
			continue
		}
		last := sess.LastAccess()
		if last.IsZero() || now.Sub(last) > s.timeout {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed
}

// Len implements SessionStore.
func (s *InMemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
