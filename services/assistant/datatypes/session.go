// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"sync/atomic"
	"time"

	"github.com/moviops/movi/services/llm"
)

// Consequence categories for high-risk actions.
const (
	ConsequenceVehicleRemoval    = "vehicle_removal"
	ConsequenceTripDeletion      = "trip_deletion"
	ConsequenceRouteDeactivation = "route_deactivation"
)

// ConsequenceInfo captures why a proposed action was paused for
// confirmation: the category, the subject entity, and the quantitative
// impact backing the warning shown to the operator.
type ConsequenceInfo struct {
	Type              string  `json:"type"`
	TripName          string  `json:"trip_name,omitempty"`
	RouteName         string  `json:"route_name,omitempty"`
	BookingPercentage float64 `json:"booking_percentage,omitempty"`
	ActiveTrips       int     `json:"active_trips,omitempty"`
}

// ImageAttachment is a pending image sent with a chat message. It is
// processed once by the vision model on the next turn and then cleared.
type ImageAttachment struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

// Session is the per-conversation state. One session exists per page
// context; its transcript plus the pending-confirmation fields are
// everything a turn needs to resume.
//
// Invariant: ConfirmationPending is true exactly when PendingInvocation
// is non-nil. The agent core maintains this; handlers must not mutate
// these fields directly.
//
// Thread Safety: a session is owned by one turn at a time. Callers must
// hold the busy latch (TryAcquire/Release) for the duration of a turn;
// concurrent turns on the same session are rejected, not interleaved.
// The last-access timestamp is atomic because the store's sweeper reads
// it while a turn may be touching it.
type Session struct {
	Key  string `json:"key"`
	Page string `json:"page"`

	Messages []llm.Message `json:"messages"`

	ConfirmationPending bool             `json:"confirmation_pending"`
	PendingInvocation   *llm.ToolCall    `json:"pending_invocation,omitempty"`
	PendingConsequence  *ConsequenceInfo `json:"pending_consequence,omitempty"`

	PendingImage *ImageAttachment `json:"-"`

	lastAccess atomic.Int64 // unix nanos; 0 means never touched

	busy atomic.Bool
}

// NewSession creates an empty session for the given key and page.
func NewSession(key, page string, now time.Time) *Session {
	s := &Session{Key: key, Page: page}
	s.Touch(now)
	return s
}

// TryAcquire attempts to take the session's busy latch. Returns false
// if another turn currently owns the session.
func (s *Session) TryAcquire() bool {
	return s.busy.CompareAndSwap(false, true)
}

// Release returns the busy latch.
func (s *Session) Release() {
	s.busy.Store(false)
}

// Busy reports whether a turn currently owns the session.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Touch records activity for expiry tracking.
func (s *Session) Touch(now time.Time) {
	if now.IsZero() {
		s.lastAccess.Store(0)
		return
	}
	s.lastAccess.Store(now.UnixNano())
}

// LastAccess returns the time of the most recent Touch, or the zero
// time when the session has never been touched.
func (s *Session) LastAccess() time.Time {
	ns := s.lastAccess.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Append adds messages to the transcript.
func (s *Session) Append(msgs ...llm.Message) {
	s.Messages = append(s.Messages, msgs...)
}

// LastMessage returns the newest transcript message, or nil when the
// transcript is empty.
func (s *Session) LastMessage() *llm.Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

// SetPending stores a proposed invocation awaiting confirmation.
func (s *Session) SetPending(call *llm.ToolCall, info *ConsequenceInfo) {
	s.ConfirmationPending = true
	s.PendingInvocation = call
	s.PendingConsequence = info
}

// ClearPending resets all confirmation state.
func (s *Session) ClearPending() {
	s.ConfirmationPending = false
	s.PendingInvocation = nil
	s.PendingConsequence = nil
}
