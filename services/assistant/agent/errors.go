// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import "errors"

var (
	// ErrInvalidTransition is returned when the turn state machine is
	// asked to make a move its transition table does not allow.
	ErrInvalidTransition = errors.New("agent: invalid state transition")

	// ErrSessionBusy is returned when a turn arrives for a session that
	// is still processing a previous turn.
	ErrSessionBusy = errors.New("agent: session busy")
)
