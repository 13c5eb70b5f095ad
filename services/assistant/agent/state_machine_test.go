// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnStateMachine(t *testing.T) {
	m := NewTurnStateMachine()

	t.Run("allows declared transitions", func(t *testing.T) {
		allowed := []struct {
			from, to State
		}{
			{StateEntry, StateModel},
			{StateEntry, StateConfirm},
			{StateModel, StateConsequenceCheck},
			{StateModel, StateDone},
			{StateConsequenceCheck, StateExecute},
			{StateConsequenceCheck, StateDone},
			{StateExecute, StateDone},
			{StateConfirm, StateModel},
			{StateConfirm, StateExecute},
			{StateConfirm, StateDone},
		}
		for _, tc := range allowed {
			assert.True(t, m.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
		}
	})

	t.Run("rejects undeclared transitions", func(t *testing.T) {
		denied := []struct {
			from, to State
		}{
			{StateEntry, StateExecute},
			{StateEntry, StateDone},
			{StateModel, StateExecute},
			{StateModel, StateConfirm},
			{StateExecute, StateModel},
			{StateConsequenceCheck, StateConfirm},
			{StateDone, StateEntry},
			{StateDone, StateModel},
		}
		for _, tc := range denied {
			assert.False(t, m.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
		}
	})

	t.Run("transition returns the new state", func(t *testing.T) {
		next, err := m.Transition(StateEntry, StateModel)
		require.NoError(t, err)
		assert.Equal(t, StateModel, next)
	})

	t.Run("invalid transition keeps current state", func(t *testing.T) {
		next, err := m.Transition(StateExecute, StateModel)
		require.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StateExecute, next)
	})

	t.Run("done is terminal", func(t *testing.T) {
		for _, to := range []State{StateEntry, StateModel, StateConsequenceCheck, StateExecute, StateConfirm} {
			assert.False(t, m.CanTransition(StateDone, to))
		}
	})
}
