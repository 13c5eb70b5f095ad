// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import "fmt"

// State is a position in the per-turn processing cycle.
type State string

const (
	// StateEntry routes an inbound message: to confirmation handling
	// when a confirmation is pending, otherwise to the model.
	StateEntry State = "entry"

	// StateModel invokes the reasoning service over the transcript.
	StateModel State = "model"

	// StateConsequenceCheck evaluates the first proposed invocation for
	// operational risk before anything executes.
	StateConsequenceCheck State = "consequence_check"

	// StateExecute dispatches the proposed invocations.
	StateExecute State = "execute"

	// StateConfirm classifies the operator's yes/no reply for a paused
	// action.
	StateConfirm State = "confirm"

	// StateDone ends the turn.
	StateDone State = "done"
)

// StateMachine holds the declared transition table for a turn. Every
// move the orchestrator makes goes through Transition, so an
// out-of-table move is caught as a bug instead of silently corrupting
// a session.
//
// # Transition Table
//
//	entry             -> model | confirm
//	model             -> consequence_check | done
//	consequence_check -> execute | done
//	execute           -> done
//	confirm           -> model | execute | done
//	done              (terminal)
//
// Thread Safety: the table is immutable after construction; safe for
// concurrent use.
type StateMachine struct {
	transitions map[State]map[State]bool
}

// NewTurnStateMachine builds the turn state machine with its full
// transition table.
func NewTurnStateMachine() *StateMachine {
	m := &StateMachine{transitions: make(map[State]map[State]bool)}

	m.addTransition(StateEntry, StateModel)
	m.addTransition(StateEntry, StateConfirm)

	m.addTransition(StateModel, StateConsequenceCheck)
	m.addTransition(StateModel, StateDone)

	m.addTransition(StateConsequenceCheck, StateExecute)
	m.addTransition(StateConsequenceCheck, StateDone)

	m.addTransition(StateExecute, StateDone)

	// confirm -> model covers the defensive case of entering the gate
	// with no stored invocation; confirm -> execute is the accept path
	// expressed as a distinct state so execution is observable.
	m.addTransition(StateConfirm, StateModel)
	m.addTransition(StateConfirm, StateExecute)
	m.addTransition(StateConfirm, StateDone)

	return m
}

func (m *StateMachine) addTransition(from, to State) {
	if m.transitions[from] == nil {
		m.transitions[from] = make(map[State]bool)
	}
	m.transitions[from][to] = true
}

// CanTransition reports whether the table allows from -> to.
func (m *StateMachine) CanTransition(from, to State) bool {
	return m.transitions[from][to]
}

// Transition validates from -> to and returns the new state.
func (m *StateMachine) Transition(from, to State) (State, error) {
	if !m.CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}
