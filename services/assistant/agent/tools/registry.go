// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package tools implements the assistant's action catalog: a
// thread-safe registry of named fleet actions and the executor that
// dispatches proposed invocations against it.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/moviops/movi/services/llm"
)

var (
	// ErrActionNotFound is returned when looking up an unregistered
	// action name.
	ErrActionNotFound = errors.New("tools: action not found")

	// ErrDuplicateAction is returned when registering a name twice.
	ErrDuplicateAction = errors.New("tools: action already registered")

	// ErrInvalidAction is returned when registering an action with a
	// missing name or handler.
	ErrInvalidAction = errors.New("tools: invalid action")
)

// Handler executes one action against the fleet data service. The
// returned string is the operator-facing result text. A non-nil error
// means the action could not run (bad arguments or store failure); the
// executor converts it to result text rather than propagating it.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Action is one registered catalog entry.
type Action struct {
	// Name is the wire name the model calls, e.g. "get_trip_status".
	Name string

	// Description tells the model when to use the action.
	Description string

	// Parameters is the JSON-schema object declared to the model.
	Parameters map[string]any

	// Mutating marks actions with persistent side effects. Read-only
	// actions are never consequence-checked.
	Mutating bool

	// Handler runs the action.
	Handler Handler
}

// Registry is a thread-safe collection of actions.
//
// Thread Safety: all methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Action)}
}

// Register adds an action to the registry.
//
// Outputs:
//
//	error - ErrInvalidAction if the action has no name or handler,
//	ErrDuplicateAction if the name is already taken.
func (r *Registry) Register(a *Action) error {
	if a == nil || a.Name == "" || a.Handler == nil {
		return ErrInvalidAction
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[a.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAction, a.Name)
	}
	r.byName[a.Name] = a
	return nil
}

// Get returns the action registered under name.
func (r *Registry) Get(name string) (*Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActionNotFound, name)
	}
	return a, nil
}

// Names returns all registered action names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered actions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Definitions returns the tool declarations for the reasoning service,
// sorted by name for a stable prompt.
func (r *Registry) Definitions() []llm.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]llm.ToolDefinition, 0, len(r.byName))
	for _, a := range r.byName {
		defs = append(defs, llm.ToolDefinition{
			Name:        a.Name,
			Description: a.Description,
			Parameters:  a.Parameters,
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}
