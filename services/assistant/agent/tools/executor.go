// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Executor dispatches proposed invocations against a Registry.
//
// Execute never returns an error: an unknown action or a failed handler
// becomes operator-facing result text, so a bad proposal from the model
// degrades the reply instead of crashing the turn. The executor is the
// only component that reaches the fleet data service with side effects.
//
// Thread Safety: safe for concurrent use.
type Executor struct {
	registry *Registry
	logger   *slog.Logger
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		registry: registry,
		logger:   logger.With("component", "executor"),
	}
}

// Result is the outcome of one dispatched invocation.
type Result struct {
	// ExecutionID correlates log lines for this dispatch.
	ExecutionID string

	// ActionName is the invoked action.
	ActionName string

	// Output is the operator-facing result text.
	Output string

	// Failed is true when the output is an error message rather than a
	// real action result.
	Failed bool

	// Duration is how long the dispatch took.
	Duration time.Duration
}

// Execute dispatches one invocation.
//
// Inputs:
//
//	ctx - Cancellation context, passed through to the handler.
//	name - Action name as proposed by the model.
//	args - Decoded invocation arguments.
//
// Outputs:
//
//	Result - Always valid; inspect Failed to distinguish action results
//	from error text.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) Result {
	res := Result{
		ExecutionID: uuid.NewString(),
		ActionName:  name,
	}
	logger := e.logger.With("execution_id", res.ExecutionID, "action", name)

	action, err := e.registry.Get(name)
	if err != nil {
		logger.Warn("unknown action proposed")
		res.Output = fmt.Sprintf("Tool '%s' not found.", name)
		res.Failed = true
		return res
	}

	start := time.Now()
	output, err := action.Handler(ctx, args)
	res.Duration = time.Since(start)

	if err != nil {
		logger.Error("action failed", "error", err, "duration", res.Duration)
		res.Output = fmt.Sprintf("Error executing tool '%s': %v", name, err)
		res.Failed = true
		return res
	}

	logger.Info("action executed", "mutating", action.Mutating, "duration", res.Duration)
	res.Output = output
	return res
}
