// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorExecute(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Action{
		Name:        "echo",
		Description: "echoes the input",
		Parameters:  objectSchema(map[string]any{"text": stringProp("text to echo")}, "text"),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			text, err := stringArg(args, "text", true)
			if err != nil {
				return "", err
			}
			return "echo: " + text, nil
		},
	}))
	require.NoError(t, r.Register(&Action{
		Name:        "boom",
		Description: "always fails",
		Parameters:  objectSchema(map[string]any{}),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return "", errors.New("store unavailable")
		},
	}))
	exec := NewExecutor(r, nil)

	t.Run("successful dispatch", func(t *testing.T) {
		res := exec.Execute(context.Background(), "echo", map[string]any{"text": "hi"})
		assert.False(t, res.Failed)
		assert.Equal(t, "echo: hi", res.Output)
		assert.NotEmpty(t, res.ExecutionID)
	})

	t.Run("unknown action becomes result text", func(t *testing.T) {
		res := exec.Execute(context.Background(), "ghost", nil)
		assert.True(t, res.Failed)
		assert.Equal(t, "Tool 'ghost' not found.", res.Output)
	})

	t.Run("handler error becomes result text", func(t *testing.T) {
		res := exec.Execute(context.Background(), "boom", map[string]any{})
		assert.True(t, res.Failed)
		assert.Equal(t, "Error executing tool 'boom': store unavailable", res.Output)
	})

	t.Run("bad arguments become result text", func(t *testing.T) {
		res := exec.Execute(context.Background(), "echo", map[string]any{"text": 42})
		assert.True(t, res.Failed)
		assert.Contains(t, res.Output, "Error executing tool 'echo':")
		assert.Contains(t, res.Output, `"text" must be a string`)
	})
}
