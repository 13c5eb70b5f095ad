// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package llm abstracts the reasoning service behind a small Client
// interface so the agent can be tested against a scripted mock.
package llm

import "context"

// Role identifies who produced a transcript message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a single action invocation proposed by the model.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolDefinition declares a callable action to the model. Parameters is
// a JSON-schema object describing the arguments.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Message is one entry of a conversation transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls is set on assistant messages that proposed invocations.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool-result message to the proposing call.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// Reply is the model's answer for one chat call: either plain text, or
// one or more proposed tool calls (Content may still carry preamble
// text alongside calls).
type Reply struct {
	Content   string
	ToolCalls []ToolCall
}

// Client is the reasoning-service boundary. Failures are returned as
// errors and must be recoverable by the caller; a Client never panics.
type Client interface {
	// Chat runs one completion over the system prompt and transcript,
	// with the given actions declared as callable tools.
	Chat(ctx context.Context, system string, transcript []Message, tools []ToolDefinition) (*Reply, error)

	// DescribeImage extracts the operationally relevant content of an
	// attached image, guided by the user's message and page context.
	DescribeImage(ctx context.Context, imageData []byte, mimeType, userMessage, page string) (string, error)
}
