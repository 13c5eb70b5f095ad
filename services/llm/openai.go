// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client on the OpenAI chat completions API,
// using function calling for action proposals and multimodal content
// for image attachments.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIClient builds a client from the environment.
//
// The API key is read from OPENAI_API_KEY, falling back to the
// /run/secrets/openai_api_key file for containerized deployments. The
// model comes from MOVI_OPENAI_MODEL, defaulting to gpt-4o-mini.
func NewOpenAIClient(logger *slog.Logger) (*OpenAIClient, error) {
	if logger == nil {
		logger = slog.Default()
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		secretPath := "/run/secrets/openai_api_key"
		apiKeyBytes, err := os.ReadFile(secretPath)
		if err == nil {
			apiKey = strings.TrimSpace(string(apiKeyBytes))
			logger.Info("read OpenAI API key from secrets file", "path", secretPath)
		} else {
			logger.Error("OPENAI_API_KEY not set and secret not found", "path", secretPath)
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	model := os.Getenv("MOVI_OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
		logger.Warn("MOVI_OPENAI_MODEL not set, defaulting to gpt-4o-mini")
	}

	logger.Info("initializing OpenAI client", "model", model)
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}, nil
}

// Chat implements Client.
func (o *OpenAIClient) Chat(ctx context.Context, system string, transcript []Message, tools []ToolDefinition) (*Reply, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(transcript)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, m := range transcript {
		converted, err := toOpenAIMessage(m)
		if err != nil {
			return nil, err
		}
		messages = append(messages, converted)
	}

	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
		Tools:    toOpenAITools(tools),
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		o.logger.Error("OpenAI chat completion failed", "error", err)
		return nil, fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm: chat completion returned no choices")
	}

	choice := resp.Choices[0].Message
	reply := &Reply{Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		call, err := fromOpenAIToolCall(tc)
		if err != nil {
			o.logger.Warn("dropping malformed tool call", "tool", tc.Function.Name, "error", err)
			continue
		}
		reply.ToolCalls = append(reply.ToolCalls, call)
	}

	o.logger.Debug("chat completion finished",
		"finish_reason", resp.Choices[0].FinishReason,
		"tool_calls", len(reply.ToolCalls))
	return reply, nil
}

// DescribeImage implements Client using the same chat model's vision
// input.
func (o *OpenAIClient) DescribeImage(ctx context.Context, imageData []byte, mimeType, userMessage, page string) (string, error) {
	if mimeType == "" {
		mimeType = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageData))

	prompt := fmt.Sprintf(
		"The user is on the %s page of a transport operations dashboard and said: %q. "+
			"Describe what this screenshot or photo shows that is relevant to their request. "+
			"Call out trip names, route names, vehicle plates, and statuses exactly as written.",
		page, userMessage)

	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto},
					},
				},
			},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		o.logger.Error("vision call failed", "error", err)
		return "", fmt.Errorf("llm: describe image: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: describe image returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessage(m Message) (openai.ChatCompletionMessage, error) {
	out := openai.ChatCompletionMessage{Content: m.Content}
	switch m.Role {
	case RoleSystem:
		out.Role = openai.ChatMessageRoleSystem
	case RoleUser:
		out.Role = openai.ChatMessageRoleUser
	case RoleAssistant:
		out.Role = openai.ChatMessageRoleAssistant
		for _, call := range m.ToolCalls {
			args, err := json.Marshal(call.Arguments)
			if err != nil {
				return out, fmt.Errorf("llm: marshal tool call arguments: %w", err)
			}
			out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
				ID:   call.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.Name,
					Arguments: string(args),
				},
			})
		}
	case RoleTool:
		out.Role = openai.ChatMessageRoleTool
		out.ToolCallID = m.ToolCallID
	default:
		return out, fmt.Errorf("llm: unknown message role %q", m.Role)
	}
	return out, nil
}

func toOpenAITools(tools []ToolDefinition) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func fromOpenAIToolCall(tc openai.ToolCall) (ToolCall, error) {
	call := ToolCall{ID: tc.ID, Name: tc.Function.Name}
	if tc.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &call.Arguments); err != nil {
			return call, fmt.Errorf("llm: decode tool call arguments: %w", err)
		}
	}
	if call.Arguments == nil {
		call.Arguments = map[string]any{}
	}
	return call, nil
}
