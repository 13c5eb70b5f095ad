// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package speech wraps the hosted speech providers: Deepgram for
// transcription and ElevenLabs for synthesis. Both clients are thin
// HTTP adapters; audio bytes in, text or audio bytes out.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"
)

// ErrNotConfigured is returned when a provider API key is missing.
var ErrNotConfigured = errors.New("speech: provider API key not configured")

const (
	deepgramBaseURL = "https://api.deepgram.com"
	deepgramModel   = "nova-2"
)

// Transcriber converts spoken audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}

// DeepgramClient transcribes audio via the Deepgram listen API.
//
// # Thread Safety
//
// Safe for concurrent use; all state is read-only after construction.
type DeepgramClient struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

// DeepgramOption configures a DeepgramClient.
type DeepgramOption func(*DeepgramClient)

// WithDeepgramBaseURL overrides the API endpoint. Tests point this at
// an httptest server.
func WithDeepgramBaseURL(u string) DeepgramOption {
	return func(c *DeepgramClient) { c.baseURL = u }
}

// WithDeepgramHTTPClient overrides the HTTP client.
func WithDeepgramHTTPClient(httpc *http.Client) DeepgramOption {
	return func(c *DeepgramClient) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

// NewDeepgramClient creates a transcription client. The API key comes
// from DEEPGRAM_API_KEY.
func NewDeepgramClient(logger *slog.Logger, opts ...DeepgramOption) *DeepgramClient {
	if logger == nil {
		logger = slog.Default()
	}
	c := &DeepgramClient{
		apiKey:  os.Getenv("DEEPGRAM_API_KEY"),
		baseURL: deepgramBaseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With("component", "stt"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *DeepgramClient) Configured() bool {
	return c.apiKey != ""
}

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe sends raw audio to Deepgram and returns the transcript.
// An empty contentType defaults to audio/webm, the browser recorder
// format.
func (c *DeepgramClient) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if contentType == "" {
		contentType = "audio/webm"
	}

	params := url.Values{
		"model":        {deepgramModel},
		"smart_format": {"true"},
		"language":     {"en-US"},
		"punctuate":    {"true"},
		"numerals":     {"true"},
	}
	endpoint := c.baseURL + "/v1/listen?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("transcription failed: status %d: %s", resp.StatusCode, body)
	}

	var parsed deepgramResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}
	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", fmt.Errorf("transcription response missing alternatives")
	}

	transcript := parsed.Results.Channels[0].Alternatives[0].Transcript
	c.logger.Info("audio transcribed", "bytes", len(audio), "chars", len(transcript))
	return transcript, nil
}
