// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io"
	elevenLabsModel   = "eleven_turbo_v2"

	// Rachel
	defaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
)

// Synthesizer converts text into spoken audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// ElevenLabsClient synthesizes speech via the ElevenLabs API. Output is
// MP3 (audio/mpeg).
//
// # Thread Safety
//
// Safe for concurrent use; all state is read-only after construction.
type ElevenLabsClient struct {
	apiKey  string
	voiceID string
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

// ElevenLabsOption configures an ElevenLabsClient.
type ElevenLabsOption func(*ElevenLabsClient)

// WithElevenLabsBaseURL overrides the API endpoint. Tests point this at
// an httptest server.
func WithElevenLabsBaseURL(u string) ElevenLabsOption {
	return func(c *ElevenLabsClient) { c.baseURL = u }
}

// WithVoice overrides the default voice.
func WithVoice(voiceID string) ElevenLabsOption {
	return func(c *ElevenLabsClient) {
		if voiceID != "" {
			c.voiceID = voiceID
		}
	}
}

// WithElevenLabsHTTPClient overrides the HTTP client.
func WithElevenLabsHTTPClient(httpc *http.Client) ElevenLabsOption {
	return func(c *ElevenLabsClient) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

// NewElevenLabsClient creates a synthesis client. The API key comes
// from ELEVENLABS_API_KEY; ELEVENLABS_VOICE_ID overrides the default
// voice.
func NewElevenLabsClient(logger *slog.Logger, opts ...ElevenLabsOption) *ElevenLabsClient {
	if logger == nil {
		logger = slog.Default()
	}
	voice := os.Getenv("ELEVENLABS_VOICE_ID")
	if voice == "" {
		voice = defaultVoiceID
	}
	c := &ElevenLabsClient{
		apiKey:  os.Getenv("ELEVENLABS_API_KEY"),
		voiceID: voice,
		baseURL: elevenLabsBaseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With("component", "tts"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *ElevenLabsClient) Configured() bool {
	return c.apiKey != ""
}

type elevenLabsRequest struct {
	Text          string             `json:"text"`
	ModelID       string             `json:"model_id"`
	VoiceSettings elevenLabsSettings `json:"voice_settings"`
}

type elevenLabsSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// Synthesize renders text as MP3 audio.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload := elevenLabsRequest{
		Text:    text,
		ModelID: elevenLabsModel,
		VoiceSettings: elevenLabsSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode synthesis request: %w", err)
	}

	endpoint := c.baseURL + "/v1/text-to-speech/" + c.voiceID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("synthesis failed: status %d: %s", resp.StatusCode, msg)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesis response: %w", err)
	}

	c.logger.Info("speech synthesized", "chars", len(text), "bytes", len(audio))
	return audio, nil
}
