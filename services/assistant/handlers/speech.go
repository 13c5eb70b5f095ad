// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moviops/movi/services/assistant/datatypes"
	"github.com/moviops/movi/services/speech"
)

// HandleSpeechToText transcribes an uploaded audio file. The request is
// multipart form data with an "audio" file field.
func HandleSpeechToText(stt speech.Transcriber) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("audio")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			slog.Error("failed to open uploaded audio", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable audio upload"})
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			slog.Error("failed to read uploaded audio", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable audio upload"})
			return
		}

		transcript, err := stt.Transcribe(c.Request.Context(), data, fh.Header.Get("Content-Type"))
		if err != nil {
			if errors.Is(err, speech.ErrNotConfigured) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Deepgram API key not configured"})
				return
			}
			slog.Error("transcription failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error transcribing audio"})
			return
		}

		c.JSON(http.StatusOK, datatypes.STTResponse{Text: transcript, Success: true})
	}
}

// HandleTextToSpeech synthesizes the given text and streams back MP3
// audio.
func HandleTextToSpeech(tts speech.Synthesizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.TTSRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
			return
		}

		audio, err := tts.Synthesize(c.Request.Context(), req.Text)
		if err != nil {
			if errors.Is(err, speech.ErrNotConfigured) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "ElevenLabs API key not configured"})
				return
			}
			slog.Error("synthesis failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error generating speech"})
			return
		}

		c.Data(http.StatusOK, "audio/mpeg", audio)
	}
}
