// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the wire and session types shared by the
// assistant's handlers and agent core.
package datatypes

// ChatRequest is the multipart form payload of POST /api/chat. The
// optional image file is read separately from the multipart form.
type ChatRequest struct {
	Message     string `form:"message" binding:"required"`
	CurrentPage string `form:"currentPage"`
}

// ChatResponse is the envelope every chat turn returns. Internal
// failures never leak raw error text; Response always carries a
// user-presentable reply and Success flags whether the turn completed
// normally.
type ChatResponse struct {
	Response string `json:"response"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// TTSRequest is the JSON payload of POST /api/text-to-speech.
type TTSRequest struct {
	Text string `json:"text" binding:"required"`
}

// STTResponse is the JSON reply of POST /api/speech-to-text.
type STTResponse struct {
	Text    string `json:"transcript"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
