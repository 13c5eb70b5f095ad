// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the HTTP endpoints of the assistant.
package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moviops/movi/services/assistant/agent"
	"github.com/moviops/movi/services/assistant/datatypes"
)

// maxImageBytes caps inline image uploads at 10 MiB.
const maxImageBytes = 10 << 20

// HandleChat processes one conversational turn. The request is
// multipart form data: a required message, an optional currentPage, and
// an optional image file for the vision flow.
func HandleChat(orch *agent.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ChatRequest
		if err := c.ShouldBind(&req); err != nil {
			slog.Error("failed to parse chat request", "error", err)
			c.JSON(http.StatusBadRequest, datatypes.ChatResponse{
				Response: "I couldn't read that request.",
				Success:  false,
				Error:    "invalid request: message is required",
			})
			return
		}
		page := req.CurrentPage
		if page == "" {
			page = "unknown"
		}

		var image *datatypes.ImageAttachment
		if fh, err := c.FormFile("image"); err == nil && fh != nil {
			if fh.Size > maxImageBytes {
				c.JSON(http.StatusBadRequest, datatypes.ChatResponse{
					Response: "That image is too large for me to look at.",
					Success:  false,
					Error:    "image exceeds size limit",
				})
				return
			}
			f, err := fh.Open()
			if err != nil {
				slog.Error("failed to open uploaded image", "error", err)
				c.JSON(http.StatusBadRequest, datatypes.ChatResponse{
					Response: "I couldn't read the attached image.",
					Success:  false,
					Error:    "unreadable image upload",
				})
				return
			}
			data, err := io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				slog.Error("failed to read uploaded image", "error", err)
				c.JSON(http.StatusBadRequest, datatypes.ChatResponse{
					Response: "I couldn't read the attached image.",
					Success:  false,
					Error:    "unreadable image upload",
				})
				return
			}
			image = &datatypes.ImageAttachment{
				Data:     data,
				MIMEType: fh.Header.Get("Content-Type"),
			}
			slog.Info("chat image received", "filename", fh.Filename, "bytes", len(data))
		}

		resp := orch.RunTurn(c.Request.Context(), page, req.Message, image)

		status := http.StatusOK
		if !resp.Success && resp.Error == agent.ErrSessionBusy.Error() {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, resp)
	}
}
