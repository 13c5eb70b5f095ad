// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviops/movi/services/assistant/agent"
	"github.com/moviops/movi/services/assistant/agent/tools"
	"github.com/moviops/movi/services/assistant/datatypes"
	"github.com/moviops/movi/services/fleet"
	"github.com/moviops/movi/services/llm"
)

func newChatRouter(t *testing.T, client llm.Client) (*gin.Engine, *agent.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := fleet.OpenInMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, fleet.Seed(store, nil))

	svc := fleet.NewService(store, nil)
	registry, err := tools.BuildRegistry(svc)
	require.NoError(t, err)

	orch := agent.NewOrchestrator(
		client,
		registry,
		tools.NewExecutor(registry, nil),
		agent.NewConsequenceEvaluator(svc, nil),
		agent.NewInMemorySessionStore(time.Hour),
	)

	router := gin.New()
	router.POST("/api/chat", HandleChat(orch))
	return router, orch
}

func chatForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHandleChat(t *testing.T) {
	mock := &llm.MockClient{Replies: []*llm.Reply{{Content: "Hello from Movi."}}}
	router, _ := newChatRouter(t, mock)

	body, contentType := chatForm(t, map[string]string{
		"message":     "hi",
		"currentPage": "busDashboard",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp datatypes.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Hello from Movi.", resp.Response)
}

func TestHandleChatMissingMessage(t *testing.T) {
	router, _ := newChatRouter(t, &llm.MockClient{})

	body, contentType := chatForm(t, map[string]string{"currentPage": "busDashboard"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp datatypes.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestHandleChatDefaultsPage(t *testing.T) {
	mock := &llm.MockClient{Replies: []*llm.Reply{{Content: "hi"}}}
	router, orch := newChatRouter(t, mock)

	body, contentType := chatForm(t, map[string]string{"message": "hello"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, orch.Sessions().Get("session_unknown"))
}

func TestHandleChatBusySession(t *testing.T) {
	router, orch := newChatRouter(t, &llm.MockClient{})

	sess := orch.Sessions().GetOrCreate("session_busDashboard", "busDashboard", time.Now())
	require.True(t, sess.TryAcquire())
	defer sess.Release()

	body, contentType := chatForm(t, map[string]string{
		"message":     "hello",
		"currentPage": "busDashboard",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var resp datatypes.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, agent.BusyMessage, resp.Response)
}

func TestHandleChatWithImage(t *testing.T) {
	mock := &llm.MockClient{
		Replies:          []*llm.Reply{{Content: "That shows the dashboard."}},
		ImageDescription: "A fleet dashboard with eight trips.",
	}
	router, orch := newChatRouter(t, mock)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("message", "what is this?"))
	require.NoError(t, w.WriteField("currentPage", "busDashboard"))
	fw, err := w.CreateFormFile("image", "screen.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte{0x89, 0x50, 0x4E, 0x47})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp datatypes.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	// The image was folded into the transcript as an analysis message.
	sess := orch.Sessions().Get("session_busDashboard")
	require.NotNil(t, sess)
	require.GreaterOrEqual(t, len(sess.Messages), 2)
	assert.Contains(t, sess.Messages[1].Content, "📷 Image Analysis:")
}
