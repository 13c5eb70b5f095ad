// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviops/movi/services/assistant/agent"
	"github.com/moviops/movi/services/assistant/agent/tools"
	"github.com/moviops/movi/services/fleet"
	"github.com/moviops/movi/services/llm"
)

type fixedTranscriber struct{}

func (fixedTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return "show me all trips", nil
}

type fixedSynthesizer struct{}

func (fixedSynthesizer) Synthesize(context.Context, string) ([]byte, error) {
	return []byte("mp3"), nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := fleet.OpenInMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, fleet.Seed(store, nil))

	svc := fleet.NewService(store, nil)
	registry, err := tools.BuildRegistry(svc)
	require.NoError(t, err)

	client := &llm.MockClient{Replies: []*llm.Reply{{Content: "Hello!"}}}
	orch := agent.NewOrchestrator(
		client,
		registry,
		tools.NewExecutor(registry, nil),
		agent.NewConsequenceEvaluator(svc, nil),
		agent.NewInMemorySessionStore(time.Hour),
	)

	router := gin.New()
	SetupRoutes(router, orch, store, fixedTranscriber{}, fixedSynthesizer{})
	return router
}

func TestSetupRoutes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"root health", http.MethodGet, "/", "", http.StatusOK},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"chat", http.MethodPost, "/api/chat", "message=hi&currentPage=dashboard", http.StatusOK},
		{"text to speech", http.MethodPost, "/api/text-to-speech", `{"text":"hello"}`, http.StatusOK},
		{"stops", http.MethodGet, "/api/stops", "", http.StatusOK},
		{"paths", http.MethodGet, "/api/paths", "", http.StatusOK},
		{"routes", http.MethodGet, "/api/routes", "", http.StatusOK},
		{"vehicles", http.MethodGet, "/api/vehicles", "", http.StatusOK},
		{"drivers", http.MethodGet, "/api/drivers", "", http.StatusOK},
		{"trips", http.MethodGet, "/api/trips", "", http.StatusOK},
		{"deployments", http.MethodGet, "/api/deployments", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			switch {
			case tt.body == "":
				req = httptest.NewRequest(tt.method, tt.path, nil)
			case strings.HasPrefix(tt.body, "{"):
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
			default:
				form, err := url.ParseQuery(tt.body)
				require.NoError(t, err)
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(form.Encode()))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code, "body: %s", w.Body.String())
		})
	}
}
