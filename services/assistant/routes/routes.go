// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moviops/movi/services/assistant/agent"
	"github.com/moviops/movi/services/assistant/handlers"
	"github.com/moviops/movi/services/fleet"
	"github.com/moviops/movi/services/speech"
)

// SetupRoutes registers every endpoint on the router.
func SetupRoutes(router *gin.Engine, orch *agent.Orchestrator, store *fleet.Store,
	stt speech.Transcriber, tts speech.Synthesizer) {

	router.GET("/", handlers.HealthCheck)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/chat", handlers.HandleChat(orch))

		api.POST("/speech-to-text", handlers.HandleSpeechToText(stt))
		api.POST("/text-to-speech", handlers.HandleTextToSpeech(tts))

		// Dashboard data endpoints
		api.GET("/stops", handlers.ListStops(store))
		api.GET("/paths", handlers.ListPaths(store))
		api.GET("/routes", handlers.ListRoutes(store))
		api.GET("/vehicles", handlers.ListVehicles(store))
		api.GET("/drivers", handlers.ListDrivers(store))
		api.GET("/trips", handlers.ListTrips(store))
		api.GET("/deployments", handlers.ListDeployments(store))
	}
}
