// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command movi starts the Movi transport assistant HTTP server.
//
// # Environment Variables
//
//   - MOVI_PORT: HTTP server port (default: 8000)
//   - MOVI_DATA_DIR: BadgerDB directory (default: ./data/movi)
//   - MOVI_SESSION_TIMEOUT: session idle expiry, e.g. "30m" (default: 1h)
//   - MOVI_SEED: seed the demo fleet dataset on startup ("true"/"false")
//   - MOVI_LOG_DIR: structured log directory (default: ./logs)
//   - OPENAI_API_KEY: reasoning service key (required for live chat)
//   - MOVI_OPENAI_MODEL: reasoning model (default: gpt-4o-mini)
//   - DEEPGRAM_API_KEY: speech-to-text key (optional)
//   - ELEVENLABS_API_KEY: text-to-speech key (optional)
//
// # Usage
//
//	go build -o movi ./cmd/movi
//	./movi serve --seed
package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/moviops/movi/pkg/logging"
	"github.com/moviops/movi/services/assistant"
)

var (
	flagPort    int
	flagDataDir string
	flagSeed    bool
	flagJSONLog bool
)

var rootCmd = &cobra.Command{
	Use:   "movi",
	Short: "Movi transport operations assistant",
	Long:  "Movi is a conversational assistant for transport fleet operations: trips, routes, vehicles, drivers, and deployments.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the assistant HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New(logging.Config{
			Service: "movi",
			LogDir:  getEnvString("MOVI_LOG_DIR", "./logs"),
			JSON:    flagJSONLog,
		})
		defer func() { _ = logger.Close() }()

		cfg := assistant.Config{
			Port:           flagPort,
			DataDir:        flagDataDir,
			Seed:           flagSeed || getEnvBool("MOVI_SEED", false),
			SessionTimeout: getEnvDuration("MOVI_SESSION_TIMEOUT", time.Hour),
			Logger:         logger.Slog(),
		}

		svc, err := assistant.New(cfg)
		if err != nil {
			return err
		}
		return svc.Run()
	},
}

func init() {
	serveCmd.Flags().IntVar(&flagPort, "port", getEnvInt("MOVI_PORT", 8000), "HTTP server port")
	serveCmd.Flags().StringVar(&flagDataDir, "data-dir", getEnvString("MOVI_DATA_DIR", "./data/movi"), "BadgerDB data directory")
	serveCmd.Flags().BoolVar(&flagSeed, "seed", false, "seed the demo fleet dataset on startup")
	serveCmd.Flags().BoolVar(&flagJSONLog, "json-log", true, "emit JSON structured logs")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool returns the environment variable as bool or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as duration or a
// default. Accepts Go duration strings ("30m") or plain seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
