// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestLevelToSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := tt.level.toSlogLevel(); got != tt.want {
			t.Errorf("Level(%d).toSlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("Default() returned nil")
	}
	if logger.Logger == nil {
		t.Error("Default() logger has nil slog.Logger")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() on file-less logger = %v, want nil", err)
	}
}

func TestFileLogging(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Service: "assistant",
		LogDir:  dir,
		Quiet:   true,
	})
	logger.Info("turn started", "session_key", "session_dashboard")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s) = %v", dir, err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 log file, got %d", len(files))
	}
	name := files[0].Name()
	if !strings.HasPrefix(name, "assistant_") || !strings.HasSuffix(name, ".log") {
		t.Errorf("log file name = %v, want assistant_{date}.log", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("ReadFile = %v", err)
	}
	var entry map[string]any
	line := strings.TrimSpace(string(data))
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log entry is not JSON: %v\n%s", err, line)
	}
	if entry["msg"] != "turn started" {
		t.Errorf("msg = %v, want %q", entry["msg"], "turn started")
	}
	if entry["service"] != "assistant" {
		t.Errorf("service = %v, want %q", entry["service"], "assistant")
	}
	if entry["session_key"] != "session_dashboard" {
		t.Errorf("session_key = %v, want %q", entry["session_key"], "session_dashboard")
	}
}

func TestFileIsJSONWithTextStderr(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Service: "movi",
		LogDir:  dir,
		JSON:    false, // text on stderr, file must stay JSON
	})
	logger.Info("sweep finished", "removed", 2)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	files, err := os.ReadDir(dir)
	if err != nil || len(files) != 1 {
		t.Fatalf("ReadDir = %v, files = %d", err, len(files))
	}
	data, err := os.ReadFile(filepath.Join(dir, files[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile = %v", err)
	}
	var entry map[string]any
	line := strings.TrimSpace(string(data))
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("file log entry is not JSON: %v\n%s", err, line)
	}
	if entry["msg"] != "sweep finished" {
		t.Errorf("msg = %v, want %q", entry["msg"], "sweep finished")
	}
}

func TestFileLoggingDefaultService(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Quiet: true})
	logger.Info("started")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s) = %v", dir, err)
	}
	found := false
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "movi_") {
			found = true
		}
	}
	if !found {
		t.Error("expected log file with 'movi_' prefix")
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Service: "movi",
		LogDir:  dir,
		Level:   LevelWarn,
		Quiet:   true,
	})
	logger.Debug("dropped debug")
	logger.Info("dropped info")
	logger.Warn("kept warn")
	logger.Error("kept error")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	files, err := os.ReadDir(dir)
	if err != nil || len(files) != 1 {
		t.Fatalf("ReadDir = %v, files = %d", err, len(files))
	}
	data, err := os.ReadFile(filepath.Join(dir, files[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile = %v", err)
	}
	content := string(data)
	if strings.Contains(content, "dropped") {
		t.Errorf("below-threshold messages were written:\n%s", content)
	}
	if !strings.Contains(content, "kept warn") || !strings.Contains(content, "kept error") {
		t.Errorf("threshold messages missing:\n%s", content)
	}
}

func TestBadLogDirDegradesToStderr(t *testing.T) {
	// A directory path that cannot be created must not panic or return
	// nil; logging continues on stderr only.
	logger := New(Config{LogDir: string([]byte{0}), Quiet: true})
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	logger.Info("still alive")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	logger := New(Config{LogDir: t.TempDir(), Quiet: true})
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close() = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{"/var/log/movi", "/var/log/movi"},
		{"~", home},
		{"~/.movi/logs", filepath.Join(home, ".movi/logs")},
	}
	for _, tt := range tests {
		got, err := expandHome(tt.path)
		if err != nil {
			t.Errorf("expandHome(%q) error = %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("expandHome(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
