// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"errors"
	"sync"
)

// MockClient is a scripted Client for tests. Replies are consumed in
// order; when the script is exhausted, Chat returns Err (or a default
// error if Err is nil).
type MockClient struct {
	mu sync.Mutex

	// Replies are returned one per Chat call, in order.
	Replies []*Reply

	// Err, when set, is returned by every Chat call once Replies are
	// exhausted, or immediately if FailAlways is true.
	Err error

	// FailAlways makes every Chat call fail with Err.
	FailAlways bool

	// ImageDescription is returned by DescribeImage.
	ImageDescription string

	// Calls records the transcripts passed to Chat.
	Calls [][]Message
}

// Chat implements Client.
func (m *MockClient) Chat(_ context.Context, _ string, transcript []Message, _ []ToolDefinition) (*Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]Message, len(transcript))
	copy(copied, transcript)
	m.Calls = append(m.Calls, copied)

	if m.FailAlways {
		if m.Err != nil {
			return nil, m.Err
		}
		return nil, errors.New("mock llm failure")
	}
	if len(m.Replies) == 0 {
		if m.Err != nil {
			return nil, m.Err
		}
		return nil, errors.New("mock llm: script exhausted")
	}
	reply := m.Replies[0]
	m.Replies = m.Replies[1:]
	return reply, nil
}

// DescribeImage implements Client.
func (m *MockClient) DescribeImage(context.Context, []byte, string, string, string) (string, error) {
	if m.FailAlways {
		if m.Err != nil {
			return "", m.Err
		}
		return "", errors.New("mock llm failure")
	}
	return m.ImageDescription, nil
}
