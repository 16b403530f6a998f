// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

package livesync

import "encoding/json"

// Frame type discriminators used by the orchestrator's stream.
const (
	frameProgress      = "progress"
	frameAgentStatus   = "agent_status"
	frameLog           = "log"
	frameFeatureUpdate = "feature_update"
	framePong          = "pong"
)

// streamFrame is the decoding target for inbound stream frames. One
// struct covers every frame kind; Type discriminates and the unused
// fields stay zero.
type streamFrame struct {
	Type string `json:"type"`

	// progress
	Passing    int     `json:"passing"`
	InProgress int     `json:"in_progress"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`

	// agent_status
	Status string `json:"status"`

	// log
	Line      string `json:"line"`
	Timestamp string `json:"timestamp"`
}

// pingFrame is the outbound heartbeat. The server answers with a pong
// frame, which the synchronizer ignores.
type pingFrame struct {
	Type string `json:"type"`
}

// parseFrame decodes a raw frame. A decode error means the frame is
// dropped; the connection itself stays up.
func parseFrame(data []byte) (streamFrame, error) {
	var frame streamFrame
	err := json.Unmarshal(data, &frame)
	return frame, err
}

// Progress is the feature test progress of a project. Each progress
// frame replaces the whole struct; fields are never merged across
// frames.
type Progress struct {
	Passing    int
	InProgress int
	Total      int
	Percentage float64
}

// LogEntry is one log line pushed by the orchestrator.
type LogEntry struct {
	Line      string
	Timestamp string
}
