// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

package api

// Project is one orchestrated codebase the backend manages.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AgentStatus string `json:"agent_status"`
	CreatedAt   string `json:"created_at"`
}

// Feature is one unit of work on a project's board. Status values are
// backend-defined; the board groups by them as-is.
type Feature struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority int    `json:"priority"`
}

// DiagnosticCheck is one result from a backend diagnostics run.
type DiagnosticCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// DiagnosticsReport is the outcome of a diagnostics run.
type DiagnosticsReport struct {
	Healthy bool              `json:"healthy"`
	Checks  []DiagnosticCheck `json:"checks"`
}
