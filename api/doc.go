// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package api is the REST client for the orchestrator backend: project
// and feature listing, agent start/stop, project reset and deletion,
// and diagnostics runs.
//
// The live event stream is not handled here — that is package
// livesync. This client covers the command-and-query surface that the
// control panel combines with the synchronizer's derived state (for
// example, falling back to REST-derived feature counts while the
// stream reports a total of zero).
//
// Backend errors carry a structured shape which is surfaced as
// [*APIError]; extract it with errors.As to branch on the code or
// status. Transient failures (connection errors, 429, 5xx) are retried
// a bounded number of times with exponential backoff before the error
// is returned.
package api
