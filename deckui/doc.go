// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package deckui is the terminal control panel: a bubbletea program
// that renders orchestrator project state and issues commands.
//
// The panel has two screens. The project screen lists every project
// the backend knows about. Selecting one switches to the board screen:
// feature columns grouped by status, a test progress bar, the agent
// run status, and a live log viewport. Live state comes from a
// [livesync.Synchronizer] — the model polls its view on a short tick
// and re-fetches the feature board whenever the synchronizer signals
// a feature update. Commands (start/stop agent, reset project) go
// through the REST client; their results surface in the status line,
// never as a crash.
//
// The model is pure state transition: all I/O happens in tea.Cmd
// closures, so tests drive Update with messages directly.
package deckui
