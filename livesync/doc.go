// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package livesync maintains a live view of one orchestrator project
// over a streaming WebSocket connection.
//
// A [Synchronizer] owns at most one connection at a time, for the
// project most recently passed to [Synchronizer.Observe]. Inbound
// frames (progress counters, agent run status, log lines) are folded
// into derived state that display code reads as immutable snapshots
// via [Synchronizer.View]. Switching projects tears down the old
// connection and resets the derived state in full before the new
// connection is attempted; a late callback from a superseded
// connection can never reach the new project's state.
//
// Connection lifecycle is a four-state machine (Disconnected,
// Connecting, Open, Closed). Transport errors and server closes both
// funnel into the same reconnect path: an exponential backoff starting
// at one second and saturating at thirty, retried indefinitely until
// the project changes or the synchronizer is closed. While open, a
// ping frame is sent every thirty seconds; there is no pong-timeout
// tracking, so reconnection is driven purely by transport close and
// error.
//
// Log lines accumulate in a bounded ring (capacity 100, oldest
// evicted first). A frame carrying the same (timestamp, line) pair as
// the immediately preceding accepted line is dropped; non-consecutive
// duplicates pass through.
//
// Nothing in this package surfaces transport failures to the caller.
// A failed connection degrades to Connected == false in the view and
// a growing retry delay, and eventually heals on its own.
//
// The transport is abstracted behind [Dialer] and [Conn]; production
// code uses the gorilla/websocket implementation from [NewDialer],
// tests substitute fakes.
package livesync
