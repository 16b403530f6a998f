// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

package deckui

import (
	"time"

	"github.com/agentdeck/agentdeck/api"
	"github.com/agentdeck/agentdeck/livesync"
)

// projectsLoadedMsg carries the project list fetched from the server.
type projectsLoadedMsg struct {
	projects []api.Project
}

// featuresLoadedMsg carries the feature list for the selected project.
// projectID identifies which project the fetch was for, so responses
// arriving after a project switch can be dropped.
type featuresLoadedMsg struct {
	projectID string
	features  []api.Feature
}

// viewTickMsg triggers a poll of the synchronizer's current view.
type viewTickMsg struct {
	at time.Time
}

// viewPolledMsg carries a snapshot taken from the synchronizer.
type viewPolledMsg struct {
	view livesync.SessionView
}

// featureUpdateMsg signals that the server reported a feature change
// and the feature list should be re-fetched.
type featureUpdateMsg struct{}

// commandResultMsg reports the outcome of a fire-and-forget control
// action (start, stop, reset).
type commandResultMsg struct {
	action string
	err    error
}

// errMsg carries a fetch failure for the status line.
type errMsg struct {
	err error
}
