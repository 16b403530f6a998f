// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package prefs persists small operator preferences — the last
// selected project and run-mode choices — across panel restarts.
//
// Preferences live in a single JSON file under the user config
// directory. Writes are atomic (temp file + rename) so a crash mid-
// write never leaves a truncated file behind. Preferences are comfort
// state, not correctness state: a missing or unreadable file silently
// yields defaults.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Prefs is the persisted operator state.
type Prefs struct {
	// LastProject is the project selected when the panel last ran.
	LastProject string `json:"last_project,omitempty"`

	// RunMode is the operator's preferred agent run mode (backend-
	// defined, e.g. "single-pass" or "continuous").
	RunMode string `json:"run_mode,omitempty"`

	// FollowLogs controls whether the log viewport sticks to the
	// tail as new lines arrive.
	FollowLogs bool `json:"follow_logs"`
}

// Default returns the preferences used when nothing is persisted.
func Default() *Prefs {
	return &Prefs{FollowLogs: true}
}

// DefaultPath returns the standard preferences location under the
// user config directory.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("prefs: resolving config dir: %w", err)
	}
	return filepath.Join(base, "agentdeck", "prefs.json"), nil
}

// Load reads preferences from path. A missing file is not an error;
// it yields [Default].
func Load(path string) (*Prefs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("prefs: reading %s: %w", path, err)
	}

	prefs := Default()
	if err := json.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("prefs: parsing %s: %w", path, err)
	}
	return prefs, nil
}

// Save writes preferences to path atomically, creating parent
// directories as needed.
func Save(path string, p *Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prefs: creating directory: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("prefs: encoding: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("prefs: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("prefs: replacing %s: %w", path, err)
	}
	return nil
}
