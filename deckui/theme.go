// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

package deckui

import "github.com/charmbracelet/lipgloss"

// Theme is the panel's color palette. All colors are ANSI 256 codes
// for broad terminal compatibility.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Agent status badge colors.
	StatusRunning lipgloss.Color
	StatusStopped lipgloss.Color
	StatusOther   lipgloss.Color

	// Offline badge (stream disconnected).
	OfflineBackground lipgloss.Color
	OfflineForeground lipgloss.Color
}

// DefaultTheme is the built-in palette.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("243"),

	SelectedBackground: lipgloss.Color("25"),
	SelectedForeground: lipgloss.Color("231"),

	HeaderForeground: lipgloss.Color("81"),
	BorderColor:      lipgloss.Color("238"),
	HelpText:         lipgloss.Color("243"),

	StatusRunning: lipgloss.Color("40"),
	StatusStopped: lipgloss.Color("243"),
	StatusOther:   lipgloss.Color("214"),

	OfflineBackground: lipgloss.Color("124"),
	OfflineForeground: lipgloss.Color("231"),
}

// statusColor picks the badge color for an agent run status. Statuses
// beyond running/stopped are backend-defined and share one accent.
func (t Theme) statusColor(status string) lipgloss.Color {
	switch status {
	case "running":
		return t.StatusRunning
	case "stopped":
		return t.StatusStopped
	default:
		return t.StatusOther
	}
}
