// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

package deckui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agentdeck/agentdeck/api"
	"github.com/agentdeck/agentdeck/livesync"
)

// boardColumns is the canonical column order. Statuses the backend
// reports beyond these are appended after, in first-seen order.
var boardColumns = []string{"backlog", "in_progress", "review", "done"}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.screen {
	case ScreenBoard:
		return m.boardView()
	default:
		return m.projectsView()
	}
}

func (m *Model) projectsView() string {
	theme := m.theme
	header := lipgloss.NewStyle().
		Foreground(theme.HeaderForeground).
		Bold(true).
		Render("agentdeck — projects")

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")

	if len(m.projects) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.FaintText).Render("no projects"))
		b.WriteString("\n")
	}
	for i, p := range m.projects {
		line := fmt.Sprintf("%-30s %s", p.Name, p.AgentStatus)
		style := lipgloss.NewStyle().Foreground(theme.NormalText)
		if i == m.cursor {
			style = lipgloss.NewStyle().
				Background(theme.SelectedBackground).
				Foreground(theme.SelectedForeground)
		}
		b.WriteString(style.Render("  " + line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.helpLine([]string{"↑/↓ move", "enter open", "r refresh", "q quit"}))
	return b.String()
}

func (m *Model) boardView() string {
	theme := m.theme

	var b strings.Builder
	b.WriteString(m.boardHeader())
	b.WriteString("\n\n")
	b.WriteString(m.progressLine())
	b.WriteString("\n\n")
	b.WriteString(m.featureColumns())
	b.WriteString("\n")

	logTitle := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Render("logs")
	if m.followLogs {
		logTitle += lipgloss.NewStyle().Foreground(theme.FaintText).Render(" (following)")
	}
	b.WriteString(logTitle)
	b.WriteString("\n")
	b.WriteString(m.logView.View())
	b.WriteString("\n")

	if m.statusLine != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.FaintText).Render(m.statusLine))
		b.WriteString("\n")
	}
	b.WriteString(m.helpLine([]string{
		"s start", "S stop", "R reset", "c clear logs",
		"f follow", "r refresh", "esc back", "q quit",
	}))
	return b.String()
}

func (m *Model) boardHeader() string {
	theme := m.theme
	name := lipgloss.NewStyle().
		Foreground(theme.HeaderForeground).
		Bold(true).
		Render(m.selected.Name)

	status := m.view.AgentStatus
	if status == "" {
		status = livesync.AgentStatusStopped
	}
	badge := lipgloss.NewStyle().
		Foreground(theme.statusColor(status)).
		Render("agent: " + status)

	parts := []string{name, badge}
	if !m.view.Connected {
		offline := lipgloss.NewStyle().
			Background(theme.OfflineBackground).
			Foreground(theme.OfflineForeground).
			Padding(0, 1).
			Render("OFFLINE")
		parts = append(parts, offline)
	}
	return strings.Join(parts, "  ")
}

// progressLine renders the passing/total bar. When the stream has not
// reported totals yet, it falls back to counting the fetched features.
func (m *Model) progressLine() string {
	p := m.view.Progress
	if p.Total == 0 {
		for _, f := range m.features {
			p.Total++
			switch f.Status {
			case "done":
				p.Passing++
			case "in_progress":
				p.InProgress++
			}
		}
		if p.Total > 0 {
			p.Percentage = float64(p.Passing) / float64(p.Total) * 100
		}
	}
	bar := m.progressBar.ViewAs(p.Percentage / 100)
	counts := fmt.Sprintf("%d/%d passing, %d in progress", p.Passing, p.Total, p.InProgress)
	return bar + "  " + lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(counts)
}

func (m *Model) featureColumns() string {
	groups := make(map[string][]api.Feature)
	order := append([]string(nil), boardColumns...)
	seen := make(map[string]bool, len(order))
	for _, s := range order {
		seen[s] = true
	}
	for _, f := range m.features {
		if !seen[f.Status] {
			seen[f.Status] = true
			order = append(order, f.Status)
		}
		groups[f.Status] = append(groups[f.Status], f)
	}

	theme := m.theme
	cols := make([]string, 0, len(order))
	for _, status := range order {
		var col strings.Builder
		title := fmt.Sprintf("%s (%d)", status, len(groups[status]))
		col.WriteString(lipgloss.NewStyle().Foreground(theme.HeaderForeground).Render(title))
		col.WriteString("\n")
		for _, f := range groups[status] {
			col.WriteString(lipgloss.NewStyle().Foreground(theme.NormalText).Render("· " + f.Title))
			col.WriteString("\n")
		}
		cols = append(cols, lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(theme.BorderColor).
			PaddingRight(2).
			Render(col.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m *Model) helpLine(entries []string) string {
	return lipgloss.NewStyle().
		Foreground(m.theme.HelpText).
		Render(strings.Join(entries, " · "))
}

// renderLogs formats log entries for the viewport, wrapping long lines
// to the viewport width.
func renderLogs(logs []livesync.LogEntry, width int) string {
	if len(logs) == 0 {
		return "(no output)"
	}
	var b strings.Builder
	wrap := lipgloss.NewStyle().Width(width)
	for i, e := range logs {
		if i > 0 {
			b.WriteString("\n")
		}
		line := e.Line
		if e.Timestamp != "" {
			line = e.Timestamp + "  " + line
		}
		b.WriteString(wrap.Render(line))
	}
	return b.String()
}
