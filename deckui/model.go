// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

package deckui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentdeck/agentdeck/api"
	"github.com/agentdeck/agentdeck/lib/prefs"
	"github.com/agentdeck/agentdeck/livesync"
)

// Screen identifies which of the two screens is active.
type Screen int

const (
	// ScreenProjects lists all projects for selection.
	ScreenProjects Screen = iota
	// ScreenBoard shows the live board for one project.
	ScreenBoard
)

// viewPollInterval is how often the model snapshots the synchronizer.
// The synchronizer mutates its view from the stream goroutine, so the
// model polls rather than receiving push messages.
const viewPollInterval = 250 * time.Millisecond

// fetchTimeout bounds every REST call issued from a Cmd.
const fetchTimeout = 10 * time.Second

// Config assembles a Model's dependencies.
type Config struct {
	Client *api.Client
	Sync   *livesync.Synchronizer
	Prefs  *prefs.Prefs
	// PrefsPath is where preference changes are persisted. Empty
	// disables persistence.
	PrefsPath string
	Logger    *slog.Logger
}

// Model is the top-level bubbletea model. It is a pure state machine:
// all I/O happens in tea.Cmd closures, so tests drive Update with
// messages directly.
type Model struct {
	client    *api.Client
	sync      *livesync.Synchronizer
	prefs     *prefs.Prefs
	prefsPath string
	logger    *slog.Logger

	keys  KeyMap
	theme Theme

	screen   Screen
	width    int
	height   int
	quitting bool

	// Projects screen.
	projects []api.Project
	cursor   int

	// Board screen.
	selected    api.Project
	features    []api.Feature
	view        livesync.SessionView
	progressBar progress.Model
	logView     viewport.Model
	followLogs  bool

	statusLine string
}

// New builds a Model. The synchronizer must already be constructed;
// the model drives it via Observe as projects are selected.
func New(cfg Config) *Model {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	followLogs := true
	if cfg.Prefs != nil {
		followLogs = cfg.Prefs.FollowLogs
	}
	return &Model{
		client:      cfg.Client,
		sync:        cfg.Sync,
		prefs:       cfg.Prefs,
		prefsPath:   cfg.PrefsPath,
		logger:      logger,
		keys:        DefaultKeyMap(),
		theme:       DefaultTheme,
		progressBar: progress.New(progress.WithDefaultGradient()),
		logView:     viewport.New(80, 10),
		followLogs:  followLogs,
	}
}

// Init loads the project list and starts the view poll and the
// feature-update wait loop.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadProjectsCmd(), m.scheduleViewPoll(), m.waitFeatureUpdateCmd())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progressBar.Width = max(10, msg.Width-20)
		m.logView.Width = max(10, msg.Width-4)
		m.logView.Height = max(3, msg.Height/3)
		m.refreshLogView()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case projectsLoadedMsg:
		m.projects = msg.projects
		if m.cursor >= len(m.projects) {
			m.cursor = max(0, len(m.projects)-1)
		}
		// Reopen the last-viewed project on startup, if it still exists.
		if m.screen == ScreenProjects && m.prefs != nil && m.prefs.LastProject != "" {
			for _, p := range m.projects {
				if p.ID == m.prefs.LastProject {
					return m, m.openProject(p)
				}
			}
			m.prefs.LastProject = ""
		}
		return m, nil

	case featuresLoadedMsg:
		// A fetch started before a project switch answers for the old
		// project; drop it.
		if m.screen != ScreenBoard || msg.projectID != m.selected.ID {
			return m, nil
		}
		m.features = msg.features
		return m, nil

	case viewTickMsg:
		return m, tea.Batch(m.pollViewCmd(), m.scheduleViewPoll())

	case viewPolledMsg:
		prevLen := len(m.view.Logs)
		m.view = msg.view
		if len(m.view.Logs) != prevLen {
			m.refreshLogView()
		}
		return m, nil

	case featureUpdateMsg:
		cmds := []tea.Cmd{m.waitFeatureUpdateCmd()}
		if m.screen == ScreenBoard {
			cmds = append(cmds, m.loadFeaturesCmd(m.selected.ID))
		}
		return m, tea.Batch(cmds...)

	case commandResultMsg:
		if msg.err != nil {
			m.statusLine = msg.action + " failed: " + msg.err.Error()
			return m, nil
		}
		m.statusLine = msg.action + " ok"
		return m, nil

	case errMsg:
		m.statusLine = msg.err.Error()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenProjects:
		return m.handleProjectsKey(msg)
	case ScreenBoard:
		return m.handleBoardKey(msg)
	}
	return m, nil
}

func (m *Model) handleProjectsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.projects)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		if m.cursor < len(m.projects) {
			return m, m.openProject(m.projects[m.cursor])
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadProjectsCmd()
	}
	return m, nil
}

func (m *Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = ScreenProjects
		m.features = nil
		m.statusLine = ""
		m.sync.Observe("")
		if m.prefs != nil {
			m.prefs.LastProject = ""
		}
		return m, m.savePrefsCmd()
	case key.Matches(msg, m.keys.StartAgent):
		return m, m.controlCmd("start agent", func(ctx context.Context) error {
			return m.client.StartAgent(ctx, m.selected.ID)
		})
	case key.Matches(msg, m.keys.StopAgent):
		return m, m.controlCmd("stop agent", func(ctx context.Context) error {
			return m.client.StopAgent(ctx, m.selected.ID)
		})
	case key.Matches(msg, m.keys.Reset):
		return m, m.controlCmd("reset", func(ctx context.Context) error {
			return m.client.ResetProject(ctx, m.selected.ID)
		})
	case key.Matches(msg, m.keys.ClearLogs):
		m.sync.ClearLogs()
		m.view.Logs = nil
		m.refreshLogView()
	case key.Matches(msg, m.keys.Follow):
		m.followLogs = !m.followLogs
		if m.prefs != nil {
			m.prefs.FollowLogs = m.followLogs
		}
		if m.followLogs {
			m.logView.GotoBottom()
		}
		return m, m.savePrefsCmd()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadFeaturesCmd(m.selected.ID)
	case key.Matches(msg, m.keys.LogUp):
		m.followLogs = false
		m.logView.HalfViewUp()
	case key.Matches(msg, m.keys.LogDown):
		m.logView.HalfViewDown()
	}
	return m, nil
}

// openProject switches to the board screen and points the synchronizer
// at the chosen project.
func (m *Model) openProject(p api.Project) tea.Cmd {
	m.screen = ScreenBoard
	m.selected = p
	m.features = nil
	m.statusLine = ""
	m.view = livesync.SessionView{}
	m.refreshLogView()
	m.sync.Observe(p.ID)
	if m.prefs != nil {
		m.prefs.LastProject = p.ID
	}
	return tea.Batch(m.loadFeaturesCmd(p.ID), m.savePrefsCmd())
}

// refreshLogView rebuilds the viewport content from the current log
// snapshot and keeps the tail pinned when following.
func (m *Model) refreshLogView() {
	m.logView.SetContent(renderLogs(m.view.Logs, m.logView.Width))
	if m.followLogs {
		m.logView.GotoBottom()
	}
}

func (m *Model) loadProjectsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		projects, err := client.ListProjects(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return projectsLoadedMsg{projects: projects}
	}
}

func (m *Model) loadFeaturesCmd(projectID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		features, err := client.ListFeatures(ctx, projectID)
		if err != nil {
			return errMsg{err: err}
		}
		return featuresLoadedMsg{projectID: projectID, features: features}
	}
}

func (m *Model) pollViewCmd() tea.Cmd {
	sync := m.sync
	return func() tea.Msg {
		return viewPolledMsg{view: sync.View()}
	}
}

func (m *Model) scheduleViewPoll() tea.Cmd {
	return tea.Tick(viewPollInterval, func(t time.Time) tea.Msg {
		return viewTickMsg{at: t}
	})
}

// waitFeatureUpdateCmd blocks on the synchronizer's feature-update
// channel. It re-arms itself via featureUpdateMsg handling in Update,
// and stops when the synchronizer closes.
func (m *Model) waitFeatureUpdateCmd() tea.Cmd {
	ch := m.sync.FeatureUpdates()
	done := m.sync.Done()
	return func() tea.Msg {
		select {
		case <-ch:
			return featureUpdateMsg{}
		case <-done:
			return nil
		}
	}
}

func (m *Model) controlCmd(action string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return commandResultMsg{action: action, err: fn(ctx)}
	}
}

// savePrefsCmd persists preferences in the background. Failures are
// reported on the status line but never block the UI.
func (m *Model) savePrefsCmd() tea.Cmd {
	if m.prefs == nil || m.prefsPath == "" {
		return nil
	}
	p := *m.prefs
	path := m.prefsPath
	return func() tea.Msg {
		if err := prefs.Save(path, &p); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}
