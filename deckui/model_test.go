// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

package deckui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentdeck/agentdeck/api"
	"github.com/agentdeck/agentdeck/lib/clock"
	"github.com/agentdeck/agentdeck/lib/prefs"
	"github.com/agentdeck/agentdeck/livesync"
)

// errDialer fails every dial. Combined with a fake clock that never
// advances, the synchronizer makes one attempt and then parks on its
// backoff timer, so tests see a stable disconnected view.
type errDialer struct{}

func (errDialer) DialContext(context.Context, string) (livesync.Conn, error) {
	return nil, errors.New("dial refused")
}

// newTestModel builds a model against an httptest server and an inert
// synchronizer. The returned model has a window size applied.
func newTestModel(t *testing.T, handler http.Handler) *Model {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := api.NewClient(api.Config{
		BaseURL: srv.URL,
		Logger:  logger,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	sync, err := livesync.New(livesync.Config{
		BaseURL: srv.URL,
		Dialer:  errDialer{},
		Clock:   clock.Fake(time.Unix(1756600000, 0)),
		Logger:  logger,
	})
	if err != nil {
		t.Fatalf("livesync.New: %v", err)
	}
	t.Cleanup(sync.Close)

	m := New(Config{
		Client: client,
		Sync:   sync,
		Prefs:  prefs.Default(),
		Logger: logger,
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func sampleProjects() []api.Project {
	return []api.Project{
		{ID: "alpha", Name: "Alpha", AgentStatus: "running"},
		{ID: "beta", Name: "Beta", AgentStatus: "stopped"},
	}
}

// run applies a message and executes any returned command chain
// synchronously, feeding resulting messages back into the model.
// Tick and blocking wait commands are not followed.
func run(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	_, cmd := m.Update(msg)
	drain(t, m, cmd, 0)
}

func drain(t *testing.T, m *Model, cmd tea.Cmd, depth int) {
	t.Helper()
	if cmd == nil {
		return
	}
	if depth > 10 {
		t.Fatal("command chain did not settle")
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			drain(t, m, c, depth+1)
		}
	default:
		if _, ok := msg.(viewTickMsg); ok {
			return
		}
		_, next := m.Update(msg)
		drain(t, m, next, depth+1)
	}
}

func jsonHandler(t *testing.T, routes map[string]any) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	})
}

func TestProjectsLoadedPopulatesList(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, jsonHandler(t, nil))

	run(t, m, projectsLoadedMsg{projects: sampleProjects()})

	if len(m.projects) != 2 {
		t.Fatalf("projects = %d, want 2", len(m.projects))
	}
	out := m.View()
	if !strings.Contains(out, "Alpha") || !strings.Contains(out, "Beta") {
		t.Errorf("view missing project names:\n%s", out)
	}
}

func TestCursorNavigationClamps(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, jsonHandler(t, nil))
	run(t, m, projectsLoadedMsg{projects: sampleProjects()})

	run(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up at top, want 0", m.cursor)
	}
	run(t, m, tea.KeyMsg{Type: tea.KeyDown})
	run(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 1 {
		t.Errorf("cursor = %d after down at bottom, want 1", m.cursor)
	}
}

func TestSelectOpensBoardAndLoadsFeatures(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, jsonHandler(t, map[string]any{
		"GET /api/projects/alpha/features": []api.Feature{
			{ID: "f1", Title: "Login flow", Status: "done"},
			{ID: "f2", Title: "Billing", Status: "in_progress"},
		},
	}))
	run(t, m, projectsLoadedMsg{projects: sampleProjects()})

	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.screen != ScreenBoard {
		t.Fatalf("screen = %v, want ScreenBoard", m.screen)
	}
	if m.selected.ID != "alpha" {
		t.Fatalf("selected = %q, want alpha", m.selected.ID)
	}
	if len(m.features) != 2 {
		t.Fatalf("features = %d, want 2", len(m.features))
	}
	out := m.View()
	if !strings.Contains(out, "Login flow") {
		t.Errorf("board view missing feature:\n%s", out)
	}
}

func TestStaleFeatureResponseDropped(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, jsonHandler(t, map[string]any{
		"GET /api/projects/beta/features": []api.Feature{},
	}))
	run(t, m, projectsLoadedMsg{projects: sampleProjects()})
	run(t, m, tea.KeyMsg{Type: tea.KeyDown})
	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// A response for the previously viewed project must not land.
	run(t, m, featuresLoadedMsg{projectID: "alpha", features: []api.Feature{{ID: "x"}}})
	if len(m.features) != 0 {
		t.Errorf("stale features applied: %d entries", len(m.features))
	}
}

func TestBackReturnsToProjects(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, jsonHandler(t, map[string]any{
		"GET /api/projects/alpha/features": []api.Feature{},
	}))
	run(t, m, projectsLoadedMsg{projects: sampleProjects()})
	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	run(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != ScreenProjects {
		t.Fatalf("screen = %v, want ScreenProjects", m.screen)
	}
	if m.features != nil {
		t.Errorf("features not cleared on back")
	}
}

func TestOfflineBadgeShownWhenDisconnected(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, jsonHandler(t, map[string]any{
		"GET /api/projects/alpha/features": []api.Feature{},
	}))
	run(t, m, projectsLoadedMsg{projects: sampleProjects()})
	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	run(t, m, viewPolledMsg{view: livesync.SessionView{ProjectID: "alpha"}})
	if out := m.View(); !strings.Contains(out, "OFFLINE") {
		t.Errorf("disconnected board missing OFFLINE badge:\n%s", out)
	}

	run(t, m, viewPolledMsg{view: livesync.SessionView{ProjectID: "alpha", Connected: true}})
	if out := m.View(); strings.Contains(out, "OFFLINE") {
		t.Errorf("connected board still shows OFFLINE badge:\n%s", out)
	}
}

func TestProgressFallsBackToFeatureCounts(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, jsonHandler(t, map[string]any{
		"GET /api/projects/alpha/features": []api.Feature{
			{ID: "f1", Title: "A", Status: "done"},
			{ID: "f2", Title: "B", Status: "in_progress"},
			{ID: "f3", Title: "C", Status: "backlog"},
			{ID: "f4", Title: "D", Status: "done"},
		},
	}))
	run(t, m, projectsLoadedMsg{projects: sampleProjects()})
	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if out := m.View(); !strings.Contains(out, "2/4 passing, 1 in progress") {
		t.Errorf("fallback counts missing:\n%s", out)
	}

	// Once the stream reports totals, the fallback yields to it.
	run(t, m, viewPolledMsg{view: livesync.SessionView{
		ProjectID: "alpha",
		Connected: true,
		Progress:  livesync.Progress{Passing: 3, Total: 5, InProgress: 1, Percentage: 60},
	}})
	if out := m.View(); !strings.Contains(out, "3/5 passing, 1 in progress") {
		t.Errorf("stream counts missing:\n%s", out)
	}
}

func TestFeatureUpdateRefetchesOnBoard(t *testing.T) {
	t.Parallel()
	calls := 0
	m := newTestModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/projects/alpha/features" {
			calls++
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "[]")
	}))
	run(t, m, projectsLoadedMsg{projects: sampleProjects()})
	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if calls != 1 {
		t.Fatalf("feature fetches after open = %d, want 1", calls)
	}

	_, cmd := m.Update(featureUpdateMsg{})
	// Only execute the refetch half of the batch; the other half blocks
	// on the feature-update channel.
	if cmd == nil {
		t.Fatal("featureUpdateMsg returned no command")
	}
	drainBatchNonBlocking(t, m, cmd)
	if calls != 2 {
		t.Errorf("feature fetches after update signal = %d, want 2", calls)
	}
}

// drainBatchNonBlocking runs batch members whose messages resolve
// immediately, skipping the blocking feature-update wait.
func drainBatchNonBlocking(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		t.Fatalf("expected batch, got %T", msg)
	}
	for _, c := range batch {
		done := make(chan tea.Msg, 1)
		go func() { done <- c() }()
		select {
		case got := <-done:
			if got != nil {
				m.Update(got)
			}
		case <-time.After(100 * time.Millisecond):
			// Blocking wait command; leave it running.
		}
	}
}

func TestClearLogsKey(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, jsonHandler(t, map[string]any{
		"GET /api/projects/alpha/features": []api.Feature{},
	}))
	run(t, m, projectsLoadedMsg{projects: sampleProjects()})
	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	run(t, m, viewPolledMsg{view: livesync.SessionView{
		ProjectID: "alpha",
		Logs:      []livesync.LogEntry{{Line: "compiling", Timestamp: "10:00:00"}},
	}})
	if out := m.View(); !strings.Contains(out, "compiling") {
		t.Fatalf("log line missing before clear:\n%s", out)
	}

	run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if out := m.View(); strings.Contains(out, "compiling") {
		t.Errorf("log line survives clear:\n%s", out)
	}
}

func TestFollowToggleUpdatesPrefs(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, jsonHandler(t, map[string]any{
		"GET /api/projects/alpha/features": []api.Feature{},
	}))
	run(t, m, projectsLoadedMsg{projects: sampleProjects()})
	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.followLogs {
		t.Fatal("followLogs should default to true")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	if m.followLogs {
		t.Error("follow toggle did not flip")
	}
	if m.prefs.FollowLogs {
		t.Error("prefs not updated by follow toggle")
	}
}

func TestControlKeysHitEndpoints(t *testing.T) {
	t.Parallel()
	var paths []string
	m := newTestModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			paths = append(paths, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "[]")
	}))
	run(t, m, projectsLoadedMsg{projects: sampleProjects()})
	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'S'}})
	run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'R'}})

	want := []string{
		"/api/projects/alpha/agent/start",
		"/api/projects/alpha/agent/stop",
		"/api/projects/alpha/reset",
	}
	if len(paths) != len(want) {
		t.Fatalf("POST paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
	if !strings.Contains(m.statusLine, "ok") {
		t.Errorf("status line = %q, want success note", m.statusLine)
	}
}

func TestQuitKey(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, jsonHandler(t, nil))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key did not produce tea.Quit")
	}
	if m.View() != "" {
		t.Error("quitting view not empty")
	}
}

func TestFeatureUpdateWaitStopsOnClose(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, jsonHandler(t, nil))

	cmd := m.waitFeatureUpdateCmd()
	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()

	m.sync.Close()
	select {
	case msg := <-result:
		if msg != nil {
			t.Errorf("wait after Close: got %T, want nil", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("feature-update wait still blocked after Close")
	}
}

func TestErrMsgSurfacesOnStatusLine(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, jsonHandler(t, nil))
	run(t, m, errMsg{err: errors.New("backend unreachable")})
	if !strings.Contains(m.statusLine, "backend unreachable") {
		t.Errorf("statusLine = %q", m.statusLine)
	}
}
