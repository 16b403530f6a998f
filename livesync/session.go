// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

package livesync

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/agentdeck/agentdeck/lib/clock"
)

// ConnState is the transport state of the active session.
type ConnState int

const (
	// StateDisconnected means no connection exists and none is being
	// attempted: either no project is observed, or the session was
	// just created.
	StateDisconnected ConnState = iota
	// StateConnecting means a dial is in flight.
	StateConnecting
	// StateOpen means the connection is established and frames flow.
	StateOpen
	// StateClosed means the last connection ended; a reconnect is
	// pending unless the session is being torn down.
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("ConnState(%d)", int(s))
	}
}

// AgentStatusStopped is the agent run status before any status frame
// arrives, and after every full reset.
const AgentStatusStopped = "stopped"

const (
	// heartbeatInterval is how often a ping frame is sent while the
	// connection is open. Fire-and-forget: a missing pong does not
	// trigger reconnection.
	heartbeatInterval = 30 * time.Second

	// initialReconnectDelay and maxReconnectDelay bound the
	// exponential backoff between reconnect attempts.
	initialReconnectDelay = time.Second
	maxReconnectDelay     = 30 * time.Second
)

// reconnectDelay computes the backoff before reconnect attempt n:
// 1s, 2s, 4s, 8s, 16s, then 30s for every attempt after.
func reconnectDelay(attempt int) time.Duration {
	// 1s << 5 is 32s, already past the cap.
	if attempt >= 5 {
		return maxReconnectDelay
	}
	return initialReconnectDelay << attempt
}

// SessionView is an immutable snapshot of the observed project's
// derived state. Display code reads views; it never mutates
// synchronizer state.
type SessionView struct {
	ProjectID   string
	State       ConnState
	Connected   bool
	Progress    Progress
	AgentStatus string
	Logs        []LogEntry
}

// Config configures a Synchronizer. BaseURL is required; nil Dialer,
// Clock, and Logger fall back to production defaults.
type Config struct {
	// BaseURL is the http(s) origin of the orchestrator backend. The
	// stream endpoint is derived from it: wss when the base is https,
	// ws otherwise.
	BaseURL string

	Dialer Dialer
	Clock  clock.Clock
	Logger *slog.Logger
}

// Synchronizer owns at most one live stream connection, for the most
// recently observed project, and the derived state built from its
// frames. All methods are safe for concurrent use.
type Synchronizer struct {
	base   *url.URL
	dialer Dialer
	clock  clock.Clock
	logger *slog.Logger

	// featureUpdates coalesces feature_update frames into a
	// buffered notification channel. The frame carries no state for
	// the synchronizer itself; consumers use the signal to refresh
	// REST-fetched data out of band.
	featureUpdates chan struct{}

	// done is closed by Close so consumers blocked on featureUpdates
	// can stop waiting.
	done chan struct{}

	mu      sync.Mutex
	current *session
	closed  bool
}

// New creates a Synchronizer. No connection is attempted until
// [Synchronizer.Observe] is called with a project ID.
func New(cfg Config) (*Synchronizer, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("livesync: BaseURL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("livesync: invalid BaseURL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("livesync: BaseURL %q must be http or https", cfg.BaseURL)
	}

	dialer := cfg.Dialer
	if dialer == nil {
		dialer = NewDialer()
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Synchronizer{
		base:           base,
		dialer:         dialer,
		clock:          clk,
		logger:         logger,
		featureUpdates: make(chan struct{}, 1),
		done:           make(chan struct{}),
	}, nil
}

// Observe switches the synchronizer to the given project. An empty
// projectID means "no project": the current session is torn down and
// the view returns to its initial values. Observing the project that
// is already active is a no-op — at most one transport is ever alive,
// even under rapid repeated calls.
//
// A change of project tears down the previous session (transport
// closed, pending reconnect cancelled) and resets the derived state in
// full before the new connection is attempted. No error is returned:
// connection failures feed the reconnect path, not the caller.
func (s *Synchronizer) Observe(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.current != nil && s.current.projectID == projectID {
		return
	}
	if s.current != nil {
		s.current.teardown()
		s.current = nil
	}
	if projectID == "" {
		return
	}

	sess := newSession(s, projectID)
	s.current = sess
	go sess.run()
}

// View returns a snapshot of the current session's derived state.
// With no project observed it returns the initial values: zero
// progress, agent status "stopped", no logs, not connected.
func (s *Synchronizer) View() SessionView {
	s.mu.Lock()
	sess := s.current
	s.mu.Unlock()

	if sess == nil {
		return SessionView{
			State:       StateDisconnected,
			AgentStatus: AgentStatusStopped,
			Logs:        []LogEntry{},
		}
	}
	return sess.snapshot()
}

// ClearLogs empties the log buffer and resets the duplicate-
// suppression memory. Connection state, progress, and agent status
// are unaffected.
func (s *Synchronizer) ClearLogs() {
	s.mu.Lock()
	sess := s.current
	s.mu.Unlock()

	if sess == nil {
		return
	}
	sess.mu.Lock()
	sess.logs.Clear()
	sess.mu.Unlock()
}

// FeatureUpdates returns a channel that receives a coalesced signal
// whenever the server pushes a feature_update frame. The frame itself
// carries no synchronizer state; consumers refresh their REST-fetched
// feature data when the signal fires.
func (s *Synchronizer) FeatureUpdates() <-chan struct{} {
	return s.featureUpdates
}

// Done returns a channel that is closed when the synchronizer is
// closed. Select on it alongside [Synchronizer.FeatureUpdates] so that
// waiting goroutines shut down with the synchronizer.
func (s *Synchronizer) Done() <-chan struct{} {
	return s.done
}

// Close tears down the active session and makes all further Observe
// calls no-ops. Safe to call more than once.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
	if s.current != nil {
		s.current.teardown()
		s.current = nil
	}
}

// notifyFeatureUpdate forwards a feature_update signal, dropping it if
// the originating session has been superseded or a signal is already
// pending.
func (s *Synchronizer) notifyFeatureUpdate(from *session) {
	s.mu.Lock()
	stale := s.current != from
	s.mu.Unlock()
	if stale {
		return
	}
	select {
	case s.featureUpdates <- struct{}{}:
	default:
	}
}

// session is the connection lifecycle and derived state for one
// project. Each Observe switch builds a fresh session; state from a
// torn-down session is unreachable from the synchronizer, which is
// what makes late callbacks from superseded connections harmless —
// they mutate an object nobody reads anymore.
type session struct {
	owner     *Synchronizer
	projectID string
	endpoint  string

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       ConnState
	connected   bool
	progress    Progress
	agentStatus string
	logs        *logRing
	conn        Conn
}

func newSession(owner *Synchronizer, projectID string) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		owner:       owner,
		projectID:   projectID,
		endpoint:    streamEndpoint(owner.base, projectID),
		ctx:         ctx,
		cancel:      cancel,
		state:       StateDisconnected,
		agentStatus: AgentStatusStopped,
		logs:        newLogRing(logCapacity),
	}
}

// teardown cancels the session: the pending reconnect timer stops
// waiting, and the live transport (if any) is closed, which unblocks
// the read loop. Idempotent.
func (s *session) teardown() {
	s.cancel()
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

// run drives the connection lifecycle until the session is torn down:
// dial, process frames, reconnect with exponential backoff. The
// attempt counter resets on every successful open, so a stable
// connection that eventually drops starts over at the shortest delay.
func (s *session) run() {
	attempt := 0
	for {
		opened, err := s.runConnection()
		if s.ctx.Err() != nil {
			return
		}
		if opened {
			attempt = 0
		}

		delay := reconnectDelay(attempt)
		attempt++
		s.owner.logger.Warn("live stream disconnected",
			"project", s.projectID,
			"error", err,
			"backoff", delay,
		)
		select {
		case <-s.owner.clock.After(delay):
		case <-s.ctx.Done():
			return
		}
	}
}

// runConnection performs one dial/read cycle. Returns whether the
// connection reached the open state, and the error that ended it.
func (s *session) runConnection() (bool, error) {
	s.mu.Lock()
	s.state = StateConnecting
	s.mu.Unlock()

	conn, err := s.owner.dialer.DialContext(s.ctx, s.endpoint)
	if err != nil {
		// Dial failures (including transport construction problems)
		// take the same path as a closed connection.
		s.mu.Lock()
		s.state = StateClosed
		s.mu.Unlock()
		return false, err
	}

	s.mu.Lock()
	// Teardown may have run while the dial was in flight, before any
	// conn was stored for it to close. The cancel check and the store
	// share the lock with teardown's read: either this path sees the
	// cancel and closes, or teardown sees the stored conn and closes.
	if err := s.ctx.Err(); err != nil {
		s.mu.Unlock()
		conn.Close()
		return false, err
	}
	s.conn = conn
	s.state = StateOpen
	s.connected = true
	s.mu.Unlock()
	s.owner.logger.Info("live stream connected", "project", s.projectID)

	connDone := make(chan struct{})
	ticker := s.owner.clock.NewTicker(heartbeatInterval)
	go s.heartbeat(conn, ticker, connDone)

	var readErr error
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			readErr = err
			break
		}
		s.handleFrame(data)
	}
	close(connDone)
	// Stopped here, not in the heartbeat goroutine, so that no stray
	// tick can fire once the reconnect backoff starts counting.
	ticker.Stop()

	// Errors force the transport closed rather than leaving it
	// half-open.
	conn.Close()

	s.mu.Lock()
	s.conn = nil
	s.state = StateClosed
	s.connected = false
	s.mu.Unlock()
	return true, readErr
}

// heartbeat sends a ping frame every heartbeatInterval while the
// connection is open. Pings are fire-and-forget: a write failure just
// stops the loop, and the read loop notices the broken transport on
// its own.
func (s *session) heartbeat(conn Conn, ticker *clock.Ticker, connDone <-chan struct{}) {
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteJSON(pingFrame{Type: "ping"}); err != nil {
				s.owner.logger.Debug("heartbeat write failed",
					"project", s.projectID, "error", err)
				return
			}
		case <-connDone:
			return
		case <-s.ctx.Done():
			return
		}
	}
}

// handleFrame folds one inbound frame into the derived state. Frames
// are processed strictly in delivery order on the read loop goroutine.
// Unparseable and unknown frames are dropped without affecting the
// connection.
func (s *session) handleFrame(data []byte) {
	frame, err := parseFrame(data)
	if err != nil {
		s.owner.logger.Debug("dropping unparseable frame",
			"project", s.projectID, "error", err)
		return
	}

	switch frame.Type {
	case frameProgress:
		s.mu.Lock()
		s.progress = Progress{
			Passing:    frame.Passing,
			InProgress: frame.InProgress,
			Total:      frame.Total,
			Percentage: frame.Percentage,
		}
		s.mu.Unlock()
	case frameAgentStatus:
		s.mu.Lock()
		s.agentStatus = frame.Status
		s.mu.Unlock()
	case frameLog:
		s.mu.Lock()
		s.logs.Append(LogEntry{Line: frame.Line, Timestamp: frame.Timestamp})
		s.mu.Unlock()
	case frameFeatureUpdate:
		s.owner.notifyFeatureUpdate(s)
	case framePong:
		// Heartbeat acknowledgement. Liveness is tracked through
		// transport close/error only.
	default:
		s.owner.logger.Debug("dropping unknown frame type",
			"project", s.projectID, "type", frame.Type)
	}
}

// snapshot returns a copy of the derived state.
func (s *session) snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionView{
		ProjectID:   s.projectID,
		State:       s.state,
		Connected:   s.connected,
		Progress:    s.progress,
		AgentStatus: s.agentStatus,
		Logs:        s.logs.Entries(),
	}
}
