// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

package livesync

import (
	"context"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one live stream connection. Implementations must unblock a
// pending ReadMessage with an error when Close is called.
type Conn interface {
	// ReadMessage blocks until the next frame arrives or the
	// connection ends.
	ReadMessage() ([]byte, error)

	// WriteJSON sends one JSON-encoded frame.
	WriteJSON(v any) error

	// Close tears down the connection. Safe to call more than once.
	Close() error
}

// Dialer opens stream connections. The synchronizer uses this seam so
// tests can script connections without a server; production code uses
// [NewDialer].
type Dialer interface {
	DialContext(ctx context.Context, endpoint string) (Conn, error)
}

// NewDialer returns the production WebSocket dialer.
func NewDialer() Dialer {
	return &wsDialer{
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

type wsDialer struct {
	dialer *websocket.Dialer
}

func (d *wsDialer) DialContext(ctx context.Context, endpoint string) (Conn, error) {
	conn, _, err := d.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) WriteJSON(v any) error { return c.conn.WriteJSON(v) }

func (c *wsConn) Close() error { return c.conn.Close() }

// streamEndpoint builds the stream URL for a project: the ws variant
// of the backend's scheme (wss iff https), the backend's host, and a
// path carrying the URL-escaped project ID.
func streamEndpoint(base *url.URL, projectID string) string {
	scheme := "ws"
	if base.Scheme == "https" {
		scheme = "wss"
	}
	return scheme + "://" + base.Host + "/ws/projects/" + url.PathEscape(projectID)
}
