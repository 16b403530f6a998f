// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentdeck/agentdeck/lib/clock"
)

// maxAttempts bounds the retry loop for transient backend failures.
// Three attempts with 1s/2s backoff covers brief rate limits and
// server hiccups without stalling the panel for long.
const maxAttempts = 3

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the http(s) origin of the orchestrator backend.
	BaseURL string
	// Token is an optional bearer token sent on every request.
	Token string
	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client
	// Clock drives retry backoff. If nil, clock.Real() is used.
	Clock clock.Clock
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client is a REST client for the orchestrator backend. All methods
// are safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	clock      clock.Clock
	logger     *slog.Logger
}

// NewClient creates a backend client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", cfg.BaseURL, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: httpClient,
		clock:      clk,
		logger:     logger,
	}, nil
}

// ListProjects returns every project the backend knows about.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/projects", nil)
	if err != nil {
		return nil, fmt.Errorf("api: listing projects: %w", err)
	}
	var projects []Project
	if err := json.Unmarshal(body, &projects); err != nil {
		return nil, fmt.Errorf("api: parsing project list: %w", err)
	}
	return projects, nil
}

// GetProject returns one project by ID.
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	body, err := c.doRequest(ctx, http.MethodGet, projectPath(projectID), nil)
	if err != nil {
		return nil, fmt.Errorf("api: getting project %s: %w", projectID, err)
	}
	var project Project
	if err := json.Unmarshal(body, &project); err != nil {
		return nil, fmt.Errorf("api: parsing project: %w", err)
	}
	return &project, nil
}

// ListFeatures returns the project's feature board.
func (c *Client) ListFeatures(ctx context.Context, projectID string) ([]Feature, error) {
	body, err := c.doRequest(ctx, http.MethodGet, projectPath(projectID)+"/features", nil)
	if err != nil {
		return nil, fmt.Errorf("api: listing features for %s: %w", projectID, err)
	}
	var features []Feature
	if err := json.Unmarshal(body, &features); err != nil {
		return nil, fmt.Errorf("api: parsing feature list: %w", err)
	}
	return features, nil
}

// StartAgent asks the backend to start the project's coding agent.
func (c *Client) StartAgent(ctx context.Context, projectID string) error {
	_, err := c.doRequest(ctx, http.MethodPost, projectPath(projectID)+"/agent/start", nil)
	if err != nil {
		return fmt.Errorf("api: starting agent for %s: %w", projectID, err)
	}
	return nil
}

// StopAgent asks the backend to stop the project's coding agent.
func (c *Client) StopAgent(ctx context.Context, projectID string) error {
	_, err := c.doRequest(ctx, http.MethodPost, projectPath(projectID)+"/agent/stop", nil)
	if err != nil {
		return fmt.Errorf("api: stopping agent for %s: %w", projectID, err)
	}
	return nil
}

// ResetProject resets the project's orchestration state. The project
// itself and its repository survive; progress and agent state do not.
func (c *Client) ResetProject(ctx context.Context, projectID string) error {
	_, err := c.doRequest(ctx, http.MethodPost, projectPath(projectID)+"/reset", nil)
	if err != nil {
		return fmt.Errorf("api: resetting project %s: %w", projectID, err)
	}
	return nil
}

// DeleteProject removes the project from the backend.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, projectPath(projectID), nil)
	if err != nil {
		return fmt.Errorf("api: deleting project %s: %w", projectID, err)
	}
	return nil
}

// RunDiagnostics triggers a backend diagnostics run and returns its
// report.
func (c *Client) RunDiagnostics(ctx context.Context) (*DiagnosticsReport, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/api/diagnostics", nil)
	if err != nil {
		return nil, fmt.Errorf("api: running diagnostics: %w", err)
	}
	var report DiagnosticsReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("api: parsing diagnostics report: %w", err)
	}
	return &report, nil
}

func projectPath(projectID string) string {
	return "/api/projects/" + url.PathEscape(projectID)
}

// doRequest performs one HTTP request with bounded retry on transient
// failures. Backend errors decode into *APIError; non-2xx responses
// with a non-JSON body fail loud with the raw body.
func (c *Client) doRequest(ctx context.Context, method, path string, requestBody any) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-c.clock.After(backoff):
			}
			c.logger.Warn("retrying backend request",
				"method", method,
				"path", path,
				"attempt", attempt+1,
				"error", lastErr,
			)
		}

		body, err := c.doRequestOnce(ctx, method, path, requestBody)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !isTransient(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) doRequestOnce(ctx context.Context, method, path string, requestBody any) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	var apiErr APIError
	if jsonErr := json.Unmarshal(responseBody, &apiErr); jsonErr != nil || apiErr.Code == "" {
		return nil, fmt.Errorf("unexpected %d response from %s %s: %s",
			response.StatusCode, method, path, string(responseBody))
	}
	apiErr.StatusCode = response.StatusCode
	return nil, &apiErr
}
