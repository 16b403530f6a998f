// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
)

// APIError is a structured error response from the backend. Callers
// use errors.As to extract it:
//
//	var apiErr *api.APIError
//	if errors.As(err, &apiErr) && apiErr.Code == api.ErrCodeNotFound { ... }
type APIError struct {
	// Code is the backend error code (e.g. "not_found").
	Code string `json:"code"`
	// Message is the human-readable description from the server.
	Message string `json:"message"`
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Backend error codes.
const (
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeRateLimited  = "rate_limited"
)

// IsNotFound reports whether err is an APIError for a missing
// project or feature.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == ErrCodeNotFound
}

// isTransient reports whether an error is worth retrying: connection
// failures, rate limiting (429), and server errors (5xx). Client
// errors other than 429 are permanent.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 429 {
			return true
		}
		if apiErr.StatusCode >= 500 {
			return true
		}
		if apiErr.StatusCode >= 400 {
			return false
		}
	}
	// Non-API errors (connection refused, timeout, EOF) are transient.
	return true
}
