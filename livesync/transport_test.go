// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

package livesync

import (
	"net/url"
	"testing"
)

func TestStreamEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		base      string
		projectID string
		want      string
	}{
		{
			name:      "plain http maps to ws",
			base:      "http://panel.local:8080",
			projectID: "alpha",
			want:      "ws://panel.local:8080/ws/projects/alpha",
		},
		{
			name:      "https maps to wss",
			base:      "https://deck.example.com",
			projectID: "alpha",
			want:      "wss://deck.example.com/ws/projects/alpha",
		},
		{
			name:      "project ID is URL-escaped",
			base:      "http://panel.local",
			projectID: "my project/x",
			want:      "ws://panel.local/ws/projects/my%20project%2Fx",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			base, err := url.Parse(tt.base)
			if err != nil {
				t.Fatalf("parse base: %v", err)
			}
			if got := streamEndpoint(base, tt.projectID); got != tt.want {
				t.Errorf("streamEndpoint: got %q, want %q", got, tt.want)
			}
		})
	}
}
