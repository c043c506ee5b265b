// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func requestWith(remoteAddr string, forwarded ...string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = remoteAddr
	for _, h := range forwarded {
		r.Header.Add("X-Forwarded-For", h)
	}
	return r
}

func TestClientAddr(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  []string
		depth      int
		want       string
	}{
		{
			name:       "depth zero ignores forged header",
			remoteAddr: "203.0.113.9:41000",
			forwarded:  []string{"10.0.0.1"},
			depth:      0,
			want:       "203.0.113.9",
		},
		{
			name:       "depth zero no header",
			remoteAddr: "203.0.113.9:41000",
			depth:      0,
			want:       "203.0.113.9",
		},
		{
			name:       "one trusted proxy takes last entry",
			remoteAddr: "192.0.2.1:443",
			forwarded:  []string{"10.0.0.1"},
			depth:      1,
			want:       "10.0.0.1",
		},
		{
			name:       "one trusted proxy, client prepends spoof",
			remoteAddr: "192.0.2.1:443",
			forwarded:  []string{"6.6.6.6, 10.0.0.1"},
			depth:      1,
			want:       "10.0.0.1",
		},
		{
			name:       "two trusted proxies take second from right",
			remoteAddr: "192.0.2.1:443",
			forwarded:  []string{"10.0.0.1, 172.16.0.5"},
			depth:      2,
			want:       "10.0.0.1",
		},
		{
			name:       "chain shorter than depth falls back to leftmost",
			remoteAddr: "192.0.2.1:443",
			forwarded:  []string{"10.0.0.1"},
			depth:      3,
			want:       "10.0.0.1",
		},
		{
			name:       "trusted depth with empty header uses peer",
			remoteAddr: "192.0.2.1:443",
			depth:      1,
			want:       "192.0.2.1",
		},
		{
			name:       "multiple header values flatten in order",
			remoteAddr: "192.0.2.1:443",
			forwarded:  []string{"10.0.0.1", "172.16.0.5"},
			depth:      1,
			want:       "172.16.0.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := requestWith(tt.remoteAddr, tt.forwarded...)
			if got := ClientAddr(r, tt.depth); got != tt.want {
				t.Errorf("ClientAddr(depth=%d) = %q, want %q", tt.depth, got, tt.want)
			}
		})
	}
}
