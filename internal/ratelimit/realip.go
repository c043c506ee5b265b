// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

// Package ratelimit bounds request rates per resolved client identity
// using fixed-window counters behind a pluggable store.
//
// Client resolution is proxy-aware: the configured trust depth decides
// which entry of the forwarded-address chain is authoritative. With zero
// trusted hops the forwarded header is ignored outright, so a direct
// client cannot mint a fresh identity per request by forging it.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

const forwardedForHeader = "X-Forwarded-For"

// ClientAddr resolves the true client address for a request.
//
// When the service sits behind trustDepth trusted reverse proxies, each
// hop appends the address it saw to X-Forwarded-For, so the rightmost
// trustDepth entries are proxy-written and the authoritative client is
// the (trustDepth+1)-th address from the right. With trustDepth zero the
// immediate peer address is used and the header is never consulted.
func ClientAddr(r *http.Request, trustDepth int) string {
	if trustDepth <= 0 {
		return peerAddr(r)
	}

	chain := forwardedChain(r)
	if len(chain) == 0 {
		return peerAddr(r)
	}

	idx := len(chain) - trustDepth
	if idx < 0 {
		// Every listed hop is trusted; the leftmost entry is the
		// closest thing to a client the chain records.
		idx = 0
	}
	return chain[idx]
}

// forwardedChain flattens all X-Forwarded-For values into one ordered
// list of addresses, oldest (client-most) first.
func forwardedChain(r *http.Request) []string {
	var chain []string
	for _, header := range r.Header.Values(forwardedForHeader) {
		for _, part := range strings.Split(header, ",") {
			addr := strings.TrimSpace(part)
			if addr != "" {
				chain = append(chain, addr)
			}
		}
	}
	return chain
}

// peerAddr returns the host portion of the direct socket peer.
func peerAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
