// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the shared HTTP client for the opsdeck backend.
package api

import (
	"log"
	"net"
	"strings"
)

// DefaultLocalBaseURL is the hard-coded fallback for local development.
const DefaultLocalBaseURL = "http://localhost:5000/api/v1"

// Environment is the explicit input to base-URL resolution. It is a
// snapshot of build flags, configured URLs, and the runtime hostname;
// Resolve reads no ambient state, which keeps it testable.
type Environment struct {
	// DevelopmentBuild and ProductionBuild reflect the build mode.
	// Both false means the build mode is ambiguous and the hostname
	// heuristics below decide.
	DevelopmentBuild bool
	ProductionBuild  bool

	// Configured backend origins, any of which may be empty.
	DevURL        string
	ProdURL       string
	LegacyBaseURL string

	// Hostname is the machine's runtime hostname, used only when the
	// build mode is ambiguous.
	Hostname string
}

// Resolve selects the backend base URL for the given environment.
//
// Precedence:
//  1. Development build: DevURL, else the local default (with a warning).
//  2. Production build: ProdURL, else LegacyBaseURL (with a warning),
//     else the local default. A production build with no URL configured
//     is a configuration error, but Resolve must not fail: the app keeps
//     running against the local default.
//  3. Ambiguous build: a local-looking hostname prefers DevURL, anything
//     else prefers ProdURL, then LegacyBaseURL, then the local default.
//
// Resolve always returns a non-empty URL and never panics.
func Resolve(env Environment) string {
	switch {
	case env.DevelopmentBuild:
		if env.DevURL != "" {
			return env.DevURL
		}
		log.Printf("api: no development URL configured, falling back to %s", DefaultLocalBaseURL)
		return DefaultLocalBaseURL

	case env.ProductionBuild:
		if env.ProdURL != "" {
			return env.ProdURL
		}
		if env.LegacyBaseURL != "" {
			log.Printf("api: production URL not set, using legacy base URL")
			return env.LegacyBaseURL
		}
		log.Printf("api: ERROR: production build with no backend URL configured, falling back to %s", DefaultLocalBaseURL)
		return DefaultLocalBaseURL

	default:
		if IsLocalHostname(env.Hostname) {
			if env.DevURL != "" {
				return env.DevURL
			}
			return DefaultLocalBaseURL
		}
		if env.ProdURL != "" {
			return env.ProdURL
		}
		if env.LegacyBaseURL != "" {
			return env.LegacyBaseURL
		}
		return DefaultLocalBaseURL
	}
}

// IsLocalHostname reports whether a hostname looks like a local or
// private-network machine: "localhost", loopback addresses, "*.local"
// names, and the RFC 1918 private IPv4 ranges (10.0.0.0/8,
// 172.16.0.0/12, 192.168.0.0/16).
func IsLocalHostname(hostname string) bool {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if host == "" {
		return false
	}
	if host == "localhost" || strings.HasSuffix(host, ".local") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate()
	}
	return false
}
