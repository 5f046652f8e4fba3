// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the admin session state machine and its
// durable persistence.
package session

import "strings"

// Profile holds the authenticated user's profile fields. The backend
// owns the shape; the console stores whatever JSON-serializable fields
// it receives and only reads a few well-known keys for display.
type Profile map[string]interface{}

// String returns the named field as a string, or "" when absent or not
// a string.
func (p Profile) String(key string) string {
	if p == nil {
		return ""
	}
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// DisplayName returns the best human-readable name available:
// "firstname lastname", then "name", then the email, then "".
func (p Profile) DisplayName() string {
	first := p.String("firstname")
	last := p.String("lastname")
	if full := strings.TrimSpace(first + " " + last); full != "" {
		return full
	}
	if name := p.String("name"); name != "" {
		return name
	}
	return p.String("email")
}

// Email returns the profile email field.
func (p Profile) Email() string {
	return p.String("email")
}
