// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the opsdeck terminal interface: the session
// gate, the login form, and the admin dashboard.
package ui

import "github.com/jeranaias/opsdeck-tui/internal/session"

// SessionReadyMsg signals that session hydration from storage has
// finished and the gate may leave the loading view.
type SessionReadyMsg struct{}

// ForcedLogoutMsg signals that the session was ended from outside the
// UI, typically by a 401 response. The gate lands on the login view
// with a notice.
type ForcedLogoutMsg struct{}

// loginResultMsg carries the outcome of a login attempt.
type loginResultMsg struct {
	err error
}

// profileRefreshedMsg carries a freshly fetched user profile.
type profileRefreshedMsg struct {
	user session.Profile
	err  error
}

// healthMsg carries the outcome of a backend health probe.
type healthMsg struct {
	err error
}
