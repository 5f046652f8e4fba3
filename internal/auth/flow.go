// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth implements the interactive login flow against the
// backend auth endpoint.
package auth

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"github.com/jeranaias/opsdeck-tui/internal/api"
	"github.com/jeranaias/opsdeck-tui/internal/session"
)

// User-facing login failures. The messages are shown verbatim on the
// login form, so they are written for humans, not logs.
var (
	// ErrLoginFailed is the generic failure shown when the backend
	// rejected the credentials without a usable message.
	ErrLoginFailed = errors.New("Login failed. Please try again.")

	// ErrNotAuthorized is shown when the credentials are valid but the
	// account's role does not grant console access.
	ErrNotAuthorized = errors.New("You are not authorized to access this page.")

	// ErrThrottled is shown when login attempts come in faster than the
	// local rate limit allows.
	ErrThrottled = errors.New("Too many login attempts. Please wait a moment.")
)

// loginPath is the backend authentication endpoint.
const loginPath = "/auth/login"

// Flow drives a login attempt end to end: submit credentials, check the
// returned role, and install the session on success.
//
// SECURITY: Attempts are rate limited client-side so a wedged UI cannot
// hammer the auth endpoint.
type Flow struct {
	client   *api.Client
	sessions *session.Store
	limiter  *rate.Limiter
}

// NewFlow creates a login flow using the given API client and session
// store.
func NewFlow(client *api.Client, sessions *session.Store) *Flow {
	return &Flow{
		client:   client,
		sessions: sessions,
		// Plenty for a human, hostile to a loop.
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}
}

// loginRequest is the credential payload. The backend accepts either a
// username or an email in the login field.
type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Submit performs one login attempt. On success the session store holds
// an authenticated admin session and nil is returned. On failure the
// returned error message is suitable for direct display.
func (f *Flow) Submit(ctx context.Context, identifier, password string) error {
	if !f.limiter.Allow() {
		return ErrThrottled
	}

	// The response is the flat profile document with the token and role
	// alongside the user fields.
	var body map[string]interface{}
	err := f.client.Post(ctx, loginPath, loginRequest{Login: identifier, Password: password}, &body)
	if err != nil {
		return loginError(err)
	}

	token, _ := body["token"].(string)
	role, _ := body["role"].(string)

	// The backend enforces this too, but checking here keeps a
	// non-admin token out of the persisted record entirely.
	if role != session.AdminRole {
		return ErrNotAuthorized
	}

	user := profileFrom(body)
	if err := f.sessions.Login(token, role, user); err != nil {
		if errors.Is(err, session.ErrUnauthorizedRole) {
			return ErrNotAuthorized
		}
		return ErrLoginFailed
	}
	return nil
}

// profileFrom extracts the user profile from the login response by
// stripping the credential fields.
func profileFrom(body map[string]interface{}) session.Profile {
	user := make(session.Profile, len(body))
	for k, v := range body {
		if k == "token" || k == "role" {
			continue
		}
		user[k] = v
	}
	if len(user) == 0 {
		return nil
	}
	return user
}

// loginError maps a transport failure to its user-facing message.
// Network problems keep their dedicated message; a server-provided
// message is passed through; anything else gets the generic failure.
func loginError(err error) error {
	if errors.Is(err, api.ErrNetwork) {
		return api.ErrNetwork
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return errors.New(apiErr.Message)
	}
	return ErrLoginFailed
}
