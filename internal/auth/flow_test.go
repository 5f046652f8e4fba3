// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/opsdeck-tui/internal/api"
	"github.com/jeranaias/opsdeck-tui/internal/session"
)

func newTestFlow(t *testing.T, handler http.HandlerFunc) (*Flow, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sessions := session.NewStore(session.NewPersistedStore(t.TempDir()))
	sessions.Initialize()
	return NewFlow(api.NewClient(srv.URL), sessions), sessions
}

func TestFlowSubmitSuccess(t *testing.T) {
	flow, sessions := newTestFlow(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "root@example.com", req.Login)
		require.Equal(t, "hunter2", req.Password)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"token":     "tok-abc",
			"role":      "admin",
			"firstname": "Ada",
			"lastname":  "Lovelace",
			"email":     "root@example.com",
		})
	})

	require.NoError(t, flow.Submit(context.Background(), "root@example.com", "hunter2"))

	snap := sessions.Snapshot()
	require.Equal(t, session.StatusAuthenticated, snap.Status)
	require.Equal(t, "tok-abc", snap.Token)
	require.Equal(t, "admin", snap.Role)
	require.Equal(t, "Ada Lovelace", snap.User.DisplayName())
	require.NotContains(t, snap.User, "token", "credentials never land in the profile")
	require.NotContains(t, snap.User, "role")
}

func TestFlowSubmitNonAdminRejected(t *testing.T) {
	flow, sessions := newTestFlow(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "tok-abc",
			"role":  "viewer",
		})
	})

	err := flow.Submit(context.Background(), "user", "pw")
	require.ErrorIs(t, err, ErrNotAuthorized)
	require.Equal(t, session.StatusUnauthenticated, sessions.Status(),
		"a non-admin token must never be installed")
}

func TestFlowSubmitServerMessage(t *testing.T) {
	flow, _ := newTestFlow(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	})

	err := flow.Submit(context.Background(), "user", "wrong")
	require.EqualError(t, err, "Invalid credentials")
}

func TestFlowSubmitGenericFailure(t *testing.T) {
	flow, _ := newTestFlow(t, func(w http.ResponseWriter, r *http.Request) {
		// Token present but unusable: no role anywhere.
		json.NewEncoder(w).Encode(map[string]interface{}{"token": "t", "role": ""})
	})

	err := flow.Submit(context.Background(), "user", "pw")
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestFlowSubmitNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	sessions := session.NewStore(session.NewPersistedStore(t.TempDir()))
	sessions.Initialize()
	flow := NewFlow(api.NewClient(srv.URL), sessions)

	err := flow.Submit(context.Background(), "user", "pw")
	require.EqualError(t, err, "Network error. Please check your connection.")
}

func TestFlowThrottlesRepeatedAttempts(t *testing.T) {
	flow, _ := newTestFlow(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	})

	// Burn through the burst allowance, then the limiter kicks in.
	throttled := false
	for i := 0; i < 10; i++ {
		if err := flow.Submit(context.Background(), "user", "pw"); errors.Is(err, ErrThrottled) {
			throttled = true
			break
		}
	}
	require.True(t, throttled, "rapid attempts must eventually be throttled")
}
