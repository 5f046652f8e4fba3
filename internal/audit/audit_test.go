// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRecordAndRecent(t *testing.T) {
	s := newTestStore(t)

	s.Record("AUTH_LOGIN", "root@example.com", false, "missing token")
	s.Record("AUTH_LOGIN", "root@example.com", true, "")
	s.Record("AUTH_LOGOUT", "root@example.com", true, "")

	events, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first.
	require.Equal(t, "AUTH_LOGOUT", events[0].Type)
	require.True(t, events[0].Success)
	require.Equal(t, "AUTH_LOGIN", events[2].Type)
	require.False(t, events[2].Success)
	require.Equal(t, "missing token", events[2].Detail)
}

func TestStoreRecentLimit(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		s.Record("AUTH_LOGIN", "a", true, "")
	}

	events, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, events, 2)
}

func TestStoreReopenKeepsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	s, err := Open(path)
	require.NoError(t, err)
	s.Record("AUTH_LOGIN", "a", true, "")
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	events, err := s2.Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestEventString(t *testing.T) {
	s := newTestStore(t)
	s.Record("AUTH_LOGIN", "root@example.com", false, "unauthorized role: viewer")

	events, err := s.Recent(1)
	require.NoError(t, err)
	require.Len(t, events, 1)

	line := events[0].String()
	require.True(t, strings.Contains(line, "AUTH_LOGIN"))
	require.True(t, strings.Contains(line, "FAILURE"))
	require.True(t, strings.Contains(line, "unauthorized role: viewer"))
}
