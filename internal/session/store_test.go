// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(newTestPersist(t))
}

func TestStoreStartsInitializing(t *testing.T) {
	s := newTestStore(t)
	require.Equal(t, StatusInitializing, s.Status())
	require.False(t, s.IsAuthenticated())
}

func TestStoreInitializeEmpty(t *testing.T) {
	s := newTestStore(t)
	s.Initialize()
	require.Equal(t, StatusUnauthenticated, s.Status())
}

func TestStoreLoginValidation(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		role    string
		wantErr error
	}{
		{"missing token", "", "admin", ErrMissingToken},
		{"missing role", "t", "", ErrMissingRole},
		{"non-admin role", "t", "viewer", ErrUnauthorizedRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			s.Initialize()

			err := s.Login(tt.token, tt.role, nil)
			require.ErrorIs(t, err, tt.wantErr)

			// A rejected login leaves the store untouched.
			snap := s.Snapshot()
			require.Equal(t, StatusUnauthenticated, snap.Status)
			require.Empty(t, snap.Token)
			require.Empty(t, snap.Role)
		})
	}
}

func TestStoreLoginPersistsAndRestores(t *testing.T) {
	p := newTestPersist(t)
	s := NewStore(p)
	s.Initialize()

	require.NoError(t, s.Login("t", "admin", Profile{"name": "A"}))
	require.Equal(t, StatusAuthenticated, s.Status())
	require.True(t, s.IsAuthenticated())
	require.True(t, s.IsAdmin())

	// A fresh store over the same directory restores the full session,
	// simulating an app restart.
	s2 := NewStore(p)
	s2.Initialize()
	snap := s2.Snapshot()
	require.Equal(t, StatusAuthenticated, snap.Status)
	require.Equal(t, "t", snap.Token)
	require.Equal(t, "admin", snap.Role)
	require.Equal(t, "A", snap.User.String("name"))
}

func TestStoreInitializeWithPartialRecord(t *testing.T) {
	p := newTestPersist(t)
	require.NoError(t, p.Write("t", "admin", nil))
	require.NoError(t, p.Clear())
	require.NoError(t, p.writeEntry("token", "t")) // token but no role

	s := NewStore(p)
	s.Initialize()
	require.Equal(t, StatusUnauthenticated, s.Status(),
		"a record missing either half is not a session")
}

func TestStoreInitializeSurvivesCorruptUser(t *testing.T) {
	p := newTestPersist(t)
	require.NoError(t, p.Write("t", "admin", Profile{"name": "A"}))
	require.NoError(t, p.writeEntry("user.json", "not-json"))

	s := NewStore(p)
	s.Initialize()

	snap := s.Snapshot()
	require.Equal(t, StatusAuthenticated, snap.Status, "token and role survive a bad profile")
	require.Equal(t, "t", snap.Token)
	require.Equal(t, "admin", snap.Role)
	require.Nil(t, snap.User)
}

func TestStoreInitializeIdempotent(t *testing.T) {
	p := newTestPersist(t)
	s := NewStore(p)
	s.Initialize()
	require.Equal(t, StatusUnauthenticated, s.Status())

	// A record appearing later must not flip an already-initialized
	// store; hydration happens exactly once.
	require.NoError(t, p.Write("t", "admin", nil))
	s.Initialize()
	require.Equal(t, StatusUnauthenticated, s.Status())
}

func TestStoreLogout(t *testing.T) {
	p := newTestPersist(t)
	s := NewStore(p)
	s.Initialize()
	require.NoError(t, s.Login("t", "admin", Profile{"name": "A"}))

	require.True(t, s.Logout())

	snap := s.Snapshot()
	require.Equal(t, StatusUnauthenticated, snap.Status)
	require.Empty(t, snap.Token)
	require.Empty(t, snap.Role)
	require.Nil(t, snap.User)

	// The durable record is gone too.
	rec, err := p.Read()
	require.NoError(t, err)
	require.Empty(t, rec.Token)
	require.Empty(t, rec.Role)

	// After restart the session stays gone.
	s2 := NewStore(p)
	s2.Initialize()
	require.Equal(t, StatusUnauthenticated, s2.Status())
}

func TestStoreLogoutOnlyOnce(t *testing.T) {
	s := newTestStore(t)
	s.Initialize()
	require.NoError(t, s.Login("t", "admin", nil))

	require.True(t, s.Logout())
	require.False(t, s.Logout(), "second logout finds no live session")
	require.False(t, s.Logout())
}

func TestStoreConcurrentLogoutSingleWinner(t *testing.T) {
	s := newTestStore(t)
	s.Initialize()
	require.NoError(t, s.Login("t", "admin", nil))

	// Many goroutines race to end the session; exactly one wins. This is
	// what collapses a burst of 401 responses into one redirect.
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Logout() {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, wins)
}

func TestStoreUpdateUser(t *testing.T) {
	p := newTestPersist(t)
	s := NewStore(p)
	s.Initialize()
	require.NoError(t, s.Login("t", "admin", Profile{"name": "A"}))

	s.UpdateUser(Profile{"name": "B", "email": "b@example.com"})

	snap := s.Snapshot()
	require.Equal(t, StatusAuthenticated, snap.Status)
	require.Equal(t, "t", snap.Token)
	require.Equal(t, "B", snap.User.String("name"))

	rec, err := p.Read()
	require.NoError(t, err)
	require.Equal(t, "B", rec.User.String("name"))
	require.Equal(t, "t", rec.Token, "profile update never touches the token")
}

func TestStoreAuditEvents(t *testing.T) {
	var mu sync.Mutex
	type event struct {
		name    string
		actor   string
		success bool
	}
	var events []event

	s := NewStore(newTestPersist(t), WithAudit(func(name, actor string, success bool, detail string) {
		mu.Lock()
		events = append(events, event{name, actor, success})
		mu.Unlock()
	}))
	s.Initialize()

	require.Error(t, s.Login("", "admin", nil))
	require.NoError(t, s.Login("t", "admin", Profile{"email": "root@example.com"}))
	require.True(t, s.Logout())

	// The logout event must still name who signed out, even though the
	// session is gone by the time the callback's caller returns.
	require.Equal(t, []event{
		{"AUTH_LOGIN", "unknown", false},
		{"AUTH_LOGIN", "root@example.com", true},
		{"AUTH_LOGOUT", "root@example.com", true},
	}, events)
}

func TestProfileDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    string
	}{
		{"first and last", Profile{"firstname": "Ada", "lastname": "Lovelace"}, "Ada Lovelace"},
		{"first only", Profile{"firstname": "Ada"}, "Ada"},
		{"name field", Profile{"name": "A"}, "A"},
		{"email fallback", Profile{"email": "a@example.com"}, "a@example.com"},
		{"nothing", Profile{}, ""},
		{"nil", nil, ""},
		{"non-string field ignored", Profile{"name": 42, "email": "a@b"}, "a@b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.profile.DisplayName())
		})
	}
}
