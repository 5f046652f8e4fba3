// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"sync"
)

// AdminRole is the only role authorized to use the console.
const AdminRole = "admin"

// Typed login failures. These are returned, never panicked, and the UI
// maps them to inline messages on the login form.
var (
	// ErrMissingToken indicates login was attempted without a token.
	ErrMissingToken = errors.New("missing token")

	// ErrMissingRole indicates login was attempted without a role.
	ErrMissingRole = errors.New("missing role")

	// ErrUnauthorizedRole indicates the role is not permitted to use
	// the console.
	ErrUnauthorizedRole = errors.New("role is not authorized")
)

// Status is the session lifecycle state. It is modeled as an explicit
// three-state machine so view guards can distinguish "still hydrating
// from storage" from "definitely signed out" and never flash the login
// view at an already-authenticated user.
type Status int

const (
	// StatusInitializing is the state before the first hydration from
	// the persisted record has completed.
	StatusInitializing Status = iota

	// StatusUnauthenticated means there is no valid session.
	StatusUnauthenticated

	// StatusAuthenticated means token and role are both present.
	StatusAuthenticated
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is an immutable snapshot of the store's state.
type Session struct {
	Status Status
	Token  string
	Role   string
	User   Profile
}

// IsAuthenticated reports whether both token and role are present.
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.Role != ""
}

// IsAdmin reports whether the session role is the admin role.
func (s Session) IsAdmin() bool {
	return s.Role == AdminRole
}

// Store is the in-memory session state machine. It owns every mutation
// of the persisted record: login, logout, profile updates, and the
// forced logout triggered by the HTTP client's 401 handling all go
// through here, so memory and storage cannot diverge.
//
// SECURITY: State is protected by a mutex; snapshots are taken under
// RLock and returned by value.
type Store struct {
	mu      sync.RWMutex
	persist *PersistedStore

	status Status
	token  string
	role   string
	user   Profile

	initialized bool

	// audit, when set, receives auth lifecycle events.
	audit func(event, actor string, success bool, detail string)
}

// StoreOption is a functional option for configuring Store.
type StoreOption func(*Store)

// WithAudit sets the audit callback for auth lifecycle events. The
// actor is the session's profile email, or "unknown" when no profile
// is loaded.
func WithAudit(fn func(event, actor string, success bool, detail string)) StoreOption {
	return func(s *Store) {
		s.audit = fn
	}
}

// NewStore creates a session store backed by the given persisted store.
// The store starts in StatusInitializing; call Initialize once at
// startup to hydrate.
func NewStore(persist *PersistedStore, opts ...StoreOption) *Store {
	s := &Store{
		persist: persist,
		status:  StatusInitializing,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize hydrates the store from the persisted record. It runs its
// body at most once; every call guarantees the store has left
// StatusInitializing by the time it returns. Storage failures degrade
// to an unauthenticated session.
func (s *Store) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return
	}
	s.initialized = true

	rec, _ := s.persist.Read()
	if rec.Token != "" && rec.Role != "" {
		s.token = rec.Token
		s.role = rec.Role
		s.user = rec.User
		s.status = StatusAuthenticated
		return
	}
	s.status = StatusUnauthenticated
}

// Login validates and installs a new session. It performs no network
// call; credential verification against the backend happens upstream in
// the login flow, and Login only consumes the result.
func (s *Store) Login(token, role string, user Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		s.logEvent("AUTH_LOGIN", false, "missing token")
		return ErrMissingToken
	}
	if role == "" {
		s.logEvent("AUTH_LOGIN", false, "missing role")
		return ErrMissingRole
	}
	if role != AdminRole {
		s.logEvent("AUTH_LOGIN", false, "unauthorized role: "+role)
		return ErrUnauthorizedRole
	}

	// Persist first; a storage failure is logged inside the persisted
	// store and must not fail the login.
	s.persist.Write(token, role, user)

	s.token = token
	s.role = role
	s.user = user
	s.status = StatusAuthenticated
	s.logEvent("AUTH_LOGIN", true, "")
	return nil
}

// Logout ends the session: clears the persisted record and moves to
// StatusUnauthenticated. It reports whether a live session was actually
// ended, which lets concurrent forced-logout attempts collapse into a
// single teardown. Logout never navigates; callers redirect afterwards.
func (s *Store) Logout() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusAuthenticated {
		return false
	}

	s.persist.Clear()
	// Log before the in-memory teardown so the event still names who
	// signed out.
	s.logEvent("AUTH_LOGOUT", true, "")
	s.token = ""
	s.role = ""
	s.user = nil
	s.status = StatusUnauthenticated
	return true
}

// UpdateUser overwrites only the user profile, in memory and in the
// persisted user entry. Token, role, and status are untouched. Failures
// are logged, never surfaced.
func (s *Store) UpdateUser(user Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user
	s.persist.WriteUser(user)
	s.logEvent("AUTH_PROFILE_UPDATE", true, "")
}

// Snapshot returns a copy of the current session state.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{
		Status: s.status,
		Token:  s.token,
		Role:   s.role,
		User:   s.user,
	}
}

// Status returns the current lifecycle state.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// IsAuthenticated reports whether both token and role are present.
func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

// IsAdmin reports whether the session role is the admin role.
func (s *Store) IsAdmin() bool {
	return s.Snapshot().IsAdmin()
}

// User returns the current profile.
func (s *Store) User() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// logEvent forwards an auth lifecycle event to the audit sink, if any.
// Must be called with the store lock held; the actor comes from the
// in-memory profile, never from storage.
func (s *Store) logEvent(event string, success bool, detail string) {
	if s.audit == nil {
		return
	}
	actor := s.user.Email()
	if actor == "" {
		actor = "unknown"
	}
	s.audit(event, actor, success, detail)
}
