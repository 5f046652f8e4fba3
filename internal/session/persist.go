// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/opsdeck-tui/internal/util"
)

// The persisted session record is three independent entries under the
// state directory. They are written one at a time, each atomically, but
// not as a group; Read tolerates any combination of missing or damaged
// entries.
const (
	tokenEntry = "token"
	roleEntry  = "role"
	userEntry  = "user.json"
)

// Record is the durable, reload-surviving copy of the session.
type Record struct {
	Token string
	Role  string
	User  Profile
}

// PersistedStore reads and writes the durable session record. Every
// method honors a never-fail contract: storage problems are logged and
// reported through the secondary error value, never raised, and always
// degrade to "no session found".
type PersistedStore struct {
	dir string
}

// NewPersistedStore creates a store rooted at dir.
func NewPersistedStore(dir string) *PersistedStore {
	return &PersistedStore{dir: dir}
}

// DefaultStateDir returns the default session state directory.
func DefaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".opsdeck", "session"), nil
}

// Dir returns the state directory backing this store.
func (s *PersistedStore) Dir() string {
	return s.dir
}

// Read loads the persisted record. Missing entries are simply absent
// from the result. A user entry that fails to parse as JSON is deleted
// and reported as nil. The returned error is informational only - it is
// non-nil when the underlying storage misbehaved (as opposed to holding
// no session) - and the Record is always usable regardless.
func (s *PersistedStore) Read() (Record, error) {
	var rec Record
	var errs []error

	token, err := s.readEntry(tokenEntry)
	if err != nil {
		errs = append(errs, err)
	}
	rec.Token = token

	role, err := s.readEntry(roleEntry)
	if err != nil {
		errs = append(errs, err)
	}
	rec.Role = role

	raw, err := s.readEntry(userEntry)
	if err != nil {
		errs = append(errs, err)
	}
	if raw != "" {
		var user Profile
		if jsonErr := json.Unmarshal([]byte(raw), &user); jsonErr != nil {
			// Damaged profile entry: drop it, keep token and role.
			log.Printf("session: discarding unparseable user entry: %v", jsonErr)
			s.removeEntry(userEntry)
		} else {
			rec.User = user
		}
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		log.Printf("session: persisted store read degraded: %v", err)
		return rec, err
	}
	return rec, nil
}

// Write persists all three entries. The user profile is JSON-encoded.
// Failures are logged and returned for callers that care; a partial
// write leaves whichever entries did succeed.
func (s *PersistedStore) Write(token, role string, user Profile) error {
	var errs []error
	if err := s.writeEntry(tokenEntry, token); err != nil {
		errs = append(errs, err)
	}
	if err := s.writeEntry(roleEntry, role); err != nil {
		errs = append(errs, err)
	}
	if err := s.WriteUser(user); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		log.Printf("session: persisted store write failed: %v", err)
		return err
	}
	return nil
}

// WriteUser rewrites only the user entry, leaving token and role alone.
func (s *PersistedStore) WriteUser(user Profile) error {
	if user == nil {
		s.removeEntry(userEntry)
		return nil
	}
	data, err := json.Marshal(user)
	if err != nil {
		log.Printf("session: could not encode user profile: %v", err)
		return err
	}
	return s.writeEntry(userEntry, string(data))
}

// Clear deletes all three entries. Missing entries are not an error.
func (s *PersistedStore) Clear() error {
	var errs []error
	for _, name := range []string{tokenEntry, roleEntry, userEntry} {
		if err := s.removeEntry(name); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		log.Printf("session: persisted store clear failed: %v", err)
		return err
	}
	return nil
}

// Token reads the current bearer token straight from storage. This is
// the api.TokenSource implementation: the outgoing request header always
// reflects the durable record, not any in-memory copy.
func (s *PersistedStore) Token() string {
	token, err := s.readEntry(tokenEntry)
	if err != nil {
		log.Printf("session: token read failed: %v", err)
		return ""
	}
	return token
}

func (s *PersistedStore) entryPath(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *PersistedStore) readEntry(name string) (string, error) {
	data, err := os.ReadFile(s.entryPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func (s *PersistedStore) writeEntry(name, value string) error {
	// SECURITY: Session entries are 0600 (owner read/write only).
	if err := util.AtomicWriteFile(s.entryPath(name), []byte(value), 0600); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *PersistedStore) removeEntry(name string) error {
	if err := os.Remove(s.entryPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
