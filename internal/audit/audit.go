// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audit persists auth lifecycle events to a local SQLite
// database so operators can review console access after the fact.
package audit

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/opsdeck-tui/internal/util"
)

// MaxDetailLength is the maximum length of a detail string to record
// before truncation.
const MaxDetailLength = 200

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at INTEGER NOT NULL,  -- Unix timestamp
    event_type TEXT NOT NULL,
    actor TEXT NOT NULL,
    success INTEGER NOT NULL,
    detail TEXT
);

CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type);
`

// =============================================================================
// EVENTS
// =============================================================================

// Event is one recorded auth lifecycle event.
type Event struct {
	Time    time.Time
	Type    string
	Actor   string
	Success bool
	Detail  string
}

// String formats the event as a single review line.
func (e Event) String() string {
	status := "SUCCESS"
	if !e.Success {
		status = "FAILURE"
	}
	line := fmt.Sprintf("%s | %-20s | %s | %s",
		e.Time.Format("2006-01-02 15:04:05"), e.Type, e.Actor, status)
	if e.Detail != "" {
		line += " | " + e.Detail
	}
	return line
}

// =============================================================================
// STORE
// =============================================================================

// Store is the SQLite-backed audit log.
//
// RELIABILITY: Recording is best-effort. The console must stay usable
// when the audit database is unwritable, so Record logs failures and
// moves on instead of propagating them.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// DefaultDatabasePath returns the default audit database location.
func DefaultDatabasePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".opsdeck", "audit.db"), nil
}

// Open opens (creating if needed) the audit database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends one event. Failures are logged, never returned.
func (s *Store) Record(eventType, actor string, success bool, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO events (created_at, event_type, actor, success, detail) VALUES (?, ?, ?, ?, ?)`,
		time.Now().Unix(), eventType, actor, boolToInt(success),
		util.TruncateRunes(detail, MaxDetailLength),
	)
	if err != nil {
		log.Printf("audit: record failed: %v", err)
	}
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT created_at, event_type, actor, success, detail
		 FROM events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var ts int64
		var success int
		if err := rows.Scan(&ts, &e.Type, &e.Actor, &success, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Time = time.Unix(ts, 0)
		e.Success = success != 0
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
