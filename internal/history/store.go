// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists completed chat turns to a local SQLite database.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound = errors.New("history entry not found")
	ErrClosed   = errors.New("history store is closed")
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS turns (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	question   TEXT NOT NULL,
	answer     TEXT NOT NULL,
	status     TEXT NOT NULL,
	kb_id      TEXT NOT NULL DEFAULT '',
	kb_name    TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_turns_created ON turns(created_at DESC);
`

// =============================================================================
// ENTRY
// =============================================================================

// Statuses recorded for a turn.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Entry is one recorded chat turn.
type Entry struct {
	ID        int64
	Question  string
	Answer    string
	Status    string // StatusCompleted or StatusFailed
	KBID      string
	KBName    string
	CreatedAt time.Time
}

// =============================================================================
// STORE
// =============================================================================

// Store is a SQLite-backed turn archive. Safe for concurrent use; SQLite
// serializes writers and database/sql pools connections.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("history db pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history db schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// =============================================================================
// WRITE
// =============================================================================

// Save records a completed turn and returns its id.
func (s *Store) Save(e Entry) (int64, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO turns (question, answer, status, kb_id, kb_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Question, e.Answer, e.Status, e.KBID, e.KBName, e.CreatedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("save turn: %w", err)
	}
	return res.LastInsertId()
}

// Prune deletes all but the most recent keep entries.
func (s *Store) Prune(keep int) error {
	if s.db == nil {
		return ErrClosed
	}
	_, err := s.db.Exec(
		`DELETE FROM turns WHERE id NOT IN
		 (SELECT id FROM turns ORDER BY created_at DESC, id DESC LIMIT ?)`, keep)
	return err
}

// =============================================================================
// READ
// =============================================================================

// List returns the most recent entries, newest first.
func (s *Store) List(limit int) ([]Entry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, question, answer, status, kb_id, kb_name, created_at
		 FROM turns ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Get returns a single entry by id.
func (s *Store) Get(id int64) (*Entry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	row := s.db.QueryRow(
		`SELECT id, question, answer, status, kb_id, kb_name, created_at
		 FROM turns WHERE id = ?`, id)

	var e Entry
	var created int64
	err := row.Scan(&e.ID, &e.Question, &e.Answer, &e.Status, &e.KBID, &e.KBName, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.CreatedAt = time.Unix(created, 0)
	return &e, nil
}

// Search returns entries whose question or answer contains the query text,
// newest first.
func (s *Store) Search(query string, limit int) ([]Entry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + query + "%"
	rows, err := s.db.Query(
		`SELECT id, question, answer, status, kb_id, kb_name, created_at
		 FROM turns WHERE question LIKE ? OR answer LIKE ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Count returns the number of stored entries.
func (s *Store) Count() (int, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM turns`).Scan(&n)
	return n, err
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer, &e.Status, &e.KBID, &e.KBName, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(created, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}
