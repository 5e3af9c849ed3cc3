// Package history records past generation runs in a local SQLite
// database so users can see what was generated, when, and for whom.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Run is one completed card generation run.
type Run struct {
	ID        string
	CSVPath   string
	OutputDir string
	Cards     int
	Contacts  int
	Skipped   int
	CreatedAt time.Time
}

// Card is one generated card within a run.
type Card struct {
	RunID    string
	Callsign string
	Filename string
	Contacts int
}

// Store handles the history database.
type Store struct {
	db *sql.DB
}

// Open opens (and initializes) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores a run and its cards in one transaction.
func (s *Store) RecordRun(run Run, cards []Card) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO runs (id, csv_path, output_dir, cards, contacts, skipped, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.CSVPath, run.OutputDir, run.Cards, run.Contacts, run.Skipped, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, c := range cards {
		_, err = tx.Exec(
			"INSERT INTO cards (run_id, callsign, filename, contacts) VALUES (?, ?, ?, ?)",
			run.ID, c.Callsign, c.Filename, c.Contacts,
		)
		if err != nil {
			return fmt.Errorf("insert card: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		"SELECT id, csv_path, output_dir, cards, contacts, skipped, created_at FROM runs ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.CSVPath, &r.OutputDir, &r.Cards, &r.Contacts, &r.Skipped, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// ListCards returns the cards generated in one run.
func (s *Store) ListCards(runID string) ([]Card, error) {
	rows, err := s.db.Query(
		"SELECT run_id, callsign, filename, contacts FROM cards WHERE run_id = ?",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.RunID, &c.Callsign, &c.Filename, &c.Contacts); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}

	return cards, rows.Err()
}
