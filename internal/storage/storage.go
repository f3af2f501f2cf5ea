// Package storage persists board snapshots: the ordered item specs of a
// named board. SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq) are
// supported through the same queries, rebound per driver by sqlx.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/livetemplate/pinboard"
)

// Drivers lists the supported database drivers.
var Drivers = []string{"sqlite", "postgres"}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS boards (
		name TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS board_items (
		board    TEXT    NOT NULL REFERENCES boards(name) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		kind     TEXT    NOT NULL,
		title    TEXT    NOT NULL,
		body     TEXT    NOT NULL,
		PRIMARY KEY (board, position)
	)`,
}

// Store reads and writes board snapshots.
type Store struct {
	db     *sqlx.DB
	driver string
}

type itemRow struct {
	Position int    `db:"position"`
	Kind     string `db:"kind"`
	Title    string `db:"title"`
	Body     string `db:"body"`
}

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to open %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// A single connection keeps writes serialized and the pragma applied.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: failed to connect: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if s.driver == "sqlite" {
		if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("storage: enable foreign keys: %w", err)
		}
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("storage: migrate: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBoard replaces the stored snapshot of board with items.
func (s *Store) SaveBoard(ctx context.Context, board string, items []pinboard.ItemSpec) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer tx.Rollback()

	upsert := s.db.Rebind(`INSERT INTO boards (name) VALUES (?) ON CONFLICT (name) DO NOTHING`)
	if _, err := tx.ExecContext(ctx, upsert, board); err != nil {
		return fmt.Errorf("storage: save board %q: %w", board, err)
	}
	if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM board_items WHERE board = ?`), board); err != nil {
		return fmt.Errorf("storage: clear board %q: %w", board, err)
	}

	insert := s.db.Rebind(`INSERT INTO board_items (board, position, kind, title, body) VALUES (?, ?, ?, ?, ?)`)
	for i, item := range items {
		if _, err := tx.ExecContext(ctx, insert, board, i, string(item.Kind), item.Title, item.Body); err != nil {
			return fmt.Errorf("storage: save item %d of %q: %w", i, board, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

// LoadBoard returns the stored snapshot of board. The boolean is false when
// the board was never saved, which distinguishes it from a saved empty board.
func (s *Store) LoadBoard(ctx context.Context, board string) ([]pinboard.ItemSpec, bool, error) {
	var name string
	err := s.db.GetContext(ctx, &name, s.db.Rebind(`SELECT name FROM boards WHERE name = ?`), board)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: load board %q: %w", board, err)
	}

	var rows []itemRow
	query := s.db.Rebind(`SELECT position, kind, title, body FROM board_items WHERE board = ? ORDER BY position`)
	if err := s.db.SelectContext(ctx, &rows, query, board); err != nil {
		return nil, false, fmt.Errorf("storage: load items of %q: %w", board, err)
	}

	items := make([]pinboard.ItemSpec, len(rows))
	for i, r := range rows {
		items[i] = pinboard.ItemSpec{Kind: pinboard.Kind(r.Kind), Title: r.Title, Body: r.Body}
	}
	return items, true, nil
}

// DeleteBoard removes the snapshot of board. Deleting a missing board is not an error.
func (s *Store) DeleteBoard(ctx context.Context, board string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM board_items WHERE board = ?`), board); err != nil {
		return fmt.Errorf("storage: delete items of %q: %w", board, err)
	}
	if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM boards WHERE name = ?`), board); err != nil {
		return fmt.Errorf("storage: delete board %q: %w", board, err)
	}
	return tx.Commit()
}
