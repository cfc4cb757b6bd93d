package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nbtodo/nbtodo/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS todo_items (
	position    INTEGER PRIMARY KEY,
	id          TEXT NOT NULL,
	text        TEXT NOT NULL DEFAULT '',
	done        INTEGER NOT NULL DEFAULT 0,
	source      TEXT NOT NULL DEFAULT '',
	origin_path TEXT NOT NULL DEFAULT '',
	origin_cell INTEGER NOT NULL DEFAULT 0,
	origin_line INTEGER NOT NULL DEFAULT 0
);
`

// SQLite implements Provider backed by a SQLite database in WAL mode.
type SQLite struct {
	conn *sql.DB
}

var _ Provider = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// ReadItems returns the stored collection ordered by position.
func (s *SQLite) ReadItems() ([]models.Todo, error) {
	rows, err := s.conn.Query(`
		SELECT id, text, done, source, origin_path, origin_cell, origin_line
		FROM todo_items
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("storage: query items: %w", err)
	}
	defer rows.Close()

	var out []models.Todo
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Text, &t.Done, &t.Source, &t.OriginPath, &t.OriginCell, &t.OriginLine); err != nil {
			return nil, fmt.Errorf("storage: scan item: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate items: %w", err)
	}
	return out, nil
}

// WriteItems replaces the stored collection within a transaction: delete
// everything, then bulk insert in list order.
func (s *SQLite) WriteItems(items []models.Todo) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM todo_items`); err != nil {
		return fmt.Errorf("storage: clear items: %w", err)
	}

	if len(items) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO todo_items (position, id, text, done, source, origin_path, origin_cell, origin_line)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("storage: prepare insert: %w", err)
		}
		defer stmt.Close()
		for i, t := range items {
			if _, err := stmt.Exec(i, t.ID, t.Text, t.Done, t.Source, t.OriginPath, t.OriginCell, t.OriginLine); err != nil {
				return fmt.Errorf("storage: insert item: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}
