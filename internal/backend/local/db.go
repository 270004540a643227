// Package local implements the task store and auth provider on a SQLite file,
// so the client works without any remote service.
package local

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// openDB opens the SQLite file at path, creating parent directories and the
// schema as needed.
func openDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode so a watcher in another process can read while we write
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return db, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tasks (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT NOT NULL UNIQUE,
			owner_id    TEXT NOT NULL,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			deadline    INTEGER NOT NULL,
			completed   INTEGER NOT NULL DEFAULT 0,
			priority    TEXT NOT NULL,
			created_at  TEXT NOT NULL,

			CHECK (priority IN ('High', 'Medium', 'Low'))
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_owner ON tasks(owner_id, seq);

		CREATE TABLE IF NOT EXISTS password_resets (
			token      TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS revision (
			id    INTEGER PRIMARY KEY CHECK (id = 1),
			value INTEGER NOT NULL
		);

		INSERT OR IGNORE INTO revision (id, value) VALUES (1, 0);
	`
	_, err := db.Exec(schema)
	return err
}

// bumpRevision marks the task collection as changed inside tx.
func bumpRevision(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `UPDATE revision SET value = value + 1 WHERE id = 1`)
	return err
}

func currentRevision(ctx context.Context, db *sql.DB) (int64, error) {
	var rev int64
	err := db.QueryRowContext(ctx, `SELECT value FROM revision WHERE id = 1`).Scan(&rev)
	return rev, err
}
