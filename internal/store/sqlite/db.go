package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database with the given DSN. Foreign keys are enabled
// through the DSN so every pooled connection gets the pragma, not just the
// first one.
func Open(dsn string) (*sql.DB, error) {
	if !strings.Contains(dsn, "_pragma") {
		if !strings.HasPrefix(dsn, "file:") {
			dsn = "file:" + dsn
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL for the messagely schema.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			username      TEXT PRIMARY KEY,
			password      TEXT NOT NULL,
			first_name    TEXT NOT NULL,
			last_name     TEXT NOT NULL,
			phone         TEXT NOT NULL,
			join_at       DATETIME NOT NULL,
			last_login_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id            INTEGER PRIMARY KEY,
			from_username TEXT NOT NULL REFERENCES users(username),
			to_username   TEXT NOT NULL REFERENCES users(username),
			body          TEXT NOT NULL,
			sent_at       DATETIME NOT NULL,
			read_at       DATETIME DEFAULT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_from ON messages(from_username);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_to ON messages(to_username);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sent_at ON messages(sent_at DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
