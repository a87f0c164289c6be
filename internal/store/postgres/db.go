package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL for the messagely schema on PostgreSQL.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			username      VARCHAR(50)  PRIMARY KEY,
			password      VARCHAR(255) NOT NULL,
			first_name    VARCHAR(50)  NOT NULL,
			last_name     VARCHAR(50)  NOT NULL,
			phone         VARCHAR(30)  NOT NULL,
			join_at       TIMESTAMPTZ  NOT NULL,
			last_login_at TIMESTAMPTZ  NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id            BIGSERIAL    PRIMARY KEY,
			from_username VARCHAR(50)  NOT NULL REFERENCES users(username),
			to_username   VARCHAR(50)  NOT NULL REFERENCES users(username),
			body          TEXT         NOT NULL,
			sent_at       TIMESTAMPTZ  NOT NULL,
			read_at       TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_from ON messages(from_username)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_to ON messages(to_username)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sent_at ON messages(sent_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
