package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults and ensures the
// schema exists.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{Client: db}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

// Check-in records live in their own table so appends and deletes are
// single-row statements.
func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id             TEXT PRIMARY KEY,
		email          TEXT NOT NULL DEFAULT '',
		first_name     TEXT NOT NULL DEFAULT '',
		last_name      TEXT NOT NULL DEFAULT '',
		classification TEXT NOT NULL DEFAULT 'Freshman',
		role           TEXT NOT NULL DEFAULT 'Not a Member',
		student_id     TEXT NOT NULL DEFAULT '',
		password_hash  TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_users_email      ON users(email);
	CREATE INDEX IF NOT EXISTS idx_users_student_id ON users(student_id);
	-- Imported roster rows share emails freely; only rows that can log in
	-- (those carrying a password hash) must be unique per email.
	CREATE UNIQUE INDEX IF NOT EXISTS uq_users_login_email
		ON users(email) WHERE password_hash <> '';

	CREATE TABLE IF NOT EXISTS checkin_events (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		date       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_active  BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS checkin_records (
		id          TEXT PRIMARY KEY,
		event_id    TEXT NOT NULL REFERENCES checkin_events(id) ON DELETE CASCADE,
		user_id     TEXT NOT NULL DEFAULT '',
		cwid        TEXT NOT NULL DEFAULT '',
		name        TEXT NOT NULL,
		email       TEXT NOT NULL DEFAULT '',
		checked_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_guest    BOOLEAN NOT NULL DEFAULT FALSE,
		is_member   BOOLEAN NOT NULL DEFAULT FALSE,
		note        TEXT NOT NULL DEFAULT '',
		seq         BIGSERIAL
	);
	CREATE INDEX IF NOT EXISTS idx_checkin_records_event ON checkin_records(event_id, seq);

	CREATE TABLE IF NOT EXISTS events (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		start_at    TIMESTAMPTZ NOT NULL,
		end_at      TIMESTAMPTZ NOT NULL,
		location    TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_at);

	CREATE TABLE IF NOT EXISTS gallery (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		date        TIMESTAMPTZ NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image_url   TEXT NOT NULL DEFAULT '',
		drive_link  TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS merch (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price       DOUBLE PRECISION NOT NULL DEFAULT 0,
		image_url   TEXT NOT NULL DEFAULT '',
		sizes       TEXT NOT NULL DEFAULT '',
		stock       INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := db.Exec(schema)
	return err
}
