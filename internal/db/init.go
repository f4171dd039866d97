// Package db initializes the PostgreSQL connection and schema.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    age_range TEXT NOT NULL DEFAULT '',
    menstrual_status TEXT NOT NULL DEFAULT '',
    primary_symptoms TEXT[] NOT NULL DEFAULT '{}',
    onboarding_completed BOOLEAN NOT NULL DEFAULT FALSE,
    google_refresh_token TEXT,
    google_token_created_at TIMESTAMPTZ,
    calendar_id TEXT,
    calendar_sync_enabled BOOLEAN NOT NULL DEFAULT FALSE,
    calendar_last_sync TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS symptom_logs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    date TEXT NOT NULL,
    symptoms JSONB NOT NULL DEFAULT '[]',
    overall_notes TEXT,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    UNIQUE (user_id, date)
);

CREATE TABLE IF NOT EXISTS articles (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    url TEXT NOT NULL UNIQUE,
    summary TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT 'Essential',
    image_url TEXT,
    published_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_symptom_logs_user_date ON symptom_logs (user_id, date);
CREATE INDEX IF NOT EXISTS idx_articles_category ON articles (category, published_at DESC);
`

// InitPostgres opens the database, verifies connectivity, and applies
// the schema.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
