package database

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// schema is idempotent; statements run in order on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS presentation_snapshots (
		presentation_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		dominant_emotion TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		transcript TEXT NOT NULL DEFAULT '',
		emotion_probabilities JSONB,
		duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
		sample_rate INTEGER NOT NULL DEFAULT 0,
		language TEXT NOT NULL DEFAULT '',
		analysed_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_presentation_snapshots_user ON presentation_snapshots (user_id, analysed_at)`,
	`CREATE TABLE IF NOT EXISTS presentation_favorites (
		user_id TEXT NOT NULL,
		presentation_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, presentation_id)
	)`,
	`CREATE TABLE IF NOT EXISTS export_jobs (
		id TEXT PRIMARY KEY,
		format TEXT NOT NULL,
		params JSONB NOT NULL,
		status TEXT NOT NULL,
		progress INTEGER NOT NULL DEFAULT 0,
		result_url TEXT,
		error_message TEXT,
		created_by TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_export_jobs_status ON export_jobs (status, finished_at)`,
}

// Migrate creates the service tables when they do not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
