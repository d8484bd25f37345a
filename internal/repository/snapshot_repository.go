package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/oratoria-api/internal/models"
)

const snapshotColumns = `presentation_id, user_id, filename, dominant_emotion, confidence, transcript, emotion_probabilities, duration_seconds, sample_rate, language, analysed_at`

// SnapshotRepository persists analysed presentation details. Details never
// change once analysed, so a stored snapshot replaces the upstream call.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs the repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// GetMany returns the snapshots of userID among ids, keyed by presentation id.
func (r *SnapshotRepository) GetMany(ctx context.Context, userID string, ids []string) (map[string]models.PresentationSnapshot, error) {
	out := make(map[string]models.PresentationSnapshot, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+snapshotColumns+` FROM presentation_snapshots WHERE user_id = ? AND presentation_id IN (?)`, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("build snapshot query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []models.PresentationSnapshot
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	for _, row := range rows {
		out[row.PresentationID] = row
	}
	return out, nil
}

// Upsert stores or refreshes a snapshot.
func (r *SnapshotRepository) Upsert(ctx context.Context, snap models.PresentationSnapshot) error {
	const query = `INSERT INTO presentation_snapshots (` + snapshotColumns + `)
VALUES (:presentation_id, :user_id, :filename, :dominant_emotion, :confidence, :transcript, :emotion_probabilities, :duration_seconds, :sample_rate, :language, :analysed_at)
ON CONFLICT (presentation_id) DO UPDATE SET transcript = EXCLUDED.transcript, emotion_probabilities = EXCLUDED.emotion_probabilities`
	if _, err := r.db.NamedExecContext(ctx, query, snap); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}
