package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// FavoriteRepository stores the presentations a user marked as favourite.
type FavoriteRepository struct {
	db *sqlx.DB
}

// NewFavoriteRepository constructs the repository.
func NewFavoriteRepository(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add marks a presentation as favourite. Adding twice is a no-op.
func (r *FavoriteRepository) Add(ctx context.Context, userID, presentationID string) error {
	const query = `INSERT INTO presentation_favorites (user_id, presentation_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, presentationID); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// Remove unmarks a presentation.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, presentationID string) error {
	const query = `DELETE FROM presentation_favorites WHERE user_id = $1 AND presentation_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, presentationID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// ListIDs returns the favourite presentation ids of a user as a set.
func (r *FavoriteRepository) ListIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	const query = `SELECT presentation_id FROM presentation_favorites WHERE user_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}
