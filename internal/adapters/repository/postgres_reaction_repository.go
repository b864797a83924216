package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nourishlabs/consistency-engine/internal/core/domain"
)

type PostgresReactionRepository struct {
	db *sqlx.DB
}

func NewPostgresReactionRepository(db *sqlx.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

func (r *PostgresReactionRepository) GetByUserAndTarget(ctx context.Context, userID, targetID string) (*domain.Reaction, error) {
	query := `
        SELECT id, user_id, target_user_id, target_id, type, context, created_at
        FROM reactions
        WHERE user_id = $1 AND target_id = $2`

	var reaction domain.Reaction
	err := r.db.GetContext(ctx, &reaction, query, userID, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReactionNotFound
		}
		return nil, fmt.Errorf("reaction lookup failed: %w", err)
	}

	return &reaction, nil
}

// Upsert relies on the unique (user_id, target_id) index: a concurrent second
// reaction to the same target lands as an update of the same row, never a
// duplicate.
func (r *PostgresReactionRepository) Upsert(ctx context.Context, reaction *domain.Reaction) error {
	query := `
        INSERT INTO reactions (id, user_id, target_user_id, target_id, type, context, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (user_id, target_id)
        DO UPDATE SET type = EXCLUDED.type, context = EXCLUDED.context, created_at = EXCLUDED.created_at`

	_, err := r.db.ExecContext(ctx, query,
		reaction.ID, reaction.UserID, reaction.TargetUserID, reaction.TargetID,
		reaction.Type, reaction.Context, reaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert reaction: %w", err)
	}

	return nil
}

func (r *PostgresReactionRepository) Delete(ctx context.Context, userID, targetID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM reactions WHERE user_id = $1 AND target_id = $2`, userID, targetID)
	if err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}

	return nil
}

func (r *PostgresReactionRepository) ListByTargetID(ctx context.Context, targetID string) ([]domain.Reaction, error) {
	query := `
        SELECT id, user_id, target_user_id, target_id, type, context, created_at
        FROM reactions
        WHERE target_id = $1
        ORDER BY created_at DESC`

	var reactions []domain.Reaction
	if err := r.db.SelectContext(ctx, &reactions, query, targetID); err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}

	return reactions, nil
}
