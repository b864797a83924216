package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nourishlabs/consistency-engine/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresActivityRepository struct {
	db *sqlx.DB
}

func NewPostgresActivityRepository(db *sqlx.DB) *PostgresActivityRepository {
	return &PostgresActivityRepository{db: db}
}

func (r *PostgresActivityRepository) Create(ctx context.Context, entry *domain.ActivityLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
        INSERT INTO activity_log (id, user_id, occurred_at, created_at)
        VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.OccurredAt, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity entry: %w", err)
	}

	return nil
}

func (r *PostgresActivityRepository) ListByUserID(ctx context.Context, userID string) ([]domain.ActivityLogEntry, error) {
	query := `
        SELECT id, user_id, occurred_at, created_at
        FROM activity_log
        WHERE user_id = $1
        ORDER BY occurred_at DESC`

	var entries []domain.ActivityLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list activity entries: %w", err)
	}

	return entries, nil
}

func (r *PostgresActivityRepository) CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	query := `
        SELECT count(*) FROM activity_log
        WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at < $3`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, from, to); err != nil {
		return 0, fmt.Errorf("failed to count activity entries: %w", err)
	}

	return count, nil
}
