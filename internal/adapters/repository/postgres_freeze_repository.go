package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nourishlabs/consistency-engine/internal/core/domain"
)

type PostgresFreezeRepository struct {
	db *sqlx.DB
}

func NewPostgresFreezeRepository(db *sqlx.DB) *PostgresFreezeRepository {
	return &PostgresFreezeRepository{db: db}
}

func (r *PostgresFreezeRepository) ListActive(ctx context.Context, userID string) ([]domain.StreakFreeze, error) {
	// Expiry voids unspent days, never a paid bridge: rows with covered
	// days stay visible past expires_at so bridged streaks hold.
	query := `
        SELECT id, days_remaining, activated_at, expires_at, covered_days
        FROM streak_freezes
        WHERE user_id = $1
          AND (expires_at > NOW()
               OR coalesce(covered_days::text, '') NOT IN ('', 'null', '[]'))
        ORDER BY activated_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list freezes: %w", err)
	}
	defer rows.Close()

	var freezes []domain.StreakFreeze

	for rows.Next() {
		var f domain.StreakFreeze
		var coveredJSON []byte

		if err := rows.Scan(&f.ID, &f.DaysRemaining, &f.ActivatedAt, &f.ExpiresAt, &coveredJSON); err != nil {
			return nil, fmt.Errorf("freeze row scan error: %w", err)
		}

		if len(coveredJSON) > 0 {
			if err := json.Unmarshal(coveredJSON, &f.CoveredDays); err != nil {
				return nil, fmt.Errorf("failed to unmarshal covered days: %w", err)
			}
		}

		freezes = append(freezes, f)
	}

	return freezes, rows.Err()
}

// Save replaces the user's freeze set inside one transaction, so a partial
// write can never leave a half-updated ledger behind.
func (r *PostgresFreezeRepository) Save(ctx context.Context, userID string, freezes []domain.StreakFreeze) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin freeze save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM streak_freezes WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear freeze set: %w", err)
	}

	query := `
        INSERT INTO streak_freezes (id, user_id, days_remaining, activated_at, expires_at, covered_days)
        VALUES ($1, $2, $3, $4, $5, $6)`

	for _, f := range freezes {
		coveredJSON, err := json.Marshal(f.CoveredDays)
		if err != nil {
			return fmt.Errorf("failed to marshal covered days: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query,
			f.ID, userID, f.DaysRemaining, f.ActivatedAt, f.ExpiresAt, coveredJSON,
		); err != nil {
			return fmt.Errorf("failed to insert freeze %s: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit freeze save: %w", err)
	}

	return nil
}
