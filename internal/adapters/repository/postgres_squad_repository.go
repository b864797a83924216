package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nourishlabs/consistency-engine/internal/core/domain"
)

const pgUniqueViolation = "23505"

type PostgresSquadRepository struct {
	db *sqlx.DB
}

func NewPostgresSquadRepository(db *sqlx.DB) *PostgresSquadRepository {
	return &PostgresSquadRepository{db: db}
}

func (r *PostgresSquadRepository) Create(ctx context.Context, squad *domain.Squad) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin squad create: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO squads (id, owner_id, name, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)`

	if _, err := tx.ExecContext(ctx, query,
		squad.ID, squad.OwnerID, squad.Name, squad.CreatedAt, squad.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert squad: %w", err)
	}

	memberQuery := `
        INSERT INTO squad_members (squad_id, user_id, username, avatar_url, consistency_score, streak, joined_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, m := range squad.Members {
		if _, err := tx.ExecContext(ctx, memberQuery,
			squad.ID, m.UserID, m.Username, m.AvatarURL, m.ConsistencyScore, m.Streak, m.JoinedAt,
		); err != nil {
			return fmt.Errorf("failed to insert member %s: %w", m.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit squad create: %w", err)
	}

	return nil
}

func (r *PostgresSquadRepository) GetByID(ctx context.Context, id string) (*domain.Squad, error) {
	query := `SELECT id, owner_id, name, created_at, updated_at FROM squads WHERE id = $1`

	var squad domain.Squad
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&squad.ID, &squad.OwnerID, &squad.Name, &squad.CreatedAt, &squad.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSquadNotFound
		}
		return nil, fmt.Errorf("squad scan error: %w", err)
	}

	memberQuery := `
        SELECT user_id, username, avatar_url, consistency_score, streak, joined_at
        FROM squad_members
        WHERE squad_id = $1
        ORDER BY joined_at ASC`

	if err := r.db.SelectContext(ctx, &squad.Members, memberQuery, id); err != nil {
		return nil, fmt.Errorf("failed to load squad members: %w", err)
	}

	return &squad, nil
}

func (r *PostgresSquadRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM squads ORDER BY created_at ASC`); err != nil {
		return nil, fmt.Errorf("failed to list squad ids: %w", err)
	}
	return ids, nil
}

func (r *PostgresSquadRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Squad, error) {
	query := `
        SELECT s.id FROM squads s
        JOIN squad_members m ON m.squad_id = s.id
        WHERE m.user_id = $1
        ORDER BY m.joined_at ASC`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list squads for user: %w", err)
	}

	squads := make([]*domain.Squad, 0, len(ids))
	for _, id := range ids {
		squad, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		squads = append(squads, squad)
	}

	return squads, nil
}

// AddMember locks the squad row before counting, so concurrent joins on the
// same squad serialize and the member cap holds even when two sessions race.
// The (squad_id, user_id) unique constraint rejects duplicate joins; joins on
// different squads do not contend.
func (r *PostgresSquadRepository) AddMember(ctx context.Context, squadID string, m domain.SquadMember) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin member insert: %w", err)
	}
	defer tx.Rollback()

	var lockedID string
	err = tx.GetContext(ctx, &lockedID, `SELECT id FROM squads WHERE id = $1 FOR UPDATE`, squadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrSquadNotFound
		}
		return fmt.Errorf("failed to lock squad: %w", err)
	}

	var already bool
	if err := tx.GetContext(ctx, &already,
		`SELECT EXISTS(SELECT 1 FROM squad_members WHERE squad_id = $1 AND user_id = $2)`,
		squadID, m.UserID,
	); err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if already {
		return domain.ErrAlreadyMember
	}

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT count(*) FROM squad_members WHERE squad_id = $1`, squadID); err != nil {
		return fmt.Errorf("failed to count squad members: %w", err)
	}
	if count >= domain.MaxSquadSize {
		return domain.ErrSquadFull
	}

	query := `
        INSERT INTO squad_members (squad_id, user_id, username, avatar_url, consistency_score, streak, joined_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	if _, err := tx.ExecContext(ctx, query,
		squadID, m.UserID, m.Username, m.AvatarURL, m.ConsistencyScore, m.Streak,
	); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return domain.ErrAlreadyMember
		}
		return fmt.Errorf("failed to insert squad member: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE squads SET updated_at = NOW() WHERE id = $1`, squadID); err != nil {
		return fmt.Errorf("failed to touch squad: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit member insert: %w", err)
	}

	return nil
}

func (r *PostgresSquadRepository) RemoveMember(ctx context.Context, squadID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM squad_members WHERE squad_id = $1 AND user_id = $2`, squadID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove squad member: %w", err)
	}

	return nil
}

func (r *PostgresSquadRepository) UpdateMemberMetrics(ctx context.Context, squadID, userID string, score, streak int) error {
	query := `
        UPDATE squad_members
        SET consistency_score = $1, streak = $2
        WHERE squad_id = $3 AND user_id = $4`

	res, err := r.db.ExecContext(ctx, query, score, streak, squadID, userID)
	if err != nil {
		return fmt.Errorf("failed to update member metrics: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMemberNotFound
	}

	return nil
}

func (r *PostgresSquadRepository) ShareSquad(ctx context.Context, userA, userB string) (bool, error) {
	query := `
        SELECT EXISTS(
            SELECT 1 FROM squad_members a
            JOIN squad_members b ON a.squad_id = b.squad_id
            WHERE a.user_id = $1 AND b.user_id = $2
        )`

	var shared bool
	if err := r.db.GetContext(ctx, &shared, query, userA, userB); err != nil {
		return false, fmt.Errorf("shared squad query failed: %w", err)
	}

	return shared, nil
}
