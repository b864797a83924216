package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nourishlabs/consistency-engine/internal/core/domain"
)

func TestPostgresActivityRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cleanup(t, db)
	defer cleanup(t, db)

	repo := NewPostgresActivityRepository(db)
	ctx := context.Background()

	userID := "act-user-1"
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("Create assigns an ID", func(t *testing.T) {
		entry := &domain.ActivityLogEntry{
			UserID:     userID,
			OccurredAt: now,
			CreatedAt:  now,
		}

		require.NoError(t, repo.Create(ctx, entry))
		assert.NotEmpty(t, entry.ID)
	})

	t.Run("List By UserID is newest first", func(t *testing.T) {
		older := &domain.ActivityLogEntry{
			UserID:     userID,
			OccurredAt: now.AddDate(0, 0, -2),
			CreatedAt:  now,
		}
		require.NoError(t, repo.Create(ctx, older))

		entries, err := repo.ListByUserID(ctx, userID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.True(t, entries[0].OccurredAt.After(entries[1].OccurredAt))
	})

	t.Run("Count Between is half-open", func(t *testing.T) {
		count, err := repo.CountBetween(ctx, userID, now.AddDate(0, 0, -1), now.Add(time.Second))
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		// Upper bound excluded: the entry at `now` falls outside [from, now).
		count, err = repo.CountBetween(ctx, userID, now.AddDate(0, 0, -1), now)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("Unknown user has no entries", func(t *testing.T) {
		entries, err := repo.ListByUserID(ctx, "act-nobody")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
