package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nourishlabs/consistency-engine/internal/adapters/repository"
	"github.com/nourishlabs/consistency-engine/internal/core/domain"
	"github.com/nourishlabs/consistency-engine/internal/core/services"
)

type recordingEnqueuer struct {
	mu       sync.Mutex
	squadIDs []string
}

func (e *recordingEnqueuer) Enqueue(squadID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.squadIDs = append(e.squadIDs, squadID)
}

func TestActivityService_Log(t *testing.T) {
	ctx := context.Background()
	userID := "user-activity-1"

	t.Run("Success: entry saved and squads queued for recompute", func(t *testing.T) {
		activityRepo := repository.NewInMemoryActivityRepository()
		squadRepo := repository.NewInMemorySquadRepository()
		enqueuer := &recordingEnqueuer{}
		svc := services.NewActivityService(activityRepo, squadRepo, enqueuer)

		squad, err := domain.NewSquad(userID, "Crew")
		require.NoError(t, err)
		require.NoError(t, squad.AddMember(domain.SquadMember{UserID: userID, Username: "ada"}))
		require.NoError(t, squadRepo.Create(ctx, squad))

		occurred := time.Date(2026, 8, 29, 13, 0, 0, 0, time.UTC)
		entry, err := svc.Log(ctx, userID, occurred)

		require.NoError(t, err)
		assert.Equal(t, occurred, entry.OccurredAt)
		assert.NotEmpty(t, entry.ID)

		stored, err := activityRepo.ListByUserID(ctx, userID)
		require.NoError(t, err)
		require.Len(t, stored, 1)

		assert.Equal(t, []string{squad.ID}, enqueuer.squadIDs)
	})

	t.Run("Success: zero time defaults to now", func(t *testing.T) {
		activityRepo := repository.NewInMemoryActivityRepository()
		svc := services.NewActivityService(activityRepo, repository.NewInMemorySquadRepository(), nil)

		before := time.Now().UTC()
		entry, err := svc.Log(ctx, userID, time.Time{})

		require.NoError(t, err)
		assert.False(t, entry.OccurredAt.Before(before))
	})

	t.Run("Success: squad lookup failure does not lose the entry", func(t *testing.T) {
		activityRepo := repository.NewInMemoryActivityRepository()
		squadRepo := new(MockSquadRepo)
		squadRepo.On("ListByUserID", ctx, userID).Return(nil, errors.New("db down"))

		svc := services.NewActivityService(activityRepo, squadRepo, &recordingEnqueuer{})

		entry, err := svc.Log(ctx, userID, time.Now().UTC())

		require.NoError(t, err)
		assert.NotNil(t, entry)

		stored, err := activityRepo.ListByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, stored, 1)
	})

	t.Run("Fail: future timestamp rejected", func(t *testing.T) {
		activityRepo := repository.NewInMemoryActivityRepository()
		svc := services.NewActivityService(activityRepo, repository.NewInMemorySquadRepository(), nil)

		_, err := svc.Log(ctx, userID, time.Now().UTC().Add(48*time.Hour))

		assert.ErrorIs(t, err, domain.ErrFutureOccurrence)

		stored, err := activityRepo.ListByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("Edge Case: slight clock drift folds into now", func(t *testing.T) {
		svc := services.NewActivityService(repository.NewInMemoryActivityRepository(), repository.NewInMemorySquadRepository(), nil)

		entry, err := svc.Log(ctx, userID, time.Now().UTC().Add(30*time.Second))

		require.NoError(t, err)
		assert.False(t, entry.OccurredAt.After(time.Now().UTC()))
	})

	t.Run("Fail: blank user id", func(t *testing.T) {
		svc := services.NewActivityService(repository.NewInMemoryActivityRepository(), repository.NewInMemorySquadRepository(), nil)

		_, err := svc.Log(ctx, "  ", time.Now().UTC())

		assert.ErrorIs(t, err, domain.ErrInvalidUserID)
	})
}
