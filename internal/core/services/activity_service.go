package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nourishlabs/consistency-engine/internal/core/domain"
)

// RecomputeEnqueuer schedules a squad metrics refresh without blocking the
// request path.
type RecomputeEnqueuer interface {
	Enqueue(squadID string)
}

type ActivityService struct {
	activityRepo domain.ActivityLogRepository
	squadRepo    domain.SquadRepository
	enqueuer     RecomputeEnqueuer
}

func NewActivityService(activityRepo domain.ActivityLogRepository, squadRepo domain.SquadRepository, enqueuer RecomputeEnqueuer) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		squadRepo:    squadRepo,
		enqueuer:     enqueuer,
	}
}

// Log records a trackable action and queues a recompute for each squad the
// user belongs to, so squad leaderboards pick the change up shortly after.
func (s *ActivityService) Log(ctx context.Context, userID string, occurredAt time.Time) (*domain.ActivityLogEntry, error) {
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	entry, err := domain.NewActivityLogEntry(userID, occurredAt)
	if err != nil {
		return nil, err
	}

	if err := s.activityRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("activity: saving entry: %w", err)
	}

	if s.enqueuer != nil {
		squads, err := s.squadRepo.ListByUserID(ctx, userID)
		if err != nil {
			// The entry is saved; a missed refresh is repaired by the nightly run.
			log.Printf("activity: listing squads for %s failed: %v", userID, err)
			return entry, nil
		}
		for _, sq := range squads {
			s.enqueuer.Enqueue(sq.ID)
		}
	}

	return entry, nil
}
