package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/nourishlabs/consistency-engine/internal/core/domain"
)

type SquadService struct {
	squadRepo domain.SquadRepository
	metrics   *MetricsService
}

func NewSquadService(squadRepo domain.SquadRepository, metrics *MetricsService) *SquadService {
	return &SquadService{
		squadRepo: squadRepo,
		metrics:   metrics,
	}
}

type JoinSquadInput struct {
	SquadID   string
	UserID    string
	Username  string
	AvatarURL *string
}

type SquadLeaderboard struct {
	SquadID    string               `json:"squad_id"`
	Name       string               `json:"name"`
	Members    []domain.SquadMember `json:"members"`
	CallerRank *int                 `json:"caller_rank,omitempty"`
}

// Create starts a new squad with the owner as its first member, seeded with
// the owner's freshly computed metrics.
func (s *SquadService) Create(ctx context.Context, ownerID, ownerName, squadName string, avatarURL *string) (*domain.Squad, error) {
	squad, err := domain.NewSquad(ownerID, squadName)
	if err != nil {
		return nil, err
	}

	member, err := s.buildMember(ctx, ownerID, ownerName, avatarURL)
	if err != nil {
		return nil, err
	}

	if err := squad.AddMember(*member); err != nil {
		return nil, err
	}

	if err := s.squadRepo.Create(ctx, squad); err != nil {
		return nil, fmt.Errorf("squad: creating squad: %w", err)
	}

	return squad, nil
}

// Join adds the user to the squad. The capacity and uniqueness invariants are
// enforced again inside the repository write; the in-memory pre-check only
// gives callers a fast answer.
func (s *SquadService) Join(ctx context.Context, input JoinSquadInput) (*domain.Squad, error) {
	squad, err := s.squadRepo.GetByID(ctx, input.SquadID)
	if err != nil {
		return nil, err
	}

	if err := squad.CanJoin(input.UserID); err != nil {
		return nil, err
	}

	member, err := s.buildMember(ctx, input.UserID, input.Username, input.AvatarURL)
	if err != nil {
		return nil, err
	}

	if err := s.squadRepo.AddMember(ctx, input.SquadID, *member); err != nil {
		return nil, err
	}

	return s.squadRepo.GetByID(ctx, input.SquadID)
}

func (s *SquadService) Leave(ctx context.Context, squadID, userID string) error {
	return s.squadRepo.RemoveMember(ctx, squadID, userID)
}

// Leaderboard returns the squad's members ranked by score, with the caller's
// own 1-based rank when they are a member.
func (s *SquadService) Leaderboard(ctx context.Context, squadID, callerID string) (*SquadLeaderboard, error) {
	squad, err := s.squadRepo.GetByID(ctx, squadID)
	if err != nil {
		return nil, err
	}

	board := &SquadLeaderboard{
		SquadID: squad.ID,
		Name:    squad.Name,
		Members: squad.RankedMembers(),
	}

	if rank, err := squad.Rank(callerID); err == nil {
		board.CallerRank = &rank
	}

	return board, nil
}

// RecomputeAll refreshes every member's stored score and streak. Members are
// recomputed in parallel; each write lands on its own (squad_id, user_id) row,
// so a member removed mid-run stays removed and one added mid-run keeps the
// metrics it joined with until the next pass.
func (s *SquadService) RecomputeAll(ctx context.Context, squadID string) error {
	squad, err := s.squadRepo.GetByID(ctx, squadID)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, m := range squad.Members {
		wg.Add(1)
		go func(member domain.SquadMember) {
			defer wg.Done()

			metrics, err := s.metrics.ComputeMetrics(ctx, member.UserID)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("squad: recomputing member %s: %w", member.UserID, err)
				}
				mu.Unlock()
				return
			}

			err = s.squadRepo.UpdateMemberMetrics(ctx, squadID, member.UserID, metrics.ConsistencyScore, metrics.CurrentStreak)
			if errors.Is(err, domain.ErrMemberNotFound) {
				// Left the squad while we were computing. Nothing to write.
				return
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("squad: writing metrics for %s: %w", member.UserID, err)
				}
				mu.Unlock()
			}
		}(m)
	}

	wg.Wait()

	if firstErr != nil {
		log.Printf("squad %s recompute finished with error: %v", squadID, firstErr)
	}
	return firstErr
}

func (s *SquadService) buildMember(ctx context.Context, userID, username string, avatarURL *string) (*domain.SquadMember, error) {
	metrics, err := s.metrics.ComputeMetrics(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.SquadMember{
		UserID:           userID,
		Username:         username,
		AvatarURL:        avatarURL,
		ConsistencyScore: metrics.ConsistencyScore,
		Streak:           metrics.CurrentStreak,
	}, nil
}
