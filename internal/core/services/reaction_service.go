package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nourishlabs/consistency-engine/internal/core/domain"
)

type ReactionService struct {
	reactionRepo domain.ReactionRepository
	squadRepo    domain.SquadRepository
}

func NewReactionService(reactionRepo domain.ReactionRepository, squadRepo domain.SquadRepository) *ReactionService {
	return &ReactionService{
		reactionRepo: reactionRepo,
		squadRepo:    squadRepo,
	}
}

type ReactInput struct {
	UserID       string
	TargetUserID string
	TargetID     string
	Type         string
	Context      string
}

type ReactOutcome string

const (
	ReactionAdded    ReactOutcome = "added"
	ReactionReplaced ReactOutcome = "replaced"
	ReactionRemoved  ReactOutcome = "removed"
)

type ReactResult struct {
	Outcome  ReactOutcome     `json:"outcome"`
	Reaction *domain.Reaction `json:"reaction,omitempty"`
}

// AreInSameSquad reports whether the two users share at least one squad.
func (s *ReactionService) AreInSameSquad(ctx context.Context, userA, userB string) (bool, error) {
	return s.squadRepo.ShareSquad(ctx, userA, userB)
}

// React applies the single-reaction-per-target rule: a repeat of the same type
// toggles the reaction off, a different type replaces the existing one in
// place, anything else inserts fresh. Squad membership gates every path.
func (s *ReactionService) React(ctx context.Context, input ReactInput) (*ReactResult, error) {
	reaction, err := domain.NewReaction(input.UserID, input.TargetUserID, input.TargetID, input.Type, input.Context)
	if err != nil {
		return nil, err
	}

	shared, err := s.squadRepo.ShareSquad(ctx, input.UserID, input.TargetUserID)
	if err != nil {
		return nil, fmt.Errorf("reaction: membership check: %w", err)
	}
	if !shared {
		return nil, domain.ErrNotSquadMember
	}

	existing, err := s.reactionRepo.GetByUserAndTarget(ctx, input.UserID, input.TargetID)
	if err != nil && !errors.Is(err, domain.ErrReactionNotFound) {
		return nil, fmt.Errorf("reaction: lookup: %w", err)
	}

	if existing != nil && existing.Type == input.Type {
		if err := s.reactionRepo.Delete(ctx, input.UserID, input.TargetID); err != nil {
			return nil, fmt.Errorf("reaction: toggling off: %w", err)
		}
		return &ReactResult{Outcome: ReactionRemoved}, nil
	}

	outcome := ReactionAdded
	if existing != nil {
		// Keep the original row identity; only type, context and time move.
		reaction.ID = existing.ID
		outcome = ReactionReplaced
	}
	reaction.CreatedAt = time.Now().UTC()

	if err := s.reactionRepo.Upsert(ctx, reaction); err != nil {
		return nil, fmt.Errorf("reaction: saving: %w", err)
	}

	return &ReactResult{Outcome: outcome, Reaction: reaction}, nil
}

// ReactionsFor lists reactions on a target, most recent first.
func (s *ReactionService) ReactionsFor(ctx context.Context, targetID string) ([]domain.Reaction, error) {
	reactions, err := s.reactionRepo.ListByTargetID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("reaction: listing for target %s: %w", targetID, err)
	}
	if reactions == nil {
		reactions = []domain.Reaction{}
	}
	return reactions, nil
}
