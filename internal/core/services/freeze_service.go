package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nourishlabs/consistency-engine/internal/core/domain"
)

type FreezeService struct {
	freezeRepo domain.FreezeRepository
}

func NewFreezeService(freezeRepo domain.FreezeRepository) *FreezeService {
	return &FreezeService{
		freezeRepo: freezeRepo,
	}
}

type FreezeBalance struct {
	Freezes       []domain.StreakFreeze `json:"freezes"`
	RemainingDays int                   `json:"remaining_days"`
}

// Activate adds a new freeze to the user's ledger. The whole set is saved in
// one shot; a storage failure leaves the previous set untouched.
func (s *FreezeService) Activate(ctx context.Context, userID string, days int) (*domain.StreakFreeze, error) {
	now := time.Now().UTC()

	freeze, err := domain.NewStreakFreeze(days, now)
	if err != nil {
		return nil, err
	}

	current, err := s.freezeRepo.ListActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("freeze: loading ledger: %w", err)
	}

	updated := append(domain.PruneFreezes(current, now), *freeze)

	if err := s.freezeRepo.Save(ctx, userID, updated); err != nil {
		return nil, fmt.Errorf("freeze: saving ledger: %w", err)
	}

	return freeze, nil
}

// Balance returns the user's active freezes and the total days they can still
// absorb. Exhausted freezes stay in the ledger while their covered days keep
// old bridges standing, but they are invisible here: the caller only sees
// freezes that can still do something.
func (s *FreezeService) Balance(ctx context.Context, userID string) (*FreezeBalance, error) {
	now := time.Now().UTC()

	freezes, err := s.freezeRepo.ListActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("freeze: loading ledger: %w", err)
	}

	usable := make([]domain.StreakFreeze, 0, len(freezes))
	for _, f := range freezes {
		if f.DaysRemaining > 0 {
			usable = append(usable, f)
		}
	}

	return &FreezeBalance{
		Freezes:       usable,
		RemainingDays: domain.RemainingFreezeDays(usable, now),
	}, nil
}
