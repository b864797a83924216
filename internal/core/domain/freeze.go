package domain

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidFreezeDays = errors.New("freeze day count must be positive")
	ErrNoFreezeAvailable = errors.New("no active freeze with remaining days")
)

// StreakFreeze absorbs a single missed day without breaking the streak.
// CoveredDays records which calendar days (YYYY-MM-DD, UTC) this freeze has
// already been spent on, so recomputing a streak never double-spends a unit.
type StreakFreeze struct {
	ID            string    `json:"id" db:"id"`
	DaysRemaining int       `json:"days_remaining" db:"days_remaining"`
	ActivatedAt   time.Time `json:"activated_at" db:"activated_at"`
	ExpiresAt     time.Time `json:"expires_at" db:"expires_at"`
	CoveredDays   []string  `json:"covered_days,omitempty" db:"covered_days"`
}

func NewStreakFreeze(days int, now time.Time) (*StreakFreeze, error) {
	if days <= 0 {
		return nil, ErrInvalidFreezeDays
	}

	now = now.UTC()
	return &StreakFreeze{
		ID:            uuid.NewString(),
		DaysRemaining: days,
		ActivatedAt:   now,
		ExpiresAt:     now.Add(time.Duration(days) * 24 * time.Hour),
	}, nil
}

// Usable reports whether the freeze can still absorb a new missed day.
func (f *StreakFreeze) Usable(now time.Time) bool {
	return f.DaysRemaining > 0 && f.ExpiresAt.After(now)
}

func (f *StreakFreeze) Covers(day string) bool {
	for _, d := range f.CoveredDays {
		if d == day {
			return true
		}
	}
	return false
}

// HasActiveFreeze reports whether any freeze in the set can absorb a missed day.
func HasActiveFreeze(freezes []StreakFreeze, now time.Time) bool {
	for i := range freezes {
		if freezes[i].Usable(now) {
			return true
		}
	}
	return false
}

// RemainingFreezeDays sums days_remaining over non-expired freezes.
func RemainingFreezeDays(freezes []StreakFreeze, now time.Time) int {
	total := 0
	for i := range freezes {
		if freezes[i].ExpiresAt.After(now) {
			total += freezes[i].DaysRemaining
		}
	}
	return total
}

// ConsumeFreeze spends one unit to cover the given calendar day and returns the
// updated set. Consumption prefers the earliest-activated usable freeze, so a
// recomputation always charges the same record. A day already covered by any
// freeze is free: the set is returned unchanged.
//
// The input slice is not mutated; persistence of the result is the caller's job.
func ConsumeFreeze(freezes []StreakFreeze, day string, now time.Time) ([]StreakFreeze, error) {
	for i := range freezes {
		if freezes[i].Covers(day) {
			return freezes, nil
		}
	}

	out := make([]StreakFreeze, len(freezes))
	copy(out, freezes)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ActivatedAt.Before(out[j].ActivatedAt)
	})

	for i := range out {
		if !out[i].Usable(now) {
			continue
		}
		out[i].DaysRemaining--
		out[i].CoveredDays = append(append([]string(nil), out[i].CoveredDays...), day)
		return out, nil
	}

	return freezes, ErrNoFreezeAvailable
}

// PruneFreezes drops freezes that can neither absorb a new day nor vouch for
// an old one. Expiry only voids unspent days: a freeze that has covered days
// is kept indefinitely so the bridge it paid for never collapses.
func PruneFreezes(freezes []StreakFreeze, now time.Time) []StreakFreeze {
	var kept []StreakFreeze
	for _, f := range freezes {
		if len(f.CoveredDays) > 0 {
			kept = append(kept, f)
			continue
		}
		if !f.ExpiresAt.After(now) || f.DaysRemaining == 0 {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

type FreezeRepository interface {
	// ListActive returns the user's live freezes, earliest activated first:
	// every non-expired one, plus expired ones that still cover a day.
	ListActive(ctx context.Context, userID string) ([]StreakFreeze, error)

	// Save replaces the user's freeze set atomically. A failed save leaves the
	// previous set intact.
	Save(ctx context.Context, userID string, freezes []StreakFreeze) error
}
