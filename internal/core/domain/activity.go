package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidUserID     = errors.New("invalid user id")
	ErrInvalidOccurrence = errors.New("activity timestamp is required")
	ErrFutureOccurrence  = errors.New("activity timestamp is in the future")
)

// occurrenceSkewAllowance tolerates small client clock drift; anything further
// ahead is rejected so a future-dated entry can never anchor the streak walk
// past today.
const occurrenceSkewAllowance = 5 * time.Minute

// ActivityLogEntry is a single trackable action (meal, workout, ...) logged by
// a user. Entries are immutable once written; the engine only ever reads them.
type ActivityLogEntry struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	OccurredAt time.Time `json:"occurred_at" db:"occurred_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

func NewActivityLogEntry(userID string, occurredAt time.Time) (*ActivityLogEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}
	if occurredAt.IsZero() {
		return nil, ErrInvalidOccurrence
	}

	now := time.Now().UTC()
	occurredAt = occurredAt.UTC()
	if occurredAt.After(now.Add(occurrenceSkewAllowance)) {
		return nil, ErrFutureOccurrence
	}
	// Slight drift beyond now is folded into now so the entry still lands on
	// today's calendar day.
	if occurredAt.After(now) {
		occurredAt = now
	}

	return &ActivityLogEntry{
		UserID:     userID,
		OccurredAt: occurredAt,
		CreatedAt:  now,
	}, nil
}

type ActivityLogRepository interface {
	// Create persists a new activity entry.
	Create(ctx context.Context, entry *ActivityLogEntry) error

	// ListByUserID returns every entry for a user, most recent first.
	// Streak computation walks the full history day by day.
	ListByUserID(ctx context.Context, userID string) ([]ActivityLogEntry, error)

	// CountBetween counts entries with occurred_at in [from, to).
	CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
}
