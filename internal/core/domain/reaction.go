package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotSquadMember         = errors.New("users do not share a squad")
	ErrReactionNotFound       = errors.New("reaction not found")
	ErrInvalidReactionType    = errors.New("invalid reaction type")
	ErrInvalidReactionContext = errors.New("invalid reaction context")
	ErrInvalidTargetID        = errors.New("invalid reaction target id")
)

const (
	ReactionFire  = "fire"
	ReactionClap  = "clap"
	ReactionFlex  = "flex"
	ReactionHeart = "heart"
)

const (
	ReactionContextLog     = "log"
	ReactionContextWorkout = "workout"
	ReactionContextPhoto   = "photo"
	ReactionContextStreak  = "streak"
)

// Reaction is a squad-scoped acknowledgement of another member's activity.
// At most one reaction exists per (UserID, TargetID) pair: reacting again with
// the same type toggles it off, a different type replaces it in place.
type Reaction struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	TargetUserID string    `json:"target_user_id" db:"target_user_id"`
	TargetID     string    `json:"target_id" db:"target_id"`
	Type         string    `json:"type" db:"type"`
	Context      string    `json:"context" db:"context"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func ValidReactionType(t string) bool {
	switch t {
	case ReactionFire, ReactionClap, ReactionFlex, ReactionHeart:
		return true
	}
	return false
}

func ValidReactionContext(c string) bool {
	switch c {
	case ReactionContextLog, ReactionContextWorkout, ReactionContextPhoto, ReactionContextStreak:
		return true
	}
	return false
}

func NewReaction(userID, targetUserID, targetID, rType, rContext string) (*Reaction, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(targetUserID) == "" {
		return nil, ErrInvalidUserID
	}
	if strings.TrimSpace(targetID) == "" {
		return nil, ErrInvalidTargetID
	}
	if !ValidReactionType(rType) {
		return nil, ErrInvalidReactionType
	}
	if !ValidReactionContext(rContext) {
		return nil, ErrInvalidReactionContext
	}

	return &Reaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		TargetUserID: targetUserID,
		TargetID:     targetID,
		Type:         rType,
		Context:      rContext,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

type ReactionRepository interface {
	// GetByUserAndTarget returns the user's reaction on the target, or
	// ErrReactionNotFound.
	GetByUserAndTarget(ctx context.Context, userID, targetID string) (*Reaction, error)

	// Upsert inserts the reaction, or replaces type/context/timestamp on the
	// existing (user_id, target_id) row. The unique constraint on that pair
	// serializes concurrent upserts for the same user and target.
	Upsert(ctx context.Context, reaction *Reaction) error

	// Delete removes the user's reaction on the target; absent rows are not an
	// error.
	Delete(ctx context.Context, userID, targetID string) error

	// ListByTargetID returns every reaction for a target, most recent first.
	ListByTargetID(ctx context.Context, targetID string) ([]Reaction, error)
}
