package domain

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxSquadSize = 5

var (
	ErrSquadNotFound    = errors.New("squad not found")
	ErrMemberNotFound   = errors.New("squad member not found")
	ErrSquadFull        = errors.New("squad is full")
	ErrAlreadyMember    = errors.New("user is already a squad member")
	ErrInvalidSquadName = errors.New("squad name cannot be empty")
)

type SquadMember struct {
	UserID           string    `json:"user_id" db:"user_id"`
	Username         string    `json:"username" db:"username"`
	AvatarURL        *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	ConsistencyScore int       `json:"consistency_score" db:"consistency_score"`
	Streak           int       `json:"streak" db:"streak"`
	JoinedAt         time.Time `json:"joined_at" db:"joined_at"`
}

type Squad struct {
	ID        string        `json:"id" db:"id"`
	OwnerID   string        `json:"owner_id" db:"owner_id"`
	Name      string        `json:"name" db:"name"`
	Members   []SquadMember `json:"members"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

func NewSquad(ownerID, name string) (*Squad, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrInvalidUserID
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidSquadName
	}

	now := time.Now().UTC()
	return &Squad{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanJoin checks the membership invariants: at most MaxSquadSize members and
// no duplicate user.
func (s *Squad) CanJoin(userID string) error {
	for i := range s.Members {
		if s.Members[i].UserID == userID {
			return ErrAlreadyMember
		}
	}
	if len(s.Members) >= MaxSquadSize {
		return ErrSquadFull
	}
	return nil
}

// AddMember re-validates CanJoin at write time; a prior check is never trusted.
func (s *Squad) AddMember(m SquadMember) error {
	if err := s.CanJoin(m.UserID); err != nil {
		return err
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	s.Members = append(s.Members, m)
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveMember is idempotent: removing an absent user is not an error.
func (s *Squad) RemoveMember(userID string) {
	for i := range s.Members {
		if s.Members[i].UserID == userID {
			s.Members = append(s.Members[:i], s.Members[i+1:]...)
			s.UpdatedAt = time.Now().UTC()
			return
		}
	}
}

// RankedMembers sorts by consistency score descending; ties go to the member
// who joined earlier.
func (s *Squad) RankedMembers() []SquadMember {
	ranked := make([]SquadMember, len(s.Members))
	copy(ranked, s.Members)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ConsistencyScore != ranked[j].ConsistencyScore {
			return ranked[i].ConsistencyScore > ranked[j].ConsistencyScore
		}
		return ranked[i].JoinedAt.Before(ranked[j].JoinedAt)
	})

	return ranked
}

// Rank returns the user's 1-based position in the ranked view, or
// ErrMemberNotFound.
func (s *Squad) Rank(userID string) (int, error) {
	for i, m := range s.RankedMembers() {
		if m.UserID == userID {
			return i + 1, nil
		}
	}
	return 0, ErrMemberNotFound
}

type SquadRepository interface {
	// Create persists a new squad together with its initial members.
	Create(ctx context.Context, squad *Squad) error

	// GetByID returns the squad with members ordered by join time.
	GetByID(ctx context.Context, id string) (*Squad, error)

	// ListIDs returns every squad id; used by the periodic recompute.
	ListIDs(ctx context.Context) ([]string, error)

	// ListByUserID returns the squads the user belongs to.
	ListByUserID(ctx context.Context, userID string) ([]*Squad, error)

	// AddMember inserts the member only while the squad is below capacity and
	// the user is not already present; the check and the write are one
	// conditional statement, so concurrent joins on the same squad serialize.
	AddMember(ctx context.Context, squadID string, m SquadMember) error

	// RemoveMember deletes the membership row; absent rows are not an error.
	RemoveMember(ctx context.Context, squadID, userID string) error

	// UpdateMemberMetrics overwrites a member's stored score and streak with
	// last-writer-wins semantics on the (squad_id, user_id) row. It must not
	// resurrect a removed member: a missing row returns ErrMemberNotFound.
	UpdateMemberMetrics(ctx context.Context, squadID, userID string, score, streak int) error

	// ShareSquad reports whether two users are members of at least one common
	// squad.
	ShareSquad(ctx context.Context, userA, userB string) (bool, error)
}
