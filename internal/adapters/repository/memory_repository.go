package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nourishlabs/consistency-engine/internal/core/domain"
)

// In-memory repositories back the handler and service tests and the local dev
// mode. Each guards its own state with a RWMutex; values are copied on the way
// in and out so callers never share slices with the store.

type InMemoryActivityRepository struct {
	entries map[string][]domain.ActivityLogEntry

	mu sync.RWMutex
}

func NewInMemoryActivityRepository() *InMemoryActivityRepository {
	return &InMemoryActivityRepository{
		entries: make(map[string][]domain.ActivityLogEntry),
	}
}

func (r *InMemoryActivityRepository) Create(ctx context.Context, entry *domain.ActivityLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	r.entries[entry.UserID] = append(r.entries[entry.UserID], *entry)
	return nil
}

func (r *InMemoryActivityRepository) ListByUserID(ctx context.Context, userID string) ([]domain.ActivityLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ActivityLogEntry, len(r.entries[userID]))
	copy(out, r.entries[userID])

	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})

	return out, nil
}

func (r *InMemoryActivityRepository) CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, e := range r.entries[userID] {
		if !e.OccurredAt.Before(from) && e.OccurredAt.Before(to) {
			count++
		}
	}
	return count, nil
}

type InMemoryFreezeRepository struct {
	freezes map[string][]domain.StreakFreeze

	mu sync.RWMutex
}

func NewInMemoryFreezeRepository() *InMemoryFreezeRepository {
	return &InMemoryFreezeRepository{
		freezes: make(map[string][]domain.StreakFreeze),
	}
}

func (r *InMemoryFreezeRepository) ListActive(ctx context.Context, userID string) ([]domain.StreakFreeze, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now().UTC()
	var out []domain.StreakFreeze
	for _, f := range r.freezes[userID] {
		// Expiry never hides a freeze that still covers a day.
		if f.ExpiresAt.After(now) || len(f.CoveredDays) > 0 {
			out = append(out, f)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ActivatedAt.Before(out[j].ActivatedAt)
	})

	return out, nil
}

func (r *InMemoryFreezeRepository) Save(ctx context.Context, userID string, freezes []domain.StreakFreeze) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]domain.StreakFreeze, len(freezes))
	copy(stored, freezes)
	r.freezes[userID] = stored
	return nil
}

type InMemorySquadRepository struct {
	squads map[string]*domain.Squad

	mu sync.RWMutex
}

func NewInMemorySquadRepository() *InMemorySquadRepository {
	return &InMemorySquadRepository{
		squads: make(map[string]*domain.Squad),
	}
}

func cloneSquad(s *domain.Squad) *domain.Squad {
	clone := *s
	clone.Members = make([]domain.SquadMember, len(s.Members))
	copy(clone.Members, s.Members)
	return &clone
}

func (r *InMemorySquadRepository) Create(ctx context.Context, squad *domain.Squad) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.squads[squad.ID] = cloneSquad(squad)
	return nil
}

func (r *InMemorySquadRepository) GetByID(ctx context.Context, id string) (*domain.Squad, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	squad, ok := r.squads[id]
	if !ok {
		return nil, domain.ErrSquadNotFound
	}
	return cloneSquad(squad), nil
}

func (r *InMemorySquadRepository) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.squads))
	for id := range r.squads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *InMemorySquadRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Squad, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Squad
	for _, s := range r.squads {
		for _, m := range s.Members {
			if m.UserID == userID {
				out = append(out, cloneSquad(s))
				break
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *InMemorySquadRepository) AddMember(ctx context.Context, squadID string, m domain.SquadMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	squad, ok := r.squads[squadID]
	if !ok {
		return domain.ErrSquadNotFound
	}

	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}

	return squad.AddMember(m)
}

func (r *InMemorySquadRepository) RemoveMember(ctx context.Context, squadID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	squad, ok := r.squads[squadID]
	if !ok {
		return nil
	}
	squad.RemoveMember(userID)
	return nil
}

func (r *InMemorySquadRepository) UpdateMemberMetrics(ctx context.Context, squadID, userID string, score, streak int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	squad, ok := r.squads[squadID]
	if !ok {
		return domain.ErrSquadNotFound
	}

	for i := range squad.Members {
		if squad.Members[i].UserID == userID {
			squad.Members[i].ConsistencyScore = score
			squad.Members[i].Streak = streak
			return nil
		}
	}

	return domain.ErrMemberNotFound
}

func (r *InMemorySquadRepository) ShareSquad(ctx context.Context, userA, userB string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.squads {
		foundA, foundB := false, false
		for _, m := range s.Members {
			if m.UserID == userA {
				foundA = true
			}
			if m.UserID == userB {
				foundB = true
			}
		}
		if foundA && foundB {
			return true, nil
		}
	}
	return false, nil
}

type InMemoryReactionRepository struct {
	reactions map[string]domain.Reaction // keyed by (userID, targetID)

	mu sync.RWMutex
}

func NewInMemoryReactionRepository() *InMemoryReactionRepository {
	return &InMemoryReactionRepository{
		reactions: make(map[string]domain.Reaction),
	}
}

func reactionKey(userID, targetID string) string {
	return userID + "\x00" + targetID
}

func (r *InMemoryReactionRepository) GetByUserAndTarget(ctx context.Context, userID, targetID string) (*domain.Reaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reaction, ok := r.reactions[reactionKey(userID, targetID)]
	if !ok {
		return nil, domain.ErrReactionNotFound
	}
	return &reaction, nil
}

func (r *InMemoryReactionRepository) Upsert(ctx context.Context, reaction *domain.Reaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reactions[reactionKey(reaction.UserID, reaction.TargetID)] = *reaction
	return nil
}

func (r *InMemoryReactionRepository) Delete(ctx context.Context, userID, targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.reactions, reactionKey(userID, targetID))
	return nil
}

func (r *InMemoryReactionRepository) ListByTargetID(ctx context.Context, targetID string) ([]domain.Reaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Reaction
	for _, reaction := range r.reactions {
		if reaction.TargetID == targetID {
			out = append(out, reaction)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}
