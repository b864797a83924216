package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nourishlabs/consistency-engine/internal/core/domain"
)

var _ domain.SquadRepository = (*CachedSquadRepository)(nil)

// CachedSquadRepository keeps the squad view (and thus the ranked leaderboard
// derived from it) in Redis. Every membership or metric write invalidates the
// squad's entry; a cache miss or a Redis outage falls through to the backing
// store.
type CachedSquadRepository struct {
	next  domain.SquadRepository
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedSquadRepository(next domain.SquadRepository, cache *redis.Client) *CachedSquadRepository {
	return &CachedSquadRepository{
		next:  next,
		cache: cache,
		ttl:   10 * time.Minute,
	}
}

func (r *CachedSquadRepository) cacheKey(squadID string) string {
	return fmt.Sprintf("squad:%s", squadID)
}

func (r *CachedSquadRepository) invalidate(ctx context.Context, squadID string) {
	if err := r.cache.Del(ctx, r.cacheKey(squadID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate squad %s: %v", squadID, err)
	}
}

func (r *CachedSquadRepository) GetByID(ctx context.Context, id string) (*domain.Squad, error) {
	key := r.cacheKey(id)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var squad domain.Squad
		if err := json.Unmarshal([]byte(val), &squad); err == nil {
			return &squad, nil
		}

		log.Printf("[CACHE] Corrupted data for squad %s, cleaning up key", id)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	squad, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(squad); err == nil {
		if setErr := r.cache.Set(ctx, key, data, r.ttl).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return squad, nil
}

func (r *CachedSquadRepository) Create(ctx context.Context, squad *domain.Squad) error {
	if err := r.next.Create(ctx, squad); err != nil {
		return err
	}
	r.invalidate(ctx, squad.ID)
	return nil
}

func (r *CachedSquadRepository) ListIDs(ctx context.Context) ([]string, error) {
	return r.next.ListIDs(ctx)
}

func (r *CachedSquadRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Squad, error) {
	return r.next.ListByUserID(ctx, userID)
}

func (r *CachedSquadRepository) AddMember(ctx context.Context, squadID string, m domain.SquadMember) error {
	if err := r.next.AddMember(ctx, squadID, m); err != nil {
		return err
	}
	r.invalidate(ctx, squadID)
	return nil
}

func (r *CachedSquadRepository) RemoveMember(ctx context.Context, squadID, userID string) error {
	if err := r.next.RemoveMember(ctx, squadID, userID); err != nil {
		return err
	}
	r.invalidate(ctx, squadID)
	return nil
}

func (r *CachedSquadRepository) UpdateMemberMetrics(ctx context.Context, squadID, userID string, score, streak int) error {
	if err := r.next.UpdateMemberMetrics(ctx, squadID, userID, score, streak); err != nil {
		return err
	}
	r.invalidate(ctx, squadID)
	return nil
}

func (r *CachedSquadRepository) ShareSquad(ctx context.Context, userA, userB string) (bool, error) {
	return r.next.ShareSquad(ctx, userA, userB)
}
