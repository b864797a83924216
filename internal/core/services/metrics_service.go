package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nourishlabs/consistency-engine/internal/core/domain"
)

type MetricsService struct {
	activityRepo domain.ActivityLogRepository
	freezeRepo   domain.FreezeRepository
}

func NewMetricsService(activityRepo domain.ActivityLogRepository, freezeRepo domain.FreezeRepository) *MetricsService {
	return &MetricsService{
		activityRepo: activityRepo,
		freezeRepo:   freezeRepo,
	}
}

// ComputeMetrics derives the user's full consistency picture from their
// activity log and freeze state. When the streak walk spends a freeze unit the
// updated freeze set is saved before the metrics are returned, so a repeated
// call charges the same record instead of a fresh one.
func (s *MetricsService) ComputeMetrics(ctx context.Context, userID string) (*domain.ConsistencyMetrics, error) {
	now := time.Now().UTC()

	entries, err := s.activityRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("metrics: loading activity log: %w", err)
	}

	freezes, err := s.freezeRepo.ListActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("metrics: loading freezes: %w", err)
	}

	streaks, updated := domain.CalculateStreaks(entries, freezes, now)

	if streaks.FreezesSpent > 0 {
		if err := s.freezeRepo.Save(ctx, userID, updated); err != nil {
			return nil, fmt.Errorf("metrics: persisting consumed freezes: %w", err)
		}
	}

	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)
	monthAgo := now.AddDate(0, 0, -30)

	logsThisWeek, err := s.activityRepo.CountBetween(ctx, userID, weekAgo, now)
	if err != nil {
		return nil, fmt.Errorf("metrics: counting this week: %w", err)
	}

	logsLastWeek, err := s.activityRepo.CountBetween(ctx, userID, twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("metrics: counting last week: %w", err)
	}

	logsLast30, err := s.activityRepo.CountBetween(ctx, userID, monthAgo, now)
	if err != nil {
		return nil, fmt.Errorf("metrics: counting trailing 30 days: %w", err)
	}

	score := domain.ComputeConsistencyScore(domain.ScoreInput{
		CurrentStreak:  streaks.CurrentStreak,
		LongestStreak:  streaks.LongestStreak,
		LogsThisWeek:   logsThisWeek,
		LogsLastWeek:   logsLastWeek,
		LogsLast30Days: logsLast30,
	})

	return &domain.ConsistencyMetrics{
		UserID:           userID,
		LogsThisWeek:     logsThisWeek,
		LogsLastWeek:     logsLastWeek,
		CurrentStreak:    streaks.CurrentStreak,
		LongestStreak:    streaks.LongestStreak,
		ConsistencyScore: score,
	}, nil
}

func (s *MetricsService) GetMilestones(ctx context.Context, userID string) (*domain.MilestoneProgress, error) {
	metrics, err := s.ComputeMetrics(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress := domain.EvaluateMilestones(metrics.CurrentStreak, metrics.LongestStreak)
	return &progress, nil
}
