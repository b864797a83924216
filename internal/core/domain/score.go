package domain

import "math"

// Scoring weights. The four components sum to 100.
const (
	streakWeight    = 40.0
	weeklyWeight    = 30.0
	frequencyWeight = 20.0
	longestWeight   = 10.0

	streakTargetDays    = 30.0
	weeklyTargetLogs    = 7.0
	frequencyTargetLogs = 30.0
	longestTargetDays   = 50.0
)

// ConsistencyMetrics is derived on demand from the activity log and freeze
// state. It is never mutated independently.
type ConsistencyMetrics struct {
	UserID           string `json:"user_id"`
	LogsThisWeek     int    `json:"logs_this_week"`
	LogsLastWeek     int    `json:"logs_last_week"`
	CurrentStreak    int    `json:"current_streak"`
	LongestStreak    int    `json:"longest_streak"`
	ConsistencyScore int    `json:"consistency_score"`
	Rank             *int   `json:"rank,omitempty"`
}

type ScoreInput struct {
	CurrentStreak  int
	LongestStreak  int
	LogsThisWeek   int
	LogsLastWeek   int
	LogsLast30Days int
}

// ComputeConsistencyScore maps recent activity onto a 0-100 score.
// No activity in the trailing 30 days scores 0 outright.
func ComputeConsistencyScore(in ScoreInput) int {
	if in.LogsLast30Days <= 0 {
		return 0
	}

	streak := math.Min(float64(in.CurrentStreak)/streakTargetDays, 1) * streakWeight
	weekly := math.Min(float64(in.LogsThisWeek)/weeklyTargetLogs, 1) * weeklyWeight
	frequency := math.Min(float64(in.LogsLast30Days)/frequencyTargetLogs, 1) * frequencyWeight
	bonus := math.Min(float64(in.LongestStreak)/longestTargetDays, 1) * longestWeight

	score := int(math.Round(streak + weekly + frequency + bonus))

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
