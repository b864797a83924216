package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entriesOnDays(now time.Time, offsets ...int) []ActivityLogEntry {
	var entries []ActivityLogEntry
	for _, n := range offsets {
		entries = append(entries, ActivityLogEntry{
			UserID:     "u1",
			OccurredAt: now.AddDate(0, 0, -n),
		})
	}
	return entries
}

func freezeWithDays(days int, now time.Time) StreakFreeze {
	return StreakFreeze{
		ID:            "f1",
		DaysRemaining: days,
		ActivatedAt:   now.AddDate(0, 0, -10),
		ExpiresAt:     now.AddDate(0, 0, 30),
	}
}

func TestCalculateStreaks(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name        string
		offsets     []int
		freezes     []StreakFreeze
		wantCurrent int
		wantLongest int
		wantSpent   int
	}{
		{
			name:        "Empty history",
			offsets:     nil,
			wantCurrent: 0,
			wantLongest: 0,
		},
		{
			name:        "Single entry today",
			offsets:     []int{0},
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:        "Single entry yesterday keeps the streak alive",
			offsets:     []int{1},
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:        "Single entry 2 days ago with no freeze is broken",
			offsets:     []int{2},
			wantCurrent: 0,
			wantLongest: 1,
		},
		{
			name:        "Unbroken run equals day count",
			offsets:     []int{0, 1, 2, 3, 4},
			wantCurrent: 5,
			wantLongest: 5,
		},
		{
			name:        "Duplicate entries on one day count once",
			offsets:     []int{0, 0, 0, 1},
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name:        "Two day gap breaks without freeze",
			offsets:     []int{0, 1, 2, 5, 6},
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name:        "Two missing days break even with a freeze",
			offsets:     []int{0, 1, 2, 5, 6},
			freezes:     []StreakFreeze{freezeWithDays(1, now)},
			wantCurrent: 3,
			wantLongest: 3,
			wantSpent:   0,
		},
		{
			name:        "Freeze bridges a single missed day",
			offsets:     []int{0, 1, 3},
			freezes:     []StreakFreeze{freezeWithDays(1, now)},
			wantCurrent: 3,
			wantLongest: 3,
			wantSpent:   1,
		},
		{
			name:        "One missed day with no freeze breaks the run",
			offsets:     []int{0, 1, 3},
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name:        "Exhausted freeze cannot bridge",
			offsets:     []int{0, 1, 3},
			freezes:     []StreakFreeze{freezeWithDays(0, now)},
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name: "Expired freeze cannot bridge",
			offsets: []int{0, 1, 3},
			freezes: []StreakFreeze{{
				ID:            "old",
				DaysRemaining: 2,
				ActivatedAt:   now.AddDate(0, 0, -40),
				ExpiresAt:     now.AddDate(0, 0, -5),
			}},
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name:    "Expired freeze still honors its covered day",
			offsets: []int{0, 1, 3},
			freezes: []StreakFreeze{{
				ID:            "expired-bridge",
				DaysRemaining: 0,
				ActivatedAt:   now.AddDate(0, 0, -40),
				ExpiresAt:     now.AddDate(0, 0, -5),
				CoveredDays:   []string{dayKey(dayNumber(now) - 2)},
			}},
			wantCurrent: 3,
			wantLongest: 3,
			wantSpent:   0,
		},
		{
			name:        "Freeze covers a fully missed yesterday",
			offsets:     []int{2, 3, 4},
			freezes:     []StreakFreeze{freezeWithDays(1, now)},
			wantCurrent: 3,
			wantLongest: 3,
			wantSpent:   1,
		},
		{
			name:        "Longest streak lives in the past",
			offsets:     []int{0, 10, 11, 12, 13},
			wantCurrent: 1,
			wantLongest: 4,
		},
		{
			name:        "Future dated entry does not zero a live run",
			offsets:     []int{-1, 0, 1, 2},
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name:        "Only future entries count for nothing",
			offsets:     []int{-1, -3},
			wantCurrent: 0,
			wantLongest: 0,
		},
		{
			name:        "Historical gaps never consume fresh freezes",
			offsets:     []int{0, 1, 8, 9, 11},
			freezes:     []StreakFreeze{freezeWithDays(3, now)},
			wantCurrent: 2,
			wantLongest: 2,
			wantSpent:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := CalculateStreaks(entriesOnDays(now, tt.offsets...), tt.freezes, now)

			assert.Equal(t, tt.wantCurrent, result.CurrentStreak, "current streak mismatch")
			assert.Equal(t, tt.wantLongest, result.LongestStreak, "longest streak mismatch")
			assert.Equal(t, tt.wantSpent, result.FreezesSpent, "spent freeze units mismatch")
		})
	}
}

func TestCalculateStreaks_FreezeConsumption(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	entries := entriesOnDays(now, 0, 1, 3)

	t.Run("Bridging decrements exactly one unit", func(t *testing.T) {
		freezes := []StreakFreeze{freezeWithDays(2, now)}

		result, updated := CalculateStreaks(entries, freezes, now)

		require.Equal(t, 3, result.CurrentStreak)
		require.Len(t, updated, 1)
		assert.Equal(t, 1, updated[0].DaysRemaining)
		assert.Len(t, updated[0].CoveredDays, 1)

		// The input set stays untouched.
		assert.Equal(t, 2, freezes[0].DaysRemaining)
	})

	t.Run("Recomputation charges the same record, not a new unit", func(t *testing.T) {
		freezes := []StreakFreeze{freezeWithDays(2, now)}

		first, updated := CalculateStreaks(entries, freezes, now)
		require.Equal(t, 1, first.FreezesSpent)

		second, again := CalculateStreaks(entries, updated, now)
		assert.Equal(t, 3, second.CurrentStreak)
		assert.Equal(t, 0, second.FreezesSpent)
		assert.Equal(t, updated[0].DaysRemaining, again[0].DaysRemaining)
	})

	t.Run("Earliest activated freeze is consumed first", func(t *testing.T) {
		older := freezeWithDays(1, now)
		older.ID = "older"
		older.ActivatedAt = now.AddDate(0, 0, -20)

		newer := freezeWithDays(1, now)
		newer.ID = "newer"

		_, updated := CalculateStreaks(entries, []StreakFreeze{newer, older}, now)

		for _, f := range updated {
			switch f.ID {
			case "older":
				assert.Equal(t, 0, f.DaysRemaining)
			case "newer":
				assert.Equal(t, 1, f.DaysRemaining)
			}
		}
	})
}
