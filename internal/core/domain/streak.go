package domain

import (
	"sort"
	"time"
)

const dayLayout = "2006-01-02"

type StreakResult struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`

	// FreezesSpent is how many freeze units this computation consumed.
	// Recomputing over the same history spends nothing: bridged days are
	// remembered on the freeze records themselves.
	FreezesSpent int `json:"freezes_spent"`
}

func dayNumber(t time.Time) int {
	return int(t.UTC().Unix() / 86400)
}

func dayKey(n int) string {
	return time.Unix(int64(n)*86400, 0).UTC().Format(dayLayout)
}

// distinctDays buckets entries to UTC calendar days and returns the distinct
// day numbers, most recent first. Multiple entries on one day count once.
func distinctDays(entries []ActivityLogEntry) []int {
	seen := make(map[int]bool)
	var days []int
	for i := range entries {
		d := dayNumber(entries[i].OccurredAt)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(days)))
	return days
}

// CalculateStreaks derives the current and longest streak from a user's raw
// activity log. A single missed day inside a run can be bridged by spending
// one unit of an active freeze; two or more consecutive missed days always
// break the run. The current streak stays alive through today even when today
// has no entry yet.
//
// Only the run anchored at today may spend new freeze units; older runs bridge
// solely through days a freeze already covers. The returned freeze set
// reflects any consumption and must be persisted by the caller.
func CalculateStreaks(entries []ActivityLogEntry, freezes []StreakFreeze, now time.Time) (StreakResult, []StreakFreeze) {
	today := dayNumber(now)

	// Entries dated past today (stored before future timestamps were
	// rejected) must not shift the anchor off the present.
	days := distinctDays(entries)
	for len(days) > 0 && days[0] > today {
		days = days[1:]
	}
	if len(days) == 0 {
		return StreakResult{}, freezes
	}
	updated := freezes
	spentBefore := RemainingFreezeDays(freezes, now)

	current := 0
	anchored := false

	switch {
	case days[0] == today || days[0] == today-1:
		anchored = true
	case days[0] == today-2:
		// Yesterday passed with no activity; a freeze can still absorb it.
		if next, err := ConsumeFreeze(updated, dayKey(today-1), now); err == nil {
			updated = next
			anchored = true
		}
	}

	if anchored {
		current = 1
		for i := 0; i < len(days)-1; i++ {
			gap := days[i] - days[i+1]
			if gap == 1 {
				current++
				continue
			}
			if gap == 2 {
				next, err := ConsumeFreeze(updated, dayKey(days[i]-1), now)
				if err != nil {
					break
				}
				updated = next
				current++
				continue
			}
			break
		}
	}

	covered := func(day string) bool {
		for i := range updated {
			if updated[i].Covers(day) {
				return true
			}
		}
		return false
	}

	longest := 0
	run := 1
	for i := 0; i < len(days)-1; i++ {
		gap := days[i] - days[i+1]
		if gap == 1 || (gap == 2 && covered(dayKey(days[i]-1))) {
			run++
			continue
		}
		if run > longest {
			longest = run
		}
		run = 1
	}
	if run > longest {
		longest = run
	}

	return StreakResult{
		CurrentStreak: current,
		LongestStreak: longest,
		FreezesSpent:  spentBefore - RemainingFreezeDays(updated, now),
	}, updated
}
