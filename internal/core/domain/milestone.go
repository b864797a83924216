package domain

// Milestone is a named streak achievement. The table is static and ascending
// by threshold; "achieved" is always computed against the longest streak,
// never stored per user.
type Milestone struct {
	ThresholdDays int    `json:"threshold_days"`
	Name          string `json:"name"`
	Title         string `json:"title"`
	Icon          string `json:"icon"`
}

type MilestoneStatus struct {
	Milestone
	Achieved bool `json:"achieved"`
}

type MilestoneProgress struct {
	Milestones    []MilestoneStatus `json:"milestones"`
	Next          Milestone         `json:"next_milestone"`
	DaysUntilNext int               `json:"days_until_next"`
}

var milestones = []Milestone{
	{ThresholdDays: 3, Name: "spark", Title: "First Spark", Icon: "✨"},
	{ThresholdDays: 7, Name: "week_one", Title: "One Full Week", Icon: "🔥"},
	{ThresholdDays: 14, Name: "fortnight", Title: "Two Week Fighter", Icon: "💪"},
	{ThresholdDays: 30, Name: "monthly", Title: "Thirty Day Club", Icon: "🏅"},
	{ThresholdDays: 50, Name: "fifty", Title: "Fifty & Counting", Icon: "🚀"},
	{ThresholdDays: 100, Name: "century", Title: "Century Streak", Icon: "💎"},
	{ThresholdDays: 365, Name: "year", Title: "Year of Consistency", Icon: "👑"},
}

// AllMilestones returns a copy of the static milestone table.
func AllMilestones() []Milestone {
	out := make([]Milestone, len(milestones))
	copy(out, milestones)
	return out
}

// EvaluateMilestones marks each milestone achieved when the longest streak has
// reached its threshold, picks the next unachieved milestone (or the highest
// one when everything is achieved) and how many days of the current streak
// remain until it.
func EvaluateMilestones(currentStreak, longestStreak int) MilestoneProgress {
	statuses := make([]MilestoneStatus, 0, len(milestones))
	next := milestones[len(milestones)-1]
	nextFound := false

	for _, m := range milestones {
		achieved := longestStreak >= m.ThresholdDays
		if !achieved && !nextFound {
			next = m
			nextFound = true
		}
		statuses = append(statuses, MilestoneStatus{Milestone: m, Achieved: achieved})
	}

	days := next.ThresholdDays - currentStreak
	if days < 0 {
		days = 0
	}

	return MilestoneProgress{
		Milestones:    statuses,
		Next:          next,
		DaysUntilNext: days,
	}
}
