// Package gamification computes streak and XP transitions for completed
// quizzes and applies them to user profiles.
package gamification

import (
	"time"

	"github.com/p-n-ai/pai-learn/internal/profile"
)

// XP bands.
const (
	LargeSessionSize    = 10
	SmallSessionSize    = 5
	RevisionSessionSize = 7

	LargeSessionXP = 30
	SmallSessionXP = 10
)

// StreakTransition is the outcome of one activity on the streak counters.
type StreakTransition struct {
	NewStreak        int       `json:"new_streak"`
	NewHighestStreak int       `json:"new_highest_streak"`
	Changed          bool      `json:"changed"`
	Increased        bool      `json:"increased"`
	LastActivity     time.Time `json:"last_activity,omitzero"`
}

// ComputeStreakTransition applies activity on today to p's streak.
// Days are calendar days in loc. Activity already recorded today (or on a
// later day) leaves the streak untouched.
func ComputeStreakTransition(p profile.Profile, today time.Time, loc *time.Location) StreakTransition {
	st := StreakTransition{
		NewStreak:        p.CurrentStreak,
		NewHighestStreak: p.HighestStreak,
	}

	next := 1
	if p.LastActivity != nil {
		diff := DayDiff(*p.LastActivity, today, loc)
		if diff <= 0 {
			return st
		}
		if diff == 1 {
			next = p.CurrentStreak + 1
		}
	}

	st.NewStreak = next
	st.NewHighestStreak = max(p.HighestStreak, next)
	st.Changed = true
	// Covers the cold start too: 0 -> 1 is an increase.
	st.Increased = next > p.CurrentStreak
	st.LastActivity = today
	return st
}

// XPAward returns the XP earned for a session of questionCount questions.
func XPAward(questionCount int) int {
	switch {
	case questionCount >= LargeSessionSize:
		return LargeSessionXP
	case questionCount >= SmallSessionSize, questionCount == RevisionSessionSize:
		return SmallSessionXP
	}
	return 0
}

// XPTransition is the outcome of one session on the XP counters.
type XPTransition struct {
	Award         int        `json:"award"`
	NewWeeklyXP   int        `json:"new_weekly_xp"`
	NewTotalXP    int        `json:"new_total_xp"`
	ResetOccurred bool       `json:"reset_occurred"`
	Awarded       bool       `json:"awarded"`
	LastXPReset   *time.Time `json:"last_xp_reset,omitempty"`
}

// ComputeXPTransition awards XP for questionCount questions answered on
// today. A zero award changes nothing. Otherwise, if today is in a later
// Monday-based week than p.LastXPReset (or there was never a reset), the
// weekly counter restarts at the award.
func ComputeXPTransition(p profile.Profile, questionCount int, today time.Time, loc *time.Location) XPTransition {
	xt := XPTransition{
		NewWeeklyXP: p.WeeklyXP,
		NewTotalXP:  p.TotalXP,
		LastXPReset: p.LastXPReset,
	}

	award := XPAward(questionCount)
	if award == 0 {
		return xt
	}

	xt.Award = award
	xt.Awarded = true
	xt.NewTotalXP = p.TotalXP + award

	if p.LastXPReset == nil || !SameWeek(*p.LastXPReset, today, loc) {
		xt.NewWeeklyXP = award
		xt.ResetOccurred = true
		reset := today
		xt.LastXPReset = &reset
		return xt
	}

	xt.NewWeeklyXP = p.WeeklyXP + award
	return xt
}
