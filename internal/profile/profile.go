// Package profile holds the per-user learning profile and its stores.
package profile

import (
	"context"
	"time"
)

// Profile is the slice of a user's record the learning core reads and writes.
// LastActivity and LastXPReset are nil when the event never happened.
type Profile struct {
	UserID               string     `json:"user_id" bson:"_id"`
	DisplayName          string     `json:"display_name" bson:"display_name"`
	Grade                string     `json:"grade" bson:"grade"`
	Onboarded            bool       `json:"onboarded" bson:"onboarded"`
	TotalXP              int        `json:"total_xp" bson:"total_xp"`
	WeeklyXP             int        `json:"weekly_xp" bson:"weekly_xp"`
	CurrentStreak        int        `json:"current_streak" bson:"current_streak"`
	HighestStreak        int        `json:"highest_streak" bson:"highest_streak"`
	LastActivity         *time.Time `json:"last_activity,omitempty" bson:"last_activity,omitempty"`
	LastXPReset          *time.Time `json:"last_xp_reset,omitempty" bson:"last_xp_reset,omitempty"`
	LastPracticedChapter string     `json:"last_practiced_chapter,omitempty" bson:"last_practiced_chapter"`
	UpdatedAt            time.Time  `json:"updated_at" bson:"updated_at"`
}

// Update lists the fields to write. Nil fields are left untouched.
type Update struct {
	DisplayName          *string
	Grade                *string
	Onboarded            *bool
	TotalXP              *int
	WeeklyXP             *int
	CurrentStreak        *int
	HighestStreak        *int
	LastActivity         *time.Time
	LastXPReset          *time.Time
	LastPracticedChapter *string
}

// Store persists profiles keyed by user ID. Update creates the record when
// it does not exist yet.
type Store interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, userID string, u Update) error
}

// field is one column/key to write. Names are shared by the SQL and
// document stores.
type field struct {
	name  string
	value any
}

func (u Update) fields() []field {
	var fs []field
	if u.DisplayName != nil {
		fs = append(fs, field{"display_name", *u.DisplayName})
	}
	if u.Grade != nil {
		fs = append(fs, field{"grade", *u.Grade})
	}
	if u.Onboarded != nil {
		fs = append(fs, field{"onboarded", *u.Onboarded})
	}
	if u.TotalXP != nil {
		fs = append(fs, field{"total_xp", *u.TotalXP})
	}
	if u.WeeklyXP != nil {
		fs = append(fs, field{"weekly_xp", *u.WeeklyXP})
	}
	if u.CurrentStreak != nil {
		fs = append(fs, field{"current_streak", *u.CurrentStreak})
	}
	if u.HighestStreak != nil {
		fs = append(fs, field{"highest_streak", *u.HighestStreak})
	}
	if u.LastActivity != nil {
		fs = append(fs, field{"last_activity", u.LastActivity.UTC()})
	}
	if u.LastXPReset != nil {
		fs = append(fs, field{"last_xp_reset", u.LastXPReset.UTC()})
	}
	if u.LastPracticedChapter != nil {
		fs = append(fs, field{"last_practiced_chapter", *u.LastPracticedChapter})
	}
	return fs
}

// IsEmpty reports whether the update writes nothing.
func (u Update) IsEmpty() bool {
	return len(u.fields()) == 0
}

// Apply copies the set fields of u into p.
func (p *Profile) Apply(u Update) {
	if u.DisplayName != nil {
		p.DisplayName = *u.DisplayName
	}
	if u.Grade != nil {
		p.Grade = *u.Grade
	}
	if u.Onboarded != nil {
		p.Onboarded = *u.Onboarded
	}
	if u.TotalXP != nil {
		p.TotalXP = *u.TotalXP
	}
	if u.WeeklyXP != nil {
		p.WeeklyXP = *u.WeeklyXP
	}
	if u.CurrentStreak != nil {
		p.CurrentStreak = *u.CurrentStreak
	}
	if u.HighestStreak != nil {
		p.HighestStreak = *u.HighestStreak
	}
	if u.LastActivity != nil {
		t := *u.LastActivity
		p.LastActivity = &t
	}
	if u.LastXPReset != nil {
		t := *u.LastXPReset
		p.LastXPReset = &t
	}
	if u.LastPracticedChapter != nil {
		p.LastPracticedChapter = *u.LastPracticedChapter
	}
}

// Ptr returns a pointer to v, for building Updates.
func Ptr[T any](v T) *T {
	return &v
}
