package gamification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/p-n-ai/pai-learn/internal/notify"
	"github.com/p-n-ai/pai-learn/internal/profile"
)

// Input errors returned before any profile is read.
var (
	ErrUserRequired  = errors.New("user id is required")
	ErrGradeRequired = errors.New("grade is required")
)

// Leaderboard receives a user's counters after every successful XP write.
type Leaderboard interface {
	Record(ctx context.Context, userID string, weeklyXP, totalXP int, at time.Time) error
}

// ErrorReporter is told about every persistence failure the engine hits.
type ErrorReporter interface {
	ReportPersistenceError(ctx context.Context, err *profile.PersistenceError)
}

// ReporterFunc adapts a function to ErrorReporter.
type ReporterFunc func(ctx context.Context, err *profile.PersistenceError)

func (f ReporterFunc) ReportPersistenceError(ctx context.Context, err *profile.PersistenceError) {
	f(ctx, err)
}

// SlogReporter logs persistence failures. Permission problems are logged
// at error level since they do not heal on retry.
type SlogReporter struct{}

func (SlogReporter) ReportPersistenceError(ctx context.Context, err *profile.PersistenceError) {
	level := slog.LevelWarn
	if err.Kind == profile.KindPermission {
		level = slog.LevelError
	}
	slog.Log(ctx, level, "profile persistence failed",
		"op", err.Op,
		"user_id", err.UserID,
		"kind", err.Kind,
		"error", err.Err,
	)
}

// Completion is a finished quiz or revision session.
type Completion struct {
	UserID        string
	QuestionCount int
	ChapterID     string
	At            time.Time
}

// Outcome carries what a completion computed. Err holds the persistence
// failure, if any; the transitions are valid either way.
type Outcome struct {
	Streak  StreakTransition `json:"streak"`
	XP      XPTransition     `json:"xp"`
	Profile profile.Profile  `json:"profile"`
	Saved   bool             `json:"saved"`
	Err     error            `json:"-"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets where streak and XP signals are sent.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithLeaderboard mirrors XP counters into l after each successful write.
func WithLeaderboard(l Leaderboard) Option {
	return func(e *Engine) { e.leaderboard = l }
}

// WithEventLogger records quiz_completed and onboarded activity events.
func WithEventLogger(l profile.EventLogger) Option {
	return func(e *Engine) { e.events = l }
}

// WithErrorReporter replaces the default SlogReporter.
func WithErrorReporter(r ErrorReporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// WithLocation sets the zone that defines calendar days and weeks.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// WithClock overrides time.Now for completions without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine loads a profile, computes the transitions, fires signals and
// writes the changed fields back.
type Engine struct {
	store       profile.Store
	notifier    notify.Notifier
	leaderboard Leaderboard
	events      profile.EventLogger
	reporter    ErrorReporter
	loc         *time.Location
	now         func() time.Time
}

// NewEngine creates an engine over store. Without options it logs
// persistence failures with slog, uses UTC days and sends no signals.
func NewEngine(store profile.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		notifier: notify.Nop{},
		events:   profile.NopEventLogger{},
		reporter: SlogReporter{},
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the zone the engine counts days in.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// CompleteQuiz applies a completion to the user's profile.
//
// A failed load returns the error and computes nothing. A failed write
// still returns the computed Outcome (signals already fired) with Err set.
func (e *Engine) CompleteQuiz(ctx context.Context, c Completion) (Outcome, error) {
	if c.UserID == "" {
		return Outcome{}, ErrUserRequired
	}
	at := c.At
	if at.IsZero() {
		at = e.now()
	}

	current, err := e.load(ctx, c.UserID)
	if err != nil {
		return Outcome{}, err
	}

	streak := ComputeStreakTransition(*current, at, e.loc)
	xp := ComputeXPTransition(*current, c.QuestionCount, at, e.loc)

	if streak.Increased {
		e.notifier.Notify(ctx, notify.Signal{
			Kind:   notify.StreakIncreased,
			UserID: c.UserID,
			Streak: streak.NewStreak,
			At:     at,
		})
	}
	if xp.Awarded {
		e.notifier.Notify(ctx, notify.Signal{
			Kind:     notify.XPAwarded,
			UserID:   c.UserID,
			XP:       xp.Award,
			WeeklyXP: xp.NewWeeklyXP,
			TotalXP:  xp.NewTotalXP,
			At:       at,
		})
	}

	u := completionUpdate(streak, xp, c.ChapterID)
	next := *current
	next.Apply(u)
	out := Outcome{Streak: streak, XP: xp, Profile: next}

	if u.IsEmpty() {
		out.Saved = true
		return out, nil
	}

	if err := e.store.Update(ctx, c.UserID, u); err != nil {
		perr := e.report(ctx, "update", c.UserID, err)
		out.Err = perr
		return out, perr
	}
	out.Saved = true

	if xp.Awarded && e.leaderboard != nil {
		if err := e.leaderboard.Record(ctx, c.UserID, xp.NewWeeklyXP, xp.NewTotalXP, at); err != nil {
			slog.Warn("leaderboard update failed", "user_id", c.UserID, "error", err)
		}
	}
	if err := e.events.LogEvent(ctx, profile.Event{
		UserID:    c.UserID,
		EventType: profile.EventQuizCompleted,
		Data: map[string]any{
			"question_count": c.QuestionCount,
			"chapter_id":     c.ChapterID,
			"xp_award":       xp.Award,
			"streak":         streak.NewStreak,
		},
		CreatedAt: at,
	}); err != nil {
		slog.Warn("activity event failed", "user_id", c.UserID, "error", err)
	}

	return out, nil
}

// completionUpdate writes streak fields only when the streak changed and
// XP fields only when XP was awarded.
func completionUpdate(streak StreakTransition, xp XPTransition, chapterID string) profile.Update {
	var u profile.Update
	if streak.Changed {
		u.CurrentStreak = profile.Ptr(streak.NewStreak)
		u.HighestStreak = profile.Ptr(streak.NewHighestStreak)
		u.LastActivity = profile.Ptr(streak.LastActivity)
	}
	if xp.Awarded {
		u.WeeklyXP = profile.Ptr(xp.NewWeeklyXP)
		u.TotalXP = profile.Ptr(xp.NewTotalXP)
		if xp.ResetOccurred {
			u.LastXPReset = xp.LastXPReset
		}
	}
	if chapterID != "" {
		u.LastPracticedChapter = profile.Ptr(chapterID)
	}
	return u
}

// Onboard records the user's display name and grade and marks them onboarded.
func (e *Engine) Onboard(ctx context.Context, userID, displayName, grade string) (*profile.Profile, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if grade == "" {
		return nil, ErrGradeRequired
	}

	u := profile.Update{
		DisplayName: profile.Ptr(displayName),
		Grade:       profile.Ptr(grade),
		Onboarded:   profile.Ptr(true),
	}
	if err := e.store.Update(ctx, userID, u); err != nil {
		return nil, e.report(ctx, "update", userID, err)
	}

	if err := e.events.LogEvent(ctx, profile.Event{
		UserID:    userID,
		EventType: profile.EventOnboarded,
		Data:      map[string]any{"grade": grade},
	}); err != nil {
		slog.Warn("activity event failed", "user_id", userID, "error", err)
	}

	return e.Profile(ctx, userID)
}

// Profile returns the stored profile. A missing profile is an error
// matching profile.ErrNotFound.
func (e *Engine) Profile(ctx context.Context, userID string) (*profile.Profile, error) {
	p, err := e.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, err
		}
		return nil, e.report(ctx, "get", userID, err)
	}
	return p, nil
}

// load returns the stored profile, or a fresh one when none exists yet.
func (e *Engine) load(ctx context.Context, userID string) (*profile.Profile, error) {
	p, err := e.store.Get(ctx, userID)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, profile.ErrNotFound) {
		return &profile.Profile{UserID: userID}, nil
	}
	return nil, e.report(ctx, "get", userID, err)
}

// report normalises err to a PersistenceError and hands it to the reporter.
func (e *Engine) report(ctx context.Context, op, userID string, err error) *profile.PersistenceError {
	var perr *profile.PersistenceError
	if !errors.As(err, &perr) {
		perr = &profile.PersistenceError{Op: op, UserID: userID, Kind: profile.KindOther, Err: err}
	}
	e.reporter.ReportPersistenceError(ctx, perr)
	return perr
}
