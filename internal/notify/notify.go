// Package notify delivers gamification signals (streak increased, XP
// awarded) to whoever is listening.
package notify

import (
	"context"
	"sync"
	"time"
)

// Kind names a signal.
type Kind string

const (
	StreakIncreased Kind = "streak_increased"
	XPAwarded       Kind = "xp_awarded"
)

// Signal is a fire-and-forget event raised while a quiz completion is
// processed. It is sent before the profile write and is not retracted if
// that write fails.
type Signal struct {
	Kind     Kind      `json:"kind"`
	UserID   string    `json:"user_id"`
	Streak   int       `json:"streak,omitempty"`
	XP       int       `json:"xp,omitempty"`
	WeeklyXP int       `json:"weekly_xp,omitempty"`
	TotalXP  int       `json:"total_xp,omitempty"`
	At       time.Time `json:"at"`
}

// Notifier receives signals. Implementations must not block the caller.
type Notifier interface {
	Notify(ctx context.Context, s Signal)
}

// Nop drops every signal.
type Nop struct{}

func (Nop) Notify(context.Context, Signal) {}

// Multi fans a signal out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, s Signal) {
	for _, n := range m {
		n.Notify(ctx, s)
	}
}

// Recorder keeps every signal in memory.
type Recorder struct {
	mu      sync.Mutex
	signals []Signal
}

func NewRecorder() *Recorder {
	return &Recorder{signals: []Signal{}}
}

func (r *Recorder) Notify(_ context.Context, s Signal) {
	r.mu.Lock()
	r.signals = append(r.signals, s)
	r.mu.Unlock()
}

// Signals returns a copy of the recorded signals.
func (r *Recorder) Signals() []Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Signal{}, r.signals...)
}
