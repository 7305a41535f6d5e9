// Package leaderboard ranks users by XP in Redis sorted sets: one set for
// all-time XP and one per calendar week.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/p-n-ai/pai-learn/internal/gamification"
)

const (
	keyTotal        = "leaderboard:total"
	keyWeeklyPrefix = "leaderboard:weekly:"

	// Weekly sets outlive their week so last week's board can still be read.
	weeklyTTL = 14 * 24 * time.Hour

	DefaultLimit = 10
	MaxLimit     = 100
)

var (
	ErrNotRanked    = errors.New("user not on leaderboard")
	ErrInvalidScope = errors.New("invalid leaderboard scope")
)

// Scope selects which board to read.
type Scope string

const (
	ScopeWeekly Scope = "weekly"
	ScopeTotal  Scope = "total"
)

// ParseScope accepts "weekly" and "total"; empty means weekly.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeWeekly:
		return ScopeWeekly, nil
	case ScopeTotal:
		return ScopeTotal, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
}

// Entry is one ranked row. Rank is 1-based.
type Entry struct {
	Rank   int64  `json:"rank"`
	UserID string `json:"user_id"`
	XP     int64  `json:"xp"`
}

// Board reads and writes the leaderboards.
type Board struct {
	client *redis.Client
	loc    *time.Location
}

// New creates a board. Weeks start on Monday in loc.
func New(client *redis.Client, loc *time.Location) *Board {
	if loc == nil {
		loc = time.UTC
	}
	return &Board{client: client, loc: loc}
}

// Record stores the user's current counters. Scores are absolute values
// taken from the profile, so replaying a Record is harmless.
func (b *Board) Record(ctx context.Context, userID string, weeklyXP, totalXP int, at time.Time) error {
	if userID == "" {
		return fmt.Errorf("user id is empty")
	}

	weekly := b.key(ScopeWeekly, at)
	pipe := b.client.Pipeline()
	pipe.ZAdd(ctx, keyTotal, redis.Z{Score: float64(totalXP), Member: userID})
	pipe.ZAdd(ctx, weekly, redis.Z{Score: float64(weeklyXP), Member: userID})
	pipe.Expire(ctx, weekly, weeklyTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("recording leaderboard for %s: %w", userID, err)
	}
	return nil
}

// Top returns up to limit entries, highest XP first. limit is clamped to
// [1, MaxLimit]; zero or negative means DefaultLimit.
func (b *Board) Top(ctx context.Context, scope Scope, at time.Time, limit int) ([]Entry, error) {
	limit = clampLimit(limit)

	zs, err := b.client.ZRevRangeWithScores(ctx, b.key(scope, at), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s leaderboard: %w", scope, err)
	}

	entries := make([]Entry, 0, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		entries = append(entries, Entry{
			Rank:   int64(i + 1),
			UserID: member,
			XP:     int64(z.Score),
		})
	}
	return entries, nil
}

// Rank returns the user's 1-based position and XP on the board.
func (b *Board) Rank(ctx context.Context, scope Scope, at time.Time, userID string) (Entry, error) {
	key := b.key(scope, at)

	rank, err := b.client.ZRevRank(ctx, key, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, ErrNotRanked
		}
		return Entry{}, fmt.Errorf("reading rank: %w", err)
	}
	score, err := b.client.ZScore(ctx, key, userID).Result()
	if err != nil {
		return Entry{}, fmt.Errorf("reading score: %w", err)
	}
	return Entry{Rank: rank + 1, UserID: userID, XP: int64(score)}, nil
}

func (b *Board) key(scope Scope, at time.Time) string {
	if scope == ScopeTotal {
		return keyTotal
	}
	return WeeklyKey(at, b.loc)
}

// WeeklyKey names the weekly set for the week containing at. Weeks are
// the same Monday-based weeks the XP weekly reset uses.
func WeeklyKey(at time.Time, loc *time.Location) string {
	return keyWeeklyPrefix + gamification.StartOfWeek(at, loc).Format(time.DateOnly)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
