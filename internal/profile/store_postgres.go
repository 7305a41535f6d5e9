package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store on the profiles table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a profile store on pool.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var p Profile
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, display_name, grade, onboarded, total_xp, weekly_xp,
		        current_streak, highest_streak, last_activity, last_xp_reset,
		        last_practiced_chapter, updated_at
		 FROM profiles
		 WHERE user_id = $1`,
		userID,
	).Scan(
		&p.UserID,
		&p.DisplayName,
		&p.Grade,
		&p.Onboarded,
		&p.TotalXP,
		&p.WeeklyXP,
		&p.CurrentStreak,
		&p.HighestStreak,
		&p.LastActivity,
		&p.LastXPReset,
		&p.LastPracticedChapter,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, newError("get", userID, classifyPostgres(err), err)
	}
	return &p, nil
}

func (s *PostgresStore) Update(ctx context.Context, userID string, u Update) error {
	if u.IsEmpty() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query, args := upsertQuery(userID, u)
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return newError("update", userID, classifyPostgres(err), fmt.Errorf("upsert profile: %w", err))
	}
	return nil
}

// upsertQuery inserts the row or overwrites only the columns set in u.
// Column names come from Update.fields, never from input.
func upsertQuery(userID string, u Update) (string, []any) {
	fields := u.fields()
	columns := make([]string, 0, len(fields)+1)
	placeholders := make([]string, 0, len(fields)+1)
	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)

	columns = append(columns, "user_id")
	placeholders = append(placeholders, "$1")
	args = append(args, userID)

	for i, f := range fields {
		columns = append(columns, f.name)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", f.name, f.name))
		args = append(args, f.value)
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(
		`INSERT INTO profiles (%s, updated_at) VALUES (%s, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET %s`,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(sets, ", "),
	)
	return query, args
}
