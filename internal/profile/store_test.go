package profile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/p-n-ai/pai-learn/internal/platform/database"
	"github.com/p-n-ai/pai-learn/internal/profile"
)

func TestUpdate_IsEmpty(t *testing.T) {
	if !(profile.Update{}).IsEmpty() {
		t.Error("zero Update should be empty")
	}
	if (profile.Update{Onboarded: profile.Ptr(false)}).IsEmpty() {
		t.Error("Update with a false bool set is not empty")
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := profile.NewMemoryStore()

	_, err := store.Get(t.Context(), "ghost")
	if !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
	var pe *profile.PersistenceError
	if !errors.As(err, &pe) || pe.Op != "get" || pe.UserID != "ghost" {
		t.Errorf("Get() error = %#v, want PersistenceError{Op: get, UserID: ghost}", err)
	}
}

func TestMemoryStore_UpdateWritesOnlySetFields(t *testing.T) {
	ctx := t.Context()
	store := profile.NewMemoryStore()

	if err := store.Update(ctx, "u1", profile.Update{
		DisplayName: profile.Ptr("Asha"),
		Grade:       profile.Ptr("9"),
		TotalXP:     profile.Ptr(100),
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	last := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)
	if err := store.Update(ctx, "u1", profile.Update{
		CurrentStreak: profile.Ptr(2),
		HighestStreak: profile.Ptr(2),
		LastActivity:  &last,
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.DisplayName != "Asha" || got.Grade != "9" || got.TotalXP != 100 {
		t.Errorf("earlier fields lost: %+v", got)
	}
	if got.CurrentStreak != 2 || got.HighestStreak != 2 {
		t.Errorf("streak = %d/%d, want 2/2", got.CurrentStreak, got.HighestStreak)
	}
	if got.LastActivity == nil || !got.LastActivity.Equal(last) {
		t.Errorf("LastActivity = %v, want %v", got.LastActivity, last)
	}
	if got.LastXPReset != nil {
		t.Errorf("LastXPReset = %v, want nil", got.LastXPReset)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := t.Context()
	store := profile.NewMemoryStore()
	last := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	if err := store.Update(ctx, "u1", profile.Update{LastActivity: &last, WeeklyXP: profile.Ptr(10)}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	first, _ := store.Get(ctx, "u1")
	first.WeeklyXP = 999
	*first.LastActivity = time.Time{}

	second, _ := store.Get(ctx, "u1")
	if second.WeeklyXP != 10 || !second.LastActivity.Equal(last) {
		t.Errorf("stored profile was mutated through Get(): %+v", second)
	}
}

func TestMemoryStore_EmptyUpdateCreatesNothing(t *testing.T) {
	ctx := t.Context()
	store := profile.NewMemoryStore()

	if err := store.Update(ctx, "u1", profile.Update{}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, err := store.Get(ctx, "u1"); !errors.Is(err, profile.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestPostgresStore_NilPool(t *testing.T) {
	if _, err := profile.NewPostgresStore(nil); err == nil {
		t.Fatal("NewPostgresStore(nil) should return error")
	}
}

func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("learn"),
		postgres.WithUsername("learn"),
		postgres.WithPassword("learn"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := ctr.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("ConnectionString() error = %v", err)
	}
	db, err := database.New(ctx, url, 4, 1)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	// Second run is a no-op.
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() second run error = %v", err)
	}
	var version int64
	var dirty bool
	if err := db.Pool.QueryRow(ctx,
		`SELECT version, dirty FROM `+database.MigrationsTable,
	).Scan(&version, &dirty); err != nil {
		t.Fatalf("reading schema version: %v", err)
	}
	if version != 2 || dirty {
		t.Fatalf("schema version = %d (dirty %v), want 2 clean", version, dirty)
	}

	store, err := profile.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}

	if _, err := store.Get(ctx, "u1"); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("Get() before insert error = %v, want ErrNotFound", err)
	}

	if err := store.Update(ctx, "u1", profile.Update{
		DisplayName: profile.Ptr("Asha"),
		Grade:       profile.Ptr("9"),
		Onboarded:   profile.Ptr(true),
	}); err != nil {
		t.Fatalf("Update() insert error = %v", err)
	}

	reset := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	if err := store.Update(ctx, "u1", profile.Update{
		TotalXP:     profile.Ptr(30),
		WeeklyXP:    profile.Ptr(30),
		LastXPReset: &reset,
	}); err != nil {
		t.Fatalf("Update() partial error = %v", err)
	}

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.DisplayName != "Asha" || !got.Onboarded || got.TotalXP != 30 || got.WeeklyXP != 30 {
		t.Errorf("Get() = %+v", got)
	}
	if got.LastXPReset == nil || !got.LastXPReset.Equal(reset) {
		t.Errorf("LastXPReset = %v, want %v", got.LastXPReset, reset)
	}
	if got.LastActivity != nil {
		t.Errorf("LastActivity = %v, want nil", got.LastActivity)
	}

	// The table rejects a streak above the highest streak.
	err = store.Update(ctx, "u1", profile.Update{CurrentStreak: profile.Ptr(5)})
	if err == nil {
		t.Fatal("Update() violating highest >= current should fail")
	}
	if profile.KindOf(err) != profile.KindOther {
		t.Errorf("KindOf() = %q, want other", profile.KindOf(err))
	}

	events := profile.NewPostgresEventLogger(db.Pool)
	if err := events.LogEvent(ctx, profile.Event{UserID: "u1", EventType: profile.EventQuizCompleted, Data: map[string]any{"xp": 30}}); err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}
}
