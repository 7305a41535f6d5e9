package profile_test

import (
	"testing"

	"github.com/p-n-ai/pai-learn/internal/profile"
)

func TestMemoryEventLogger_LogEvent(t *testing.T) {
	logger := profile.NewMemoryEventLogger()

	err := logger.LogEvent(t.Context(), profile.Event{
		UserID:    "user-1",
		EventType: profile.EventQuizCompleted,
		Data: map[string]any{
			"xp": 30,
		},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	events := logger.Events()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].EventType != profile.EventQuizCompleted {
		t.Errorf("EventType = %q, want quiz_completed", events[0].EventType)
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestMemoryEventLogger_RequiresType(t *testing.T) {
	logger := profile.NewMemoryEventLogger()
	if err := logger.LogEvent(t.Context(), profile.Event{UserID: "u"}); err == nil {
		t.Fatal("expected error for missing event type")
	}
}

func TestPostgresEventLogger_LogEvent_NilPool(t *testing.T) {
	logger := profile.NewPostgresEventLogger(nil)

	err := logger.LogEvent(t.Context(), profile.Event{
		UserID:    "user-1",
		EventType: profile.EventOnboarded,
	})
	if err == nil {
		t.Fatal("expected error for nil pool")
	}
}
