package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// EventsCollection is the collection MongoEventLogger appends to.
const EventsCollection = "activity_events"

var (
	errEventType = errors.New("event_type is required")
	errEventUser = errors.New("user_id is required")
)

// Activity event types.
const (
	EventQuizCompleted = "quiz_completed"
	EventOnboarded     = "onboarded"
)

// Event is one entry in a user's activity log.
type Event struct {
	UserID    string
	EventType string
	Data      map[string]any
	CreatedAt time.Time
}

// EventLogger records activity events.
type EventLogger interface {
	LogEvent(ctx context.Context, event Event) error
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(context.Context, Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(_ context.Context, event Event) error {
	if event.EventType == "" {
		return errEventType
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// PostgresEventLogger inserts events into the activity_events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresEventLogger(pool *pgxpool.Pool) *PostgresEventLogger {
	return &PostgresEventLogger{pool: pool}
}

func (l *PostgresEventLogger) LogEvent(ctx context.Context, event Event) error {
	if l == nil || l.pool == nil {
		return errors.New("event logger pool is nil")
	}
	if err := validateEvent(event); err != nil {
		return err
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := l.pool.Exec(ctx,
		`INSERT INTO activity_events (user_id, event_type, data, created_at)
		 VALUES ($1, $2, $3::jsonb, $4)`,
		event.UserID,
		event.EventType,
		string(data),
		createdAt,
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("event logged",
		"type", event.EventType,
		"user_id", event.UserID,
	)
	return nil
}

// MongoEventLogger appends events to the activity_events collection.
type MongoEventLogger struct {
	collection *mongo.Collection
}

func NewMongoEventLogger(db *mongo.Database) *MongoEventLogger {
	return &MongoEventLogger{collection: db.Collection(EventsCollection)}
}

func (l *MongoEventLogger) LogEvent(ctx context.Context, event Event) error {
	if l == nil || l.collection == nil {
		return errors.New("event logger collection is nil")
	}
	doc, err := eventDocument(event, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := l.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("event logged",
		"type", event.EventType,
		"user_id", event.UserID,
	)
	return nil
}

func validateEvent(event Event) error {
	if event.EventType == "" {
		return errEventType
	}
	if event.UserID == "" {
		return errEventUser
	}
	return nil
}

// eventDocument mirrors the activity_events row layout. A zero CreatedAt
// is stamped with now.
func eventDocument(event Event, now time.Time) (bson.M, error) {
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	data := event.Data
	if data == nil {
		data = map[string]any{}
	}
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	return bson.M{
		"user_id":    event.UserID,
		"event_type": event.EventType,
		"data":       data,
		"created_at": createdAt.UTC(),
	}, nil
}
