// Package docstore provides a MongoDB client wrapper.
package docstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store wraps a MongoDB client and the application database.
type Store struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// ParseURL validates a MongoDB connection URL.
func ParseURL(url string) (*options.ClientOptions, error) {
	if url == "" {
		return nil, fmt.Errorf("mongo URL is empty")
	}
	opts := options.Client().ApplyURI(url)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mongo URL: %w", err)
	}
	return opts, nil
}

// New connects to MongoDB and pings the server.
func New(ctx context.Context, url, database string) (*Store, error) {
	if database == "" {
		return nil, fmt.Errorf("mongo database name is empty")
	}
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	return &Store{Client: client, Database: client.Database(database)}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// HealthCheck verifies the connection is alive.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.Client.Ping(ctx, nil)
}
