package profile

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ProfilesCollection is the collection MongoStore reads and writes.
const ProfilesCollection = "profiles"

// MongoStore is a document-DB Store. Documents are keyed by user id in _id.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a store on db's profiles collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(ProfilesCollection)}
}

func (s *MongoStore) Get(ctx context.Context, userID string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var p Profile
	if err := s.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&p); err != nil {
		return nil, newError("get", userID, classifyMongo(err), err)
	}
	return &p, nil
}

func (s *MongoStore) Update(ctx context.Context, userID string, u Update) error {
	if u.IsEmpty() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	opts := options.UpdateOne().SetUpsert(true)
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": userID}, updateDocument(u, time.Now()), opts)
	if err != nil {
		return newError("update", userID, classifyMongo(err), fmt.Errorf("upsert profile: %w", err))
	}
	return nil
}

// updateDocument builds the $set for u. Only set fields are written so
// concurrent writers touching different fields do not clobber each other.
func updateDocument(u Update, now time.Time) bson.M {
	set := bson.M{"updated_at": now.UTC()}
	for _, f := range u.fields() {
		set[f.name] = f.value
	}
	return bson.M{"$set": set}
}
