package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const countersCollectionName = "counters"

// OrderSequenceName is the counter document backing order numbers.
const OrderSequenceName = "order_number"

// MongoCounterStore hands out monotonically increasing sequence values via a
// single atomic findAndModify, so concurrent order creation can never yield
// duplicate numbers.
type MongoCounterStore struct {
	collection *mongo.Collection
}

func NewMongoCounterStore(db *mongo.Database) *MongoCounterStore {
	return &MongoCounterStore{collection: db.Collection(countersCollectionName)}
}

func (s *MongoCounterStore) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to advance counter %s: %w", name, err)
	}

	return counter.Seq, nil
}
