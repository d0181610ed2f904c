package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique index rejects a write.
var ErrDuplicate = errors.New("duplicate")

// MongoConfig for MongoDB connection
type MongoConfig struct {
	URI     string
	DBName  string
	Timeout time.Duration
}

// NewMongoConnection establishes a new MongoDB client connection.
func NewMongoConnection(ctx context.Context, cfg MongoConfig) (*mongo.Client, error) {
	connectionTimeout := cfg.Timeout
	if connectionTimeout == 0 {
		connectionTimeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	log.Info().Str("db", cfg.DBName).Msg("Connecting to MongoDB")

	clientOptions := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, errors.Join(errors.New("failed to connect to mongodb"), err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
	defer pingCancel()
	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, errors.Join(errors.New("failed to ping mongodb"), err)
	}

	log.Info().Msg("Successfully connected and pinged MongoDB")
	return client, nil
}

// EnsureIndexes creates the indexes the stores rely on. Safe to call on
// every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		usersCollectionName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		productsCollectionName: {
			{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}, {Key: "tags", Value: "text"}}},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "subcategory", Value: 1}}},
			{Keys: bson.D{{Key: "price", Value: 1}}},
			{Keys: bson.D{{Key: "rating.average", Value: -1}}},
		},
		cartsCollectionName: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: unique},
		},
		ordersCollectionName: {
			{Keys: bson.D{{Key: "order_number", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "customer", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		messagesCollectionName: {
			{Keys: bson.D{{Key: "conversation", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "status", Value: 1}}},
		},
		reviewsCollectionName: {
			{Keys: bson.D{{Key: "product", Value: 1}, {Key: "user", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "product", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for collection, models := range specs {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
