package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Gurilao-dev/loja/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reviewsCollectionName = "reviews"

type MongoReviewStore struct {
	collection *mongo.Collection
}

func NewMongoReviewStore(db *mongo.Database) *MongoReviewStore {
	return &MongoReviewStore{collection: db.Collection(reviewsCollectionName)}
}

// Create inserts a review; the unique (product, user) index turns a second
// review from the same user into ErrDuplicate.
func (s *MongoReviewStore) Create(ctx context.Context, review *models.Review) error {
	review.CreatedAt = time.Now()
	review.UpdatedAt = time.Now()

	result, err := s.collection.InsertOne(ctx, review)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("review already exists for this product and user: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}
	return nil
}

func (s *MongoReviewStore) ListByProduct(ctx context.Context, productID primitive.ObjectID, limit int64) ([]*models.Review, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := s.collection.Find(ctx, bson.M{"product": productID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []*models.Review
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	if reviews == nil {
		reviews = []*models.Review{}
	}
	return reviews, nil
}

// AverageRating returns the mean rating of a product, zero when unreviewed.
func (s *MongoReviewStore) AverageRating(ctx context.Context, productID primitive.ObjectID) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"product": productID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$rating"}}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate rating: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Avg float64 `bson:"avg"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode rating: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Avg, nil
}

// DeleteByProduct removes all reviews of a product, used when the product
// itself is hard-deleted.
func (s *MongoReviewStore) DeleteByProduct(ctx context.Context, productID primitive.ObjectID) error {
	if _, err := s.collection.DeleteMany(ctx, bson.M{"product": productID}); err != nil {
		return fmt.Errorf("failed to delete reviews: %w", err)
	}
	return nil
}
