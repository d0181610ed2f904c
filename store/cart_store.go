package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gurilao-dev/loja/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const cartsCollectionName = "carts"

type MongoCartStore struct {
	collection *mongo.Collection
}

func NewMongoCartStore(db *mongo.Database) *MongoCartStore {
	return &MongoCartStore{collection: db.Collection(cartsCollectionName)}
}

// GetOrCreate returns the user's cart, creating an empty one lazily.
func (s *MongoCartStore) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := s.collection.FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}

	cart = models.Cart{
		User:        userID,
		Items:       []models.CartItem{},
		LastUpdated: time.Now(),
	}
	result, err := s.collection.InsertOne(ctx, &cart)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		cart.ID = oid
	}
	return &cart, nil
}

// Save replaces the cart's items and totals. Last write wins on concurrent
// updates from the same user.
func (s *MongoCartStore) Save(ctx context.Context, cart *models.Cart) error {
	cart.LastUpdated = time.Now()

	update := bson.M{"$set": bson.M{
		"items":        cart.Items,
		"total_items":  cart.TotalItems,
		"total_price":  cart.TotalPrice,
		"last_updated": cart.LastUpdated,
	}}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": cart.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("cart: %w", ErrNotFound)
	}
	return nil
}

// Clear empties the user's cart and zeroes the totals.
func (s *MongoCartStore) Clear(ctx context.Context, userID primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{
		"items":        []models.CartItem{},
		"total_items":  0,
		"total_price":  0.0,
		"last_updated": time.Now(),
	}}

	if _, err := s.collection.UpdateOne(ctx, bson.M{"user": userID}, update); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
