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
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productsCollectionName = "products"

type MongoProductStore struct {
	collection *mongo.Collection
}

func NewMongoProductStore(db *mongo.Database) *MongoProductStore {
	return &MongoProductStore{collection: db.Collection(productsCollectionName)}
}

func (s *MongoProductStore) Create(ctx context.Context, product *models.Product) error {
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	result, err := s.collection.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}
	return nil
}

func (s *MongoProductStore) CreateMany(ctx context.Context, products []*models.Product) error {
	docs := make([]interface{}, 0, len(products))
	for _, p := range products {
		p.CreatedAt = time.Now()
		p.UpdatedAt = time.Now()
		docs = append(docs, p)
	}

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert products: %w", err)
	}
	return nil
}

func (s *MongoProductStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

// GetByIDs fetches a batch of products keyed by id, for cart view joins.
func (s *MongoProductStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]*models.Product{}, nil
	}

	cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*models.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	byID := make(map[primitive.ObjectID]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func (s *MongoProductStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	set["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func (s *MongoProductStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("product: %w", ErrNotFound)
	}
	return nil
}

// ToggleActive flips the soft-deactivation flag and returns the updated product.
func (s *MongoProductStore) ToggleActive(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{"is_active": !product.IsActive, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Product
	if err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to toggle product status: %w", err)
	}
	return &updated, nil
}

// AdjustStock applies a single atomic stock/sales delta. When stockDelta is
// negative the filter requires enough stock, so the counter can never go
// negative under concurrent checkouts; an insufficient balance surfaces as
// ErrNotFound on the guarded match.
func (s *MongoProductStore) AdjustStock(ctx context.Context, id primitive.ObjectID, stockDelta, salesDelta int) error {
	filter := bson.M{"_id": id}
	if stockDelta < 0 {
		filter["stock"] = bson.M{"$gte": -stockDelta}
	}

	update := bson.M{
		"$inc": bson.M{"stock": stockDelta, "sales": salesDelta},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("product stock adjustment: %w", ErrNotFound)
	}
	return nil
}

func (s *MongoProductStore) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

func (s *MongoProductStore) List(ctx context.Context, query *models.ProductListQuery) ([]*models.Product, int64, error) {
	filter := bson.M{}
	if !query.IncludeInactive {
		filter["is_active"] = true
	}
	if query.IsActive != nil {
		filter["is_active"] = *query.IsActive
	}
	if query.Search != "" {
		pattern := primitive.Regex{Pattern: query.Search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
		}
	}
	if query.Category != "" && query.Category != "all" {
		filter["category"] = query.Category
	}
	if query.MinPrice != nil || query.MaxPrice != nil {
		price := bson.M{}
		if query.MinPrice != nil {
			price["$gte"] = *query.MinPrice
		}
		if query.MaxPrice != nil {
			price["$lte"] = *query.MaxPrice
		}
		filter["price"] = price
	}

	sortBy := query.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortDir := -1
	if query.SortOrder == "asc" {
		sortDir = 1
	}

	totalCount, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	findOptions := options.Find().SetSort(bson.D{{Key: sortBy, Value: sortDir}})
	if query.Limit > 0 {
		findOptions.SetLimit(query.Limit)
		findOptions.SetSkip((query.Page - 1) * query.Limit)
	}

	cursor, err := s.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*models.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}
	if products == nil {
		products = []*models.Product{}
	}

	return products, totalCount, nil
}

// TopBySales backs the admin dashboard top-products widget.
func (s *MongoProductStore) TopBySales(ctx context.Context, limit int64) ([]*models.Product, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "sales", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.collection.Find(ctx, bson.M{"is_active": true}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list top products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*models.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode top products: %w", err)
	}
	return products, nil
}

func (s *MongoProductStore) Categories(ctx context.Context) ([]string, error) {
	values, err := s.collection.Distinct(ctx, "category", bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := v.(string); ok {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

func (s *MongoProductStore) CountActive(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (s *MongoProductStore) Count(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// CountLowStock counts active products below the given threshold.
func (s *MongoProductStore) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	filter := bson.M{"stock": bson.M{"$lt": threshold}, "is_active": true}
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count low-stock products: %w", err)
	}
	return count, nil
}
