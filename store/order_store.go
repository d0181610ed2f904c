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

const ordersCollectionName = "orders"

type MongoOrderStore struct {
	collection *mongo.Collection
}

func NewMongoOrderStore(db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{collection: db.Collection(ordersCollectionName)}
}

func (s *MongoOrderStore) Create(ctx context.Context, order *models.Order) error {
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	result, err := s.collection.InsertOne(ctx, order)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("order number taken: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

func (s *MongoOrderStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &order, nil
}

// GetForCustomer scopes the lookup to the owner, for non-admin reads.
func (s *MongoOrderStore) GetForCustomer(ctx context.Context, id, customerID primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.collection.FindOne(ctx, bson.M{"_id": id, "customer": customerID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &order, nil
}

func (s *MongoOrderStore) ListByCustomer(ctx context.Context, customerID primitive.ObjectID, status models.OrderStatus, limit, offset int64) ([]*models.Order, int64, error) {
	filter := bson.M{"customer": customerID}
	if status != "" && status != "all" {
		filter["status"] = status
	}
	return s.list(ctx, filter, limit, offset)
}

func (s *MongoOrderStore) List(ctx context.Context, query *models.OrderListQuery) ([]*models.Order, int64, error) {
	filter := bson.M{}
	if query.Status != "" && query.Status != "all" {
		filter["status"] = query.Status
	}
	if query.Search != "" {
		pattern := primitive.Regex{Pattern: query.Search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"order_number": pattern},
			bson.M{"customer_info.name": pattern},
			bson.M{"customer_info.email": pattern},
		}
	}
	if query.StartDate != nil || query.EndDate != nil {
		createdAt := bson.M{}
		if query.StartDate != nil {
			createdAt["$gte"] = *query.StartDate
		}
		if query.EndDate != nil {
			createdAt["$lte"] = *query.EndDate
		}
		filter["created_at"] = createdAt
	}

	offset := int64(0)
	if query.Page > 1 {
		offset = (query.Page - 1) * query.Limit
	}
	return s.list(ctx, filter, query.Limit, offset)
}

func (s *MongoOrderStore) list(ctx context.Context, filter bson.M, limit, offset int64) ([]*models.Order, int64, error) {
	totalCount, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	if offset > 0 {
		findOptions.SetSkip(offset)
	}

	cursor, err := s.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*models.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("failed to decode orders: %w", err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}

	return orders, totalCount, nil
}

// UpdateStatus applies status/payment transitions. Delivery and cancellation
// timestamps ride along in set.
func (s *MongoOrderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Order, error) {
	set["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return &order, nil
}

func (s *MongoOrderStore) Count(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

func (s *MongoOrderStore) CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

func (s *MongoOrderStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	filter := bson.M{
		"created_at": bson.M{"$gte": since},
		"status":     bson.M{"$ne": models.OrderStatusCancelado},
	}
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

func (s *MongoOrderStore) Recent(ctx context.Context, limit int64) ([]*models.Order, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*models.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode recent orders: %w", err)
	}
	return orders, nil
}

// Revenue sums the total of all non-cancelled orders created after since
// (zero time means all orders).
func (s *MongoOrderStore) Revenue(ctx context.Context, since time.Time) (float64, error) {
	match := bson.M{"status": bson.M{"$ne": models.OrderStatusCancelado}}
	if !since.IsZero() {
		match["created_at"] = bson.M{"$gte": since}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total"}}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode revenue: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// MonthlySales buckets non-cancelled orders by (year, month) since the given
// time, for the dashboard chart.
func (s *MongoOrderStore) MonthlySales(ctx context.Context, since time.Time) ([]*models.SalesBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"created_at": bson.M{"$gte": since},
			"status":     bson.M{"$ne": models.OrderStatusCancelado},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$created_at"},
				"month": bson.M{"$month": "$created_at"},
			},
			"total_revenue": bson.M{"$sum": "$total"},
			"total_orders":  bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly sales: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []*models.SalesBucket
	if err = cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode monthly sales: %w", err)
	}
	return buckets, nil
}

// SalesReport buckets non-cancelled orders by day, week or month inside the
// optional date range.
func (s *MongoOrderStore) SalesReport(ctx context.Context, start, end *time.Time, groupBy string) ([]*models.SalesBucket, error) {
	match := bson.M{"status": bson.M{"$ne": models.OrderStatusCancelado}}
	if start != nil || end != nil {
		createdAt := bson.M{}
		if start != nil {
			createdAt["$gte"] = *start
		}
		if end != nil {
			createdAt["$lte"] = *end
		}
		match["created_at"] = createdAt
	}

	var groupKey bson.M
	switch groupBy {
	case "month":
		groupKey = bson.M{
			"year":  bson.M{"$year": "$created_at"},
			"month": bson.M{"$month": "$created_at"},
		}
	case "week":
		groupKey = bson.M{
			"year": bson.M{"$year": "$created_at"},
			"week": bson.M{"$week": "$created_at"},
		}
	default: // day
		groupKey = bson.M{
			"year":  bson.M{"$year": "$created_at"},
			"month": bson.M{"$month": "$created_at"},
			"day":   bson.M{"$dayOfMonth": "$created_at"},
		}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":                 groupKey,
			"total_revenue":       bson.M{"$sum": "$total"},
			"total_orders":        bson.M{"$sum": 1},
			"average_order_value": bson.M{"$avg": "$total"},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_id.year", Value: 1},
			{Key: "_id.month", Value: 1},
			{Key: "_id.day", Value: 1},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales report: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []*models.SalesBucket
	if err = cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode sales report: %w", err)
	}
	return buckets, nil
}

// TopProducts unwinds order item snapshots and ranks products by quantity
// sold inside the optional date range.
func (s *MongoOrderStore) TopProducts(ctx context.Context, start, end *time.Time, limit int64) ([]*models.TopProduct, error) {
	match := bson.M{"status": bson.M{"$ne": models.OrderStatusCancelado}}
	if start != nil || end != nil {
		createdAt := bson.M{}
		if start != nil {
			createdAt["$gte"] = *start
		}
		if end != nil {
			createdAt["$lte"] = *end
		}
		match["created_at"] = createdAt
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$items.product",
			"total_quantity": bson.M{"$sum": "$items.quantity"},
			"total_revenue":  bson.M{"$sum": "$items.total_price"},
			"product_name":   bson.M{"$first": "$items.product_name"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total_quantity", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top products: %w", err)
	}
	defer cursor.Close(ctx)

	var top []*models.TopProduct
	if err = cursor.All(ctx, &top); err != nil {
		return nil, fmt.Errorf("failed to decode top products: %w", err)
	}
	return top, nil
}
