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

const usersCollectionName = "users"

type MongoUserStore struct {
	collection *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{collection: db.Collection(usersCollectionName)}
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	result, err := s.collection.InsertOne(ctx, user)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("user already exists: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (s *MongoUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// GetByEmailOrCPF backs duplicate-registration checks.
func (s *MongoUserStore) GetByEmailOrCPF(ctx context.Context, email, cpf string) (*models.User, error) {
	filter := bson.M{"$or": bson.A{bson.M{"email": email}, bson.M{"cpf": cpf}}}

	var user models.User
	err := s.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user by email or cpf: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) Update(ctx context.Context, id primitive.ObjectID, input *models.UpdateUserInput) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Email != nil {
		set["email"] = *input.Email
	}
	if input.Phone != nil {
		set["phone"] = *input.Phone
	}
	if input.CPF != nil {
		set["cpf"] = *input.CPF
	}
	if input.CEP != nil {
		set["cep"] = *input.CEP
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

// ToggleActive flips the account flag and returns the updated user.
func (s *MongoUserStore) ToggleActive(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{"is_active": !user.IsActive, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.User
	if err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to toggle user status: %w", err)
	}
	return &updated, nil
}

// List supports the admin user table: optional name/email/cpf search and
// type filter.
func (s *MongoUserStore) List(ctx context.Context, search string, userType models.UserType, sort bson.D, limit, offset int64) ([]*models.User, int64, error) {
	filter := bson.M{}
	if search != "" {
		pattern := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
			bson.M{"cpf": pattern},
		}
	}
	if userType != "" {
		filter["type"] = userType
	}

	totalCount, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	findOptions := options.Find().SetSort(sort)
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	if offset > 0 {
		findOptions.SetSkip(offset)
	}

	cursor, err := s.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("failed to decode users: %w", err)
	}
	if users == nil {
		users = []*models.User{}
	}

	return users, totalCount, nil
}

func (s *MongoUserStore) CountByType(ctx context.Context, userType models.UserType) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"type": userType})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
