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

const messagesCollectionName = "messages"

type MongoMessageStore struct {
	collection *mongo.Collection
}

func NewMongoMessageStore(db *mongo.Database) *MongoMessageStore {
	return &MongoMessageStore{collection: db.Collection(messagesCollectionName)}
}

func (s *MongoMessageStore) Create(ctx context.Context, message *models.Message) error {
	message.CreatedAt = time.Now()
	message.UpdatedAt = time.Now()

	result, err := s.collection.InsertOne(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		message.ID = oid
	}
	return nil
}

func (s *MongoMessageStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var message models.Message
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&message)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("message: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find message: %w", err)
	}
	return &message, nil
}

// visibleTo excludes globally deleted messages and those the user soft-deleted
// for themselves. A for_everyone deletion always sets is_deleted, so the flag
// filter covers it.
func visibleTo(userID primitive.ObjectID) bson.M {
	return bson.M{
		"is_deleted": false,
		"deleted_by": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"user":        userID,
			"delete_type": models.DeleteForMe,
		}}},
	}
}

// ListConversation returns one page of a conversation filtered by the
// caller's visibility. Pagination walks backwards from the newest message,
// but each page comes back in chronological order for rendering.
func (s *MongoMessageStore) ListConversation(ctx context.Context, conversationID string, userID primitive.ObjectID, limit, offset int64) ([]*models.Message, int64, error) {
	filter := visibleTo(userID)
	filter["conversation"] = conversationID

	totalCount, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
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
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, 0, fmt.Errorf("failed to decode messages: %w", err)
	}
	if messages == nil {
		messages = []*models.Message{}
	}

	return chronological(messages), totalCount, nil
}

// chronological flips a newest-first page into ascending created_at order.
func chronological(messages []*models.Message) []*models.Message {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages
}

// MarkConversationRead flips every unread incoming message of the
// conversation to read for the given recipient.
func (s *MongoMessageStore) MarkConversationRead(ctx context.Context, conversationID string, recipientID primitive.ObjectID) error {
	filter := bson.M{
		"conversation": conversationID,
		"recipient":    recipientID,
		"status":       bson.M{"$ne": models.MessageStatusRead},
	}
	update := bson.M{"$set": bson.M{
		"status":     models.MessageStatusRead,
		"read_at":    time.Now(),
		"updated_at": time.Now(),
	}}

	if _, err := s.collection.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to mark conversation read: %w", err)
	}
	return nil
}

// MarkRead marks a single message read; only its recipient matches.
func (s *MongoMessageStore) MarkRead(ctx context.Context, messageID, recipientID primitive.ObjectID) (*models.Message, error) {
	filter := bson.M{"_id": messageID, "recipient": recipientID}
	update := bson.M{"$set": bson.M{
		"status":     models.MessageStatusRead,
		"read_at":    time.Now(),
		"updated_at": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var message models.Message
	err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&message)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("message: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to mark message read: %w", err)
	}
	return &message, nil
}

// AppendDeletion records a soft delete. for_everyone also raises the global
// is_deleted flag; the record itself is never removed.
func (s *MongoMessageStore) AppendDeletion(ctx context.Context, messageID primitive.ObjectID, record models.DeletionRecord) error {
	update := bson.M{
		"$push": bson.M{"deleted_by": record},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	if record.DeleteType == models.DeleteForEveryone {
		update["$set"] = bson.M{"is_deleted": true, "updated_at": time.Now()}
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": messageID}, update)
	if err != nil {
		return fmt.Errorf("failed to record message deletion: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("message: %w", ErrNotFound)
	}
	return nil
}

// Search runs a case-insensitive content search across the user's visible
// messages, optionally scoped to one conversation.
func (s *MongoMessageStore) Search(ctx context.Context, userID primitive.ObjectID, query, conversationID string, limit int64) ([]*models.Message, error) {
	filter := visibleTo(userID)
	filter["$or"] = bson.A{
		bson.M{"sender": userID},
		bson.M{"recipient": userID},
	}
	filter["content"] = primitive.Regex{Pattern: query, Options: "i"}
	if conversationID != "" {
		filter["conversation"] = conversationID
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	return messages, nil
}

// UserConversations groups the user's visible messages by conversation,
// keeping the latest message and the unread count per thread.
func (s *MongoMessageStore) UserConversations(ctx context.Context, userID primitive.ObjectID) ([]*models.ConversationSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"$or":        bson.A{bson.M{"sender": userID}, bson.M{"recipient": userID}},
			"is_deleted": false,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$conversation",
			"last_message": bson.M{"$first": "$$ROOT"},
			"unread_count": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$recipient", userID}},
					bson.M{"$ne": bson.A{"$status", models.MessageStatusRead}},
				}},
				1,
				0,
			}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "last_message.created_at", Value: -1}}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var summaries []*models.ConversationSummary
	if err = cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}
	if summaries == nil {
		summaries = []*models.ConversationSummary{}
	}
	return summaries, nil
}

// AllConversations is the admin overview: every conversation with message and
// unread counts, optionally filtered by sender name or content.
func (s *MongoMessageStore) AllConversations(ctx context.Context, search string, limit, offset int64) ([]*models.ConversationSummary, int64, error) {
	match := bson.M{"is_deleted": false}
	if search != "" {
		pattern := primitive.Regex{Pattern: search, Options: "i"}
		match["$or"] = bson.A{
			bson.M{"sender_info.name": pattern},
			bson.M{"content": pattern},
		}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$conversation",
			"last_message":  bson.M{"$first": "$$ROOT"},
			"message_count": bson.M{"$sum": 1},
			"unread_count": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$ne": bson.A{"$status", models.MessageStatusRead}},
				1,
				0,
			}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "last_message.created_at", Value: -1}}}},
		{{Key: "$skip", Value: offset}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to aggregate conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var summaries []*models.ConversationSummary
	if err = cursor.All(ctx, &summaries); err != nil {
		return nil, 0, fmt.Errorf("failed to decode conversations: %w", err)
	}
	if summaries == nil {
		summaries = []*models.ConversationSummary{}
	}

	total, err := s.collection.Distinct(ctx, "conversation", match)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count conversations: %w", err)
	}

	return summaries, int64(len(total)), nil
}

func (s *MongoMessageStore) Stats(ctx context.Context) (*models.ChatStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"total_messages": bson.M{"$sum": 1},
			"conversations":  bson.M{"$addToSet": "$conversation"},
			"unread_messages": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$ne": bson.A{"$status", models.MessageStatusRead}},
				1,
				0,
			}}},
		}}},
		{{Key: "$project", Value: bson.M{
			"total_messages":      1,
			"unread_messages":     1,
			"total_conversations": bson.M{"$size": "$conversations"},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate chat stats: %w", err)
	}
	defer cursor.Close(ctx)

	var results []*models.ChatStats
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode chat stats: %w", err)
	}
	if len(results) == 0 {
		return &models.ChatStats{}, nil
	}
	return results[0], nil
}

// CountUnread counts every message not yet read, for the admin widgets.
func (s *MongoMessageStore) CountUnread(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"status": bson.M{"$ne": models.MessageStatusRead}})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
