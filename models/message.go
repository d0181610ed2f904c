package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered" // schema value only; no code path transitions into it
	MessageStatusRead      MessageStatus = "read"
)

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeImage  MessageType = "image"
	MessageTypeFile   MessageType = "file"
	MessageTypeSystem MessageType = "system"
)

type DeleteType string

const (
	DeleteForMe       DeleteType = "for_me"
	DeleteForEveryone DeleteType = "for_everyone"
)

type MessageAttachment struct {
	Filename string `json:"filename" bson:"filename"`
	URL      string `json:"url" bson:"url"`
	Size     int64  `json:"size" bson:"size"`
	MimeType string `json:"mime_type" bson:"mime_type"`
}

// DeletionRecord is one per-user soft-delete tag. Messages are never
// physically removed, so the same message can be visible to one participant
// and hidden from the other.
type DeletionRecord struct {
	User       primitive.ObjectID `json:"user" bson:"user"`
	DeletedAt  time.Time          `json:"deleted_at" bson:"deleted_at"`
	DeleteType DeleteType         `json:"delete_type" bson:"delete_type"`
}

type SenderInfo struct {
	Name string   `json:"name" bson:"name"`
	Type UserType `json:"type" bson:"type"`
}

type Message struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Conversation string              `json:"conversation" bson:"conversation"`
	Sender       primitive.ObjectID  `json:"sender" bson:"sender"`
	SenderInfo   SenderInfo          `json:"sender_info" bson:"sender_info"`
	Recipient    primitive.ObjectID  `json:"recipient" bson:"recipient"`
	Content      string              `json:"content" bson:"content"`
	Type         MessageType         `json:"type" bson:"type"`
	Attachments  []MessageAttachment `json:"attachments,omitempty" bson:"attachments,omitempty"`
	Status       MessageStatus       `json:"status" bson:"status"`
	ReadAt       *time.Time          `json:"read_at,omitempty" bson:"read_at,omitempty"`
	DeliveredAt  *time.Time          `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
	IsDeleted    bool                `json:"is_deleted" bson:"is_deleted"`
	DeletedBy    []DeletionRecord    `json:"deleted_by,omitempty" bson:"deleted_by,omitempty"`
	ReplyTo      *primitive.ObjectID `json:"reply_to,omitempty" bson:"reply_to,omitempty"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" bson:"updated_at"`
}

// ConversationID derives the stable thread key for a participant pair: the
// two ids sorted and joined with an underscore, so (A,B) and (B,A) always
// land in the same conversation.
func ConversationID(a, b primitive.ObjectID) string {
	ids := []string{a.Hex(), b.Hex()}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// IsParticipant reports whether userID is in the sorted-pair conversation key.
func IsConversationParticipant(conversationID string, userID primitive.ObjectID) bool {
	return strings.Contains(conversationID, userID.Hex())
}

// VisibleTo reports whether the message should appear in userID's view.
// A for_everyone deletion hides it from both participants; a for_me deletion
// hides it only from the user who deleted it.
func (m *Message) VisibleTo(userID primitive.ObjectID) bool {
	if m.IsDeleted {
		return false
	}
	for _, rec := range m.DeletedBy {
		if rec.DeleteType == DeleteForEveryone {
			return false
		}
		if rec.DeleteType == DeleteForMe && rec.User == userID {
			return false
		}
	}
	return true
}

type SendMessageInput struct {
	RecipientID    string      `json:"recipient_id" binding:"required"`
	Content        string      `json:"content" binding:"required"`
	Type           MessageType `json:"type"`
	ConversationID string      `json:"conversation_id"`
}

type DeleteMessageInput struct {
	DeleteType DeleteType `json:"delete_type"`
}

// ConversationSummary is one row of the conversation list: the latest message
// plus the caller's unread count.
type ConversationSummary struct {
	Conversation string   `json:"conversation" bson:"_id"`
	LastMessage  *Message `json:"last_message" bson:"last_message"`
	MessageCount int64    `json:"message_count,omitempty" bson:"message_count,omitempty"`
	UnreadCount  int64    `json:"unread_count" bson:"unread_count"`
}

// ChatStats is the admin chat overview.
type ChatStats struct {
	TotalMessages      int64 `json:"total_messages" bson:"total_messages"`
	TotalConversations int64 `json:"total_conversations" bson:"total_conversations"`
	UnreadMessages     int64 `json:"unread_messages" bson:"unread_messages"`
}
