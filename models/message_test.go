package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestConversationIDIsSymmetric(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	assert.Equal(t, ConversationID(a, b), ConversationID(b, a))
}

func TestConversationIDParticipants(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	conversation := ConversationID(a, b)

	assert.True(t, IsConversationParticipant(conversation, a))
	assert.True(t, IsConversationParticipant(conversation, b))
	assert.False(t, IsConversationParticipant(conversation, primitive.NewObjectID()))
}

func TestVisibleToForMeHidesOnlyDeleter(t *testing.T) {
	sender := primitive.NewObjectID()
	recipient := primitive.NewObjectID()

	msg := &Message{
		Sender:    sender,
		Recipient: recipient,
		DeletedBy: []DeletionRecord{
			{User: recipient, DeleteType: DeleteForMe},
		},
	}

	assert.True(t, msg.VisibleTo(sender))
	assert.False(t, msg.VisibleTo(recipient))
}

func TestVisibleToForEveryoneHidesBoth(t *testing.T) {
	sender := primitive.NewObjectID()
	recipient := primitive.NewObjectID()

	msg := &Message{
		Sender:    sender,
		Recipient: recipient,
		IsDeleted: true,
		DeletedBy: []DeletionRecord{
			{User: sender, DeleteType: DeleteForEveryone},
		},
	}

	assert.False(t, msg.VisibleTo(sender))
	assert.False(t, msg.VisibleTo(recipient))
}

func TestVisibleToUndeleted(t *testing.T) {
	msg := &Message{Sender: primitive.NewObjectID(), Recipient: primitive.NewObjectID()}
	assert.True(t, msg.VisibleTo(msg.Sender))
	assert.True(t, msg.VisibleTo(msg.Recipient))
}
