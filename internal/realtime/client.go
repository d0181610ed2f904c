package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gurilao-dev/loja/models"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 32
)

type MessageStore interface {
	Create(ctx context.Context, message *models.Message) error
	MarkRead(ctx context.Context, messageID, recipientID primitive.ObjectID) (*models.Message, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Client is one authenticated websocket connection.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	user     *models.User
	messages MessageStore
	users    UserStore
	send     chan OutboundEvent
}

func NewClient(hub *Hub, conn *websocket.Conn, user *models.User, messages MessageStore, users UserStore) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		user:     user,
		messages: messages,
		users:    users,
		send:     make(chan OutboundEvent, sendBuffer),
	}
}

func (c *Client) Name() string {
	return c.user.ID.Hex()
}

// Deliver queues a frame without blocking. A full buffer means the consumer
// is too slow; the frame is dropped and false returned.
func (c *Client) Deliver(event OutboundEvent) bool {
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// Run pumps the connection until it closes, then detaches from the hub.
func (c *Client) Run(ctx context.Context) {
	go c.writePump()
	c.readPump(ctx)
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Leave(c)
		close(c.send)
		c.conn.Close()
		log.Debug().Str("user", c.Name()).Msg("websocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame inboundFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("user", c.Name()).Msg("websocket read error")
			}
			return
		}

		switch frame.Event {
		case EventJoinConversation:
			c.handleJoin(frame.Data)
		case EventSendMessage:
			c.handleSendMessage(ctx, frame.Data)
		case EventMarkAsRead:
			c.handleMarkAsRead(ctx, frame.Data)
		default:
			c.Deliver(OutboundEvent{Event: EventError, Data: map[string]string{
				"message": "unknown event: " + frame.Event,
			}})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleJoin(data json.RawMessage) {
	var payload struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == "" {
		c.Deliver(OutboundEvent{Event: EventError, Data: map[string]string{
			"message": "conversation_id is required",
		}})
		return
	}

	// Only participants (or admins) may listen in on a conversation.
	if !c.user.IsAdmin() && !models.IsConversationParticipant(payload.ConversationID, c.user.ID) {
		c.Deliver(OutboundEvent{Event: EventError, Data: map[string]string{
			"message": "access denied to this conversation",
		}})
		return
	}

	c.hub.Join(payload.ConversationID, c)
}

func (c *Client) handleSendMessage(ctx context.Context, data json.RawMessage) {
	var payload struct {
		ConversationID string             `json:"conversation_id"`
		RecipientID    string             `json:"recipient_id"`
		Content        string             `json:"content"`
		Type           models.MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Content == "" || payload.RecipientID == "" {
		c.Deliver(OutboundEvent{Event: EventError, Data: map[string]string{
			"message": "recipient_id and content are required",
		}})
		return
	}

	recipientID, err := primitive.ObjectIDFromHex(payload.RecipientID)
	if err != nil {
		c.Deliver(OutboundEvent{Event: EventError, Data: map[string]string{
			"message": "invalid recipient id",
		}})
		return
	}
	if _, err := c.users.GetByID(ctx, recipientID); err != nil {
		c.Deliver(OutboundEvent{Event: EventError, Data: map[string]string{
			"message": "recipient not found",
		}})
		return
	}

	conversationID := payload.ConversationID
	if conversationID == "" {
		conversationID = models.ConversationID(c.user.ID, recipientID)
	}

	msgType := payload.Type
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	message := &models.Message{
		Conversation: conversationID,
		Sender:       c.user.ID,
		SenderInfo: models.SenderInfo{
			Name: c.user.Name,
			Type: c.user.Type,
		},
		Recipient: recipientID,
		Content:   payload.Content,
		Type:      msgType,
		Status:    models.MessageStatusSent,
	}

	// Persist first; the push below is best-effort.
	if err := c.messages.Create(ctx, message); err != nil {
		log.Error().Err(err).Str("user", c.Name()).Msg("failed to persist chat message")
		c.Deliver(OutboundEvent{Event: EventError, Data: map[string]string{
			"message": "failed to send message",
		}})
		return
	}

	c.hub.Broadcast(conversationID, EventNewMessage, message)
}

func (c *Client) handleMarkAsRead(ctx context.Context, data json.RawMessage) {
	var payload struct {
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.MessageID == "" {
		c.Deliver(OutboundEvent{Event: EventError, Data: map[string]string{
			"message": "message_id is required",
		}})
		return
	}

	messageID, err := primitive.ObjectIDFromHex(payload.MessageID)
	if err != nil {
		c.Deliver(OutboundEvent{Event: EventError, Data: map[string]string{
			"message": "invalid message id",
		}})
		return
	}

	message, err := c.messages.MarkRead(ctx, messageID, c.user.ID)
	if err != nil {
		return
	}

	c.hub.BroadcastExcept(message.Conversation, c, EventMessageRead, map[string]string{
		"message_id": message.ID.Hex(),
		"user_id":    c.user.ID.Hex(),
	})
}
