package handlers

import (
	"net/http"
	"time"

	"github.com/Gurilao-dev/loja/internal/realtime"
	"github.com/Gurilao-dev/loja/middleware"
	"github.com/Gurilao-dev/loja/models"
	"github.com/Gurilao-dev/loja/store"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Auth happens in RequireAuth; the origin is not a trust boundary here.
	CheckOrigin: func(*http.Request) bool { return true },
}

type ChatHandler struct {
	messages *store.MongoMessageStore
	users    *store.MongoUserStore
	hub      *realtime.Hub
}

func NewChatHandler(messages *store.MongoMessageStore, users *store.MongoUserStore, hub *realtime.Hub) *ChatHandler {
	return &ChatHandler{messages: messages, users: users, hub: hub}
}

func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.Middleware) {
	group := r.Group("/chat", mw.RequireAuth())
	group.GET("/conversations", h.Conversations)
	group.GET("/messages/:conversationId", h.Messages)
	group.POST("/messages", h.Send)
	group.PATCH("/messages/:messageId/read", h.MarkRead)
	group.DELETE("/messages/:messageId", h.Delete)
	group.GET("/search", h.Search)
	group.GET("/stats", mw.RequireAdmin(), h.Stats)
}

// RegisterWebsocket mounts the realtime endpoint outside the /api prefix.
func (h *ChatHandler) RegisterWebsocket(r *gin.Engine, mw *middleware.Middleware) {
	r.GET("/ws", mw.RequireAuth(), h.Websocket)
}

func (h *ChatHandler) Conversations(c *gin.Context) {
	user := middleware.CurrentUser(c)
	conversations, err := h.messages.UserConversations(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondOK(c, "", gin.H{"conversations": conversations})
}

// Messages lists a conversation chronologically and marks the caller's unread
// incoming messages as read.
func (h *ChatHandler) Messages(c *gin.Context) {
	conversationID := c.Param("conversationId")
	user := middleware.CurrentUser(c)

	if !user.IsAdmin() && !models.IsConversationParticipant(conversationID, user.ID) {
		respondError(c, http.StatusForbidden, "Acesso negado a esta conversa")
		return
	}

	page, limit := pageParams(c, 50)
	ctx := c.Request.Context()

	messages, total, err := h.messages.ListConversation(ctx, conversationID, user.ID, limit, (page-1)*limit)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	if err := h.messages.MarkConversationRead(ctx, conversationID, user.ID); err != nil {
		log.Warn().Err(err).Str("conversation", conversationID).Msg("failed to mark conversation read")
	}

	respondOK(c, "", gin.H{
		"messages":   messages,
		"pagination": paginationMeta(page, limit, total),
	})
}

func (h *ChatHandler) Send(c *gin.Context) {
	var input models.SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}

	recipientID, err := primitive.ObjectIDFromHex(input.RecipientID)
	if err != nil {
		respondError(c, http.StatusNotFound, "Destinatário não encontrado")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.users.GetByID(ctx, recipientID); err != nil {
		respondStoreError(c, err, "Destinatário não encontrado")
		return
	}

	user := middleware.CurrentUser(c)
	conversationID := input.ConversationID
	if conversationID == "" {
		conversationID = models.ConversationID(user.ID, recipientID)
	}

	msgType := input.Type
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	message := &models.Message{
		Conversation: conversationID,
		Sender:       user.ID,
		SenderInfo: models.SenderInfo{
			Name: user.Name,
			Type: user.Type,
		},
		Recipient: recipientID,
		Content:   input.Content,
		Type:      msgType,
		Status:    models.MessageStatusSent,
	}

	if err := h.messages.Create(ctx, message); err != nil {
		respondInternalError(c, err)
		return
	}

	// Delivery over the socket is best-effort; the database copy is the truth.
	h.hub.Broadcast(conversationID, realtime.EventNewMessage, message)

	respondCreated(c, "Mensagem enviada", gin.H{"message": message})
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	messageID, err := primitive.ObjectIDFromHex(c.Param("messageId"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Mensagem não encontrada")
		return
	}

	user := middleware.CurrentUser(c)
	message, err := h.messages.MarkRead(c.Request.Context(), messageID, user.ID)
	if err != nil {
		respondStoreError(c, err, "Mensagem não encontrada")
		return
	}

	h.hub.Broadcast(message.Conversation, realtime.EventMessageRead, gin.H{
		"message_id": message.ID.Hex(),
		"user_id":    user.ID.Hex(),
	})

	respondOK(c, "Mensagem marcada como lida", gin.H{"message": message})
}

// Delete records a soft deletion. for_me hides the message from the caller
// only; for_everyone is restricted to the sender and hides it from both.
func (h *ChatHandler) Delete(c *gin.Context) {
	messageID, err := primitive.ObjectIDFromHex(c.Param("messageId"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Mensagem não encontrada")
		return
	}

	var input models.DeleteMessageInput
	if err := c.ShouldBindJSON(&input); err != nil || input.DeleteType == "" {
		input.DeleteType = models.DeleteForMe
	}
	if input.DeleteType != models.DeleteForMe && input.DeleteType != models.DeleteForEveryone {
		respondError(c, http.StatusBadRequest, "Tipo de exclusão inválido")
		return
	}

	ctx := c.Request.Context()
	message, err := h.messages.GetByID(ctx, messageID)
	if err != nil {
		respondStoreError(c, err, "Mensagem não encontrada")
		return
	}

	user := middleware.CurrentUser(c)
	isSender := message.Sender == user.ID
	isRecipient := message.Recipient == user.ID

	if !isSender && !isRecipient {
		respondError(c, http.StatusForbidden, "Acesso negado a esta mensagem")
		return
	}
	if input.DeleteType == models.DeleteForEveryone && !isSender {
		respondError(c, http.StatusForbidden, "Apenas o remetente pode excluir para todos")
		return
	}

	record := models.DeletionRecord{
		User:       user.ID,
		DeletedAt:  time.Now(),
		DeleteType: input.DeleteType,
	}
	if err := h.messages.AppendDeletion(ctx, messageID, record); err != nil {
		respondStoreError(c, err, "Mensagem não encontrada")
		return
	}

	respondOK(c, "Mensagem excluída", nil)
}

func (h *ChatHandler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		respondError(c, http.StatusBadRequest, "Termo de busca requerido")
		return
	}

	_, limit := pageParams(c, 20)
	user := middleware.CurrentUser(c)

	messages, err := h.messages.Search(c.Request.Context(), user.ID, query, c.Query("conversationId"), limit)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondOK(c, "", gin.H{"messages": messages})
}

func (h *ChatHandler) Stats(c *gin.Context) {
	stats, err := h.messages.Stats(c.Request.Context())
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondOK(c, "", gin.H{"stats": stats})
}

// Websocket upgrades the connection and pumps it until close.
func (h *ChatHandler) Websocket(c *gin.Context) {
	user := middleware.CurrentUser(c)

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("user", user.ID.Hex()).Msg("websocket upgrade failed")
		return
	}

	log.Debug().Str("user", user.ID.Hex()).Msg("websocket client connected")
	client := realtime.NewClient(h.hub, conn, user, h.messages, h.users)
	client.Run(c.Request.Context())
}
