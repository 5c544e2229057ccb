package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/requestdata"
	"github.com/yellowpin/yellowpin-backend/internal/services"
	"github.com/yellowpin/yellowpin-backend/internal/types"
)

type ConversationHandler struct {
	log           *logger.Logger
	conversations services.ConversationService
	messages      services.MessageLogService
	readState     services.ReadStateService
	gateway       services.GatewayService
}

func NewConversationHandler(
	log *logger.Logger,
	conversations services.ConversationService,
	messages services.MessageLogService,
	readState services.ReadStateService,
	gateway services.GatewayService,
) *ConversationHandler {
	return &ConversationHandler{
		log:           log.With("handler", "ConversationHandler"),
		conversations: conversations,
		messages:      messages,
		readState:     readState,
		gateway:       gateway,
	}
}

// POST /api/conversations
// Resolves (creating if needed) the conversation for an ordered pair of
// parties and returns it together with the current history. party_a defaults
// to the caller.
func (ch *ConversationHandler) Resolve(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	var req struct {
		PartyA string `json:"party_a"`
		PartyB string `json:"party_b"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}
	if req.PartyA == "" && rd != nil {
		req.PartyA = rd.UserID
	}

	conversation, history, err := ch.conversations.Resolve(c.Request.Context(), req.PartyA, req.PartyB)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"conversation": conversation, "messages": history})
}

// GET /api/conversations
func (ch *ConversationHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	conversations, err := ch.conversations.ListForUser(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"conversations": conversations})
}

// GET /api/conversations/:id/mode
func (ch *ConversationHandler) GetMode(c *gin.Context) {
	meta, err := ch.conversations.GetMetadata(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"conversation_id": meta.ConversationID, "mode": meta.Mode})
}

// PUT /api/conversations/:id/mode
func (ch *ConversationHandler) SetMode(c *gin.Context) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}

	meta, err := ch.conversations.SetMode(c.Request.Context(), c.Param("id"), req.Mode)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"conversation_id": meta.ConversationID, "mode": meta.Mode})
}

// GET /api/conversations/:id/messages
func (ch *ConversationHandler) GetMessages(c *gin.Context) {
	msgs, err := ch.messages.Range(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"messages": msgs})
}

// POST /api/conversations/:id/messages
// Appends the caller's message, fans it out to the conversation room and
// pushes an unread notification at the receiver.
func (ch *ConversationHandler) SendMessage(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	conversationID := c.Param("id")

	var req struct {
		Text       string `json:"text"`
		Role       string `json:"role"`
		ReceiverID string `json:"receiver_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}

	msg, err := ch.messages.Append(c.Request.Context(), conversationID, types.Message{
		SenderID:   rd.UserID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
		Role:       req.Role,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	ch.gateway.Broadcast(c.Request.Context(), conversationID, msg)
	ch.notifyReceiver(c, conversationID, msg)

	RespondOK(c, gin.H{"message": msg})
}

// POST /api/conversations/:id/read
func (ch *ConversationHandler) MarkRead(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	if err := ch.readState.MarkRead(c.Request.Context(), c.Param("id"), rd.UserID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "read"})
}

// notifyReceiver recomputes the receiver's unread state for this conversation
// and pushes it to their user room. Failures are logged; the send already
// succeeded.
func (ch *ConversationHandler) notifyReceiver(c *gin.Context, conversationID string, msg types.Message) {
	if msg.ReceiverID == "" {
		return
	}
	count, last, err := ch.readState.ComputeUnread(c.Request.Context(), conversationID, msg.ReceiverID)
	if err != nil {
		ch.log.Warn("Could not compute unread for notification", "conversation_id", conversationID, "error", err)
		return
	}
	if count == 0 || last == nil {
		return
	}
	ch.gateway.NotifyUser(c.Request.Context(), msg.ReceiverID, &types.ConversationSummary{
		ConversationID: conversationID,
		WithUserID:     msg.SenderID,
		UnreadCount:    count,
		Preview:        services.Preview(last.Text),
		Timestamp:      last.Timestamp,
	})
}
