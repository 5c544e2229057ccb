package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/repos"
	"github.com/yellowpin/yellowpin-backend/internal/requestdata"
	"github.com/yellowpin/yellowpin-backend/internal/services"
	"github.com/yellowpin/yellowpin-backend/internal/types"
)

type BotHandler struct {
	log       *logger.Logger
	bots      repos.BotRepo
	responder services.BotResponderService
	gateway   services.GatewayService
}

func NewBotHandler(log *logger.Logger, bots repos.BotRepo, responder services.BotResponderService, gateway services.GatewayService) *BotHandler {
	return &BotHandler{
		log:       log.With("handler", "BotHandler"),
		bots:      bots,
		responder: responder,
		gateway:   gateway,
	}
}

// POST /api/bot/messages
// Hands an inbound message to the automated responder and broadcasts the
// reply. Always returns a message; the responder degrades instead of failing.
func (bh *BotHandler) SendMessage(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	var req struct {
		ConversationID string `json:"conversation_id"`
		Text           string `json:"text"`
		SenderID       string `json:"sender_id"`
		ReceiverID     string `json:"receiver_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}
	if req.ConversationID == "" || req.Text == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errMissingFields)
		return
	}
	if req.SenderID == "" {
		req.SenderID = rd.UserID
	}

	reply := bh.responder.HandleIncoming(c.Request.Context(), req.ConversationID, req.SenderID, req.ReceiverID, req.Text)
	bh.gateway.Broadcast(c.Request.Context(), req.ConversationID, reply)

	RespondOK(c, gin.H{"message": reply})
}

// POST /api/bots
func (bh *BotHandler) CreateBot(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	var req struct {
		Name     string         `json:"name"`
		Settings datatypes.JSON `json:"settings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}
	if req.Name == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errMissingFields)
		return
	}

	bot := &types.Bot{
		OwnerID:  rd.UserID,
		Name:     req.Name,
		Settings: req.Settings,
	}
	created, err := bh.bots.Create(c.Request.Context(), nil, bot)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"bot": created})
}

// GET /api/bots/:id
func (bh *BotHandler) GetBot(c *gin.Context) {
	botID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}

	bot, err := bh.bots.GetByID(c.Request.Context(), nil, botID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if bot == nil {
		RespondError(c, http.StatusNotFound, "NOT_FOUND", errBotNotFound)
		return
	}
	RespondOK(c, gin.H{"bot": bot})
}

// POST /api/bots/:id/knowledge
func (bh *BotHandler) AddKnowledge(c *gin.Context) {
	botID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}
	if req.Content == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errMissingFields)
		return
	}

	bot, err := bh.bots.GetByID(c.Request.Context(), nil, botID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if bot == nil {
		RespondError(c, http.StatusNotFound, "NOT_FOUND", errBotNotFound)
		return
	}

	entry, err := bh.bots.AddKnowledge(c.Request.Context(), nil, &types.BotKnowledge{
		BotID:   botID,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"knowledge": entry})
}

// GET /api/bots/:id/knowledge
func (bh *BotHandler) ListKnowledge(c *gin.Context) {
	botID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}

	entries, err := bh.bots.ListKnowledge(c.Request.Context(), nil, botID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"knowledge": entries})
}
