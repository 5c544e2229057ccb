package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/realtime"
	"github.com/yellowpin/yellowpin-backend/internal/requestdata"
)

// RealtimeHandler owns the SSE connections of this instance. One stream per
// user; a reconnect replaces the previous stream.
type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub

	mu      sync.RWMutex
	clients map[string]*realtime.SSEClient
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[string]*realtime.SSEClient),
	}
}

// GET /api/sse/stream
// Every stream is auto-joined to the caller's user room so notifications
// arrive without an explicit subscribe.
func (rh *RealtimeHandler) Stream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	userID := rd.UserID

	rh.mu.Lock()
	if existing, ok := rh.clients[userID]; ok {
		rh.hub.CloseClient(existing)
		delete(rh.clients, userID)
	}
	client := rh.hub.NewSSEClient(userID)
	rh.clients[userID] = client
	rh.mu.Unlock()

	rh.hub.JoinRoom(client, realtime.UserRoom(userID))
	rh.log.Info("SSE stream open", "user_id", userID, "client_id", client.ID)

	rh.hub.ServeHTTP(c.Writer, c.Request, client)

	rh.mu.Lock()
	if rh.clients[userID] == client {
		delete(rh.clients, userID)
	}
	rh.mu.Unlock()
	rh.hub.CloseClient(client)
}

// POST /api/sse/subscribe
func (rh *RealtimeHandler) Subscribe(c *gin.Context) {
	client, room, ok := rh.clientAndRoom(c)
	if !ok {
		return
	}
	rh.hub.JoinRoom(client, room)
	c.JSON(http.StatusOK, gin.H{"message": "subscribed", "channel": room})
}

// POST /api/sse/unsubscribe
func (rh *RealtimeHandler) Unsubscribe(c *gin.Context) {
	client, room, ok := rh.clientAndRoom(c)
	if !ok {
		return
	}
	rh.hub.LeaveRoom(client, room)
	c.JSON(http.StatusOK, gin.H{"message": "unsubscribed", "channel": room})
}

func (rh *RealtimeHandler) clientAndRoom(c *gin.Context) (*realtime.SSEClient, string, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return nil, "", false
	}

	var req struct {
		Channel string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel"})
		return nil, "", false
	}

	rh.mu.RLock()
	client, exists := rh.clients[rd.UserID]
	rh.mu.RUnlock()
	if !exists {
		c.JSON(http.StatusConflict, gin.H{"error": "no active SSE connection for this user"})
		return nil, "", false
	}
	return client, req.Channel, true
}
