package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yellowpin/yellowpin-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthMiddleware:      middlewareset.Auth,
		ConversationHandler: handlerset.Conversation,
		NotificationHandler: handlerset.Notification,
		BotHandler:          handlerset.Bot,
		RealtimeHandler:     handlerset.Realtime,
		AllowOrigins:        cfg.AllowOrigins,
	})
}
