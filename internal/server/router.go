package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yellowpin/yellowpin-backend/internal/handlers"
	"github.com/yellowpin/yellowpin-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware      *middleware.AuthMiddleware
	ConversationHandler *handlers.ConversationHandler
	NotificationHandler *handlers.NotificationHandler
	BotHandler          *handlers.BotHandler
	RealtimeHandler     *handlers.RealtimeHandler
	AllowOrigins        []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Conversations
	api.POST("/conversations", cfg.ConversationHandler.Resolve)
	api.GET("/conversations", cfg.ConversationHandler.List)
	api.GET("/conversations/:id/mode", cfg.ConversationHandler.GetMode)
	api.PUT("/conversations/:id/mode", cfg.ConversationHandler.SetMode)
	api.GET("/conversations/:id/messages", cfg.ConversationHandler.GetMessages)
	api.POST("/conversations/:id/messages", cfg.ConversationHandler.SendMessage)
	api.POST("/conversations/:id/read", cfg.ConversationHandler.MarkRead)

	// Notifications
	api.GET("/notifications/unread", cfg.NotificationHandler.GetUnread)

	// Bot
	api.POST("/bot/messages", cfg.BotHandler.SendMessage)
	api.POST("/bots", cfg.BotHandler.CreateBot)
	api.GET("/bots/:id", cfg.BotHandler.GetBot)
	api.POST("/bots/:id/knowledge", cfg.BotHandler.AddKnowledge)
	api.GET("/bots/:id/knowledge", cfg.BotHandler.ListKnowledge)

	// SSE
	api.GET("/sse/stream", cfg.RealtimeHandler.Stream)
	api.POST("/sse/subscribe", cfg.RealtimeHandler.Subscribe)
	api.POST("/sse/unsubscribe", cfg.RealtimeHandler.Unsubscribe)

	return router
}
