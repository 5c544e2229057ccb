package app

import (
	"github.com/yellowpin/yellowpin-backend/internal/handlers"
	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/realtime"
)

type Handlers struct {
	Conversation *handlers.ConversationHandler
	Notification *handlers.NotificationHandler
	Bot          *handlers.BotHandler
	Realtime     *handlers.RealtimeHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, reposet Repos, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Conversation: handlers.NewConversationHandler(log, serviceset.Conversation, serviceset.MessageLog, serviceset.ReadState, serviceset.Gateway),
		Notification: handlers.NewNotificationHandler(log, serviceset.Notification),
		Bot:          handlers.NewBotHandler(log, reposet.Bot, serviceset.BotResponder, serviceset.Gateway),
		Realtime:     handlers.NewRealtimeHandler(log, hub),
	}
}
