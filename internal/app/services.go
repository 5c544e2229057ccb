package app

import (
	"gorm.io/gorm"

	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/realtime"
	"github.com/yellowpin/yellowpin-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Conversation services.ConversationService
	MessageLog   services.MessageLogService
	ReadState    services.ReadStateService
	Notification services.NotificationService
	Gateway      services.GatewayService
	BotResponder services.BotResponderService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, reposet Repos, hub *realtime.SSEHub) Services {
	log.Info("Wiring services...")

	conversation := services.NewConversationService(db, log, reposet.Conversation, clients.Store)
	messageLog := services.NewMessageLogService(log, clients.Store, conversation)
	readState := services.NewReadStateService(log, clients.Store, messageLog)
	notification := services.NewNotificationService(log, conversation, readState, cfg.SummarizeParallelism)
	gateway := services.NewGatewayService(log, hub, clients.Bus)
	botResponder := services.NewBotResponderService(log, reposet.Bot, clients.Assist, conversation, messageLog)

	return Services{
		Auth:         services.NewAuthService(log, cfg.JWTSecretKey),
		Conversation: conversation,
		MessageLog:   messageLog,
		ReadState:    readState,
		Notification: notification,
		Gateway:      gateway,
		BotResponder: botResponder,
	}
}
