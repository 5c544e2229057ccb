package app

import (
	"gorm.io/gorm"

	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/repos"
)

type Repos struct {
	Conversation repos.ConversationRepo
	Bot          repos.BotRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Conversation: repos.NewConversationRepo(db, log),
		Bot:          repos.NewBotRepo(db, log),
	}
}
