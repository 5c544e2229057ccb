package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/types"
)

type BotRepo interface {
	Create(ctx context.Context, tx *gorm.DB, bot *types.Bot) (*types.Bot, error)
	GetByID(ctx context.Context, tx *gorm.DB, botID uuid.UUID) (*types.Bot, error)
	GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string) (*types.Bot, error)
	KnowledgeCount(ctx context.Context, tx *gorm.DB, botID uuid.UUID) (int64, error)
	AddKnowledge(ctx context.Context, tx *gorm.DB, entry *types.BotKnowledge) (*types.BotKnowledge, error)
	ListKnowledge(ctx context.Context, tx *gorm.DB, botID uuid.UUID) ([]*types.BotKnowledge, error)
}

type botRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBotRepo(db *gorm.DB, baseLog *logger.Logger) BotRepo {
	return &botRepo{db: db, log: baseLog.With("repo", "BotRepo")}
}

func (br *botRepo) Create(ctx context.Context, tx *gorm.DB, bot *types.Bot) (*types.Bot, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	if err := transaction.WithContext(ctx).Create(bot).Error; err != nil {
		return nil, err
	}
	return bot, nil
}

// GetByID returns (nil, nil) when no record exists.
func (br *botRepo) GetByID(ctx context.Context, tx *gorm.DB, botID uuid.UUID) (*types.Bot, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var result types.Bot
	if err := transaction.WithContext(ctx).
		Where("id = ?", botID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// GetByOwner returns (nil, nil) when the party owns no bot.
func (br *botRepo) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string) (*types.Bot, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var result types.Bot
	if err := transaction.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (br *botRepo) KnowledgeCount(ctx context.Context, tx *gorm.DB, botID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.BotKnowledge{}).
		Where("bot_id = ?", botID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (br *botRepo) AddKnowledge(ctx context.Context, tx *gorm.DB, entry *types.BotKnowledge) (*types.BotKnowledge, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (br *botRepo) ListKnowledge(ctx context.Context, tx *gorm.DB, botID uuid.UUID) ([]*types.BotKnowledge, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var results []*types.BotKnowledge
	if err := transaction.WithContext(ctx).
		Where("bot_id = ?", botID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
