package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/types"
)

type ConversationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, conversation *types.Conversation) (*types.Conversation, error)
	GetByID(ctx context.Context, tx *gorm.DB, conversationID string) (*types.Conversation, error)
	ListByParty(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Conversation, error)
	UpdateMode(ctx context.Context, tx *gorm.DB, conversationID string, mode string) (int64, error)
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: baseLog.With("repo", "ConversationRepo")}
}

func (cr *conversationRepo) Create(ctx context.Context, tx *gorm.DB, conversation *types.Conversation) (*types.Conversation, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if err := transaction.WithContext(ctx).Create(conversation).Error; err != nil {
		return nil, err
	}
	return conversation, nil
}

// GetByID returns (nil, nil) when no record exists.
func (cr *conversationRepo) GetByID(ctx context.Context, tx *gorm.DB, conversationID string) (*types.Conversation, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Conversation
	if err := transaction.WithContext(ctx).
		Where("id = ?", conversationID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (cr *conversationRepo) ListByParty(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Conversation, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Conversation
	if err := transaction.WithContext(ctx).
		Where("party_a = ? OR party_b = ?", userID, userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *conversationRepo) UpdateMode(ctx context.Context, tx *gorm.DB, conversationID string, mode string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Conversation{}).
		Where("id = ?", conversationID).
		Update("mode", mode)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
