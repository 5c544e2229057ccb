package services

import (
	"context"
	"fmt"

	"github.com/yellowpin/yellowpin-backend/internal/apierr"
	"github.com/yellowpin/yellowpin-backend/internal/clients/redis"
	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/types"
)

// ReadStateService tracks a per-(conversation, user) watermark: every message
// with timestamp <= watermark not authored by the user counts as read. The
// watermark is a best-effort snapshot; concurrent appends may race a MarkRead
// and only ever make the unread count temporarily too low.
type ReadStateService interface {
	MarkRead(ctx context.Context, conversationID, userID string) error
	ComputeUnread(ctx context.Context, conversationID, userID string) (int, *types.Message, error)
}

type readStateService struct {
	log      *logger.Logger
	store    redis.Store
	messages MessageLogService
}

func NewReadStateService(log *logger.Logger, store redis.Store, messages MessageLogService) ReadStateService {
	return &readStateService{
		log:      log.With("service", "ReadStateService"),
		store:    store,
		messages: messages,
	}
}

// MarkRead pins the watermark to the timestamp of the last stored message
// overall, including messages the user sent themselves.
func (rs *readStateService) MarkRead(ctx context.Context, conversationID, userID string) error {
	if conversationID == "" || userID == "" {
		return apierr.Validation(fmt.Errorf("conversation and user identifiers are required"))
	}

	msgs, err := rs.messages.Range(ctx, conversationID)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	watermark := msgs[len(msgs)-1].Timestamp
	return rs.store.SetInt64(ctx, watermarkKey(conversationID, userID), watermark, CacheTTL)
}

func (rs *readStateService) ComputeUnread(ctx context.Context, conversationID, userID string) (int, *types.Message, error) {
	if conversationID == "" || userID == "" {
		return 0, nil, apierr.Validation(fmt.Errorf("conversation and user identifiers are required"))
	}

	watermark, _, err := rs.store.GetInt64(ctx, watermarkKey(conversationID, userID))
	if err != nil {
		return 0, nil, err
	}

	msgs, err := rs.messages.Range(ctx, conversationID)
	if err != nil {
		return 0, nil, err
	}

	count := 0
	var last *types.Message
	for i := range msgs {
		m := msgs[i]
		if m.SenderID == userID || m.Timestamp <= watermark {
			continue
		}
		count++
		last = &msgs[i]
	}
	return count, last, nil
}
