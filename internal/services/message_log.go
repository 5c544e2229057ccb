package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/yellowpin/yellowpin-backend/internal/apierr"
	"github.com/yellowpin/yellowpin-backend/internal/clients/redis"
	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/types"
)

// MessageLogService owns the append-only per-conversation log in the fast
// store. Appends reset the log's TTL so active conversations never expire
// mid-use; an evicted log reads back as empty history.
type MessageLogService interface {
	Append(ctx context.Context, conversationID string, msg types.Message) (types.Message, error)
	Range(ctx context.Context, conversationID string) ([]types.Message, error)
}

type messageLogService struct {
	log      *logger.Logger
	store    redis.Store
	metadata MetadataProvider
	clock    *msClock
}

func NewMessageLogService(log *logger.Logger, store redis.Store, metadata MetadataProvider) MessageLogService {
	return &messageLogService{
		log:      log.With("service", "MessageLogService"),
		store:    store,
		metadata: metadata,
		clock:    &msClock{},
	}
}

func (ms *messageLogService) Append(ctx context.Context, conversationID string, msg types.Message) (types.Message, error) {
	if conversationID == "" {
		return types.Message{}, apierr.Validation(fmt.Errorf("conversation identifier is required"))
	}
	if msg.Text == "" {
		return types.Message{}, apierr.Validation(fmt.Errorf("message text is required"))
	}

	resolved, err := ms.resolveParties(ctx, conversationID, msg)
	if err != nil {
		return types.Message{}, err
	}
	msg = resolved

	if msg.Timestamp == 0 {
		msg.Timestamp = ms.clock.Now()
	}

	if err := ms.store.PushJSON(ctx, logKey(conversationID), msg, CacheTTL); err != nil {
		return types.Message{}, err
	}
	return msg, nil
}

func (ms *messageLogService) Range(ctx context.Context, conversationID string) ([]types.Message, error) {
	return readMessageLog(ctx, ms.store, conversationID)
}

// resolveParties fills in implicit sender/receiver/role from the cached
// conversation metadata. It fails closed with MetadataUnavailable rather than
// defaulting silently.
func (ms *messageLogService) resolveParties(ctx context.Context, conversationID string, msg types.Message) (types.Message, error) {
	if msg.SenderID != "" && msg.ReceiverID != "" && msg.Role != "" {
		if !types.ValidRole(msg.Role) {
			return types.Message{}, apierr.Validation(fmt.Errorf("invalid role %q", msg.Role))
		}
		return msg, nil
	}

	meta, err := ms.metadata.GetMetadata(ctx, conversationID)
	if err != nil {
		return types.Message{}, apierr.MetadataUnavailable(fmt.Errorf("resolve parties for %s: %w", conversationID, err))
	}

	if msg.Role == "" {
		switch msg.SenderID {
		case meta.PartyA:
			msg.Role = types.RoleSender
		case meta.PartyB:
			msg.Role = types.RoleReceiver
		default:
			return types.Message{}, apierr.MetadataUnavailable(fmt.Errorf("cannot infer role for sender %q in %s", msg.SenderID, conversationID))
		}
	}
	if !types.ValidRole(msg.Role) {
		return types.Message{}, apierr.Validation(fmt.Errorf("invalid role %q", msg.Role))
	}

	if msg.SenderID == "" {
		if msg.Role == types.RoleSender {
			msg.SenderID = meta.PartyA
		} else {
			msg.SenderID = meta.PartyB
		}
	}
	if msg.ReceiverID == "" {
		if msg.SenderID == meta.PartyA {
			msg.ReceiverID = meta.PartyB
		} else {
			msg.ReceiverID = meta.PartyA
		}
	}

	if msg.SenderID == "" || msg.ReceiverID == "" {
		return types.Message{}, apierr.MetadataUnavailable(fmt.Errorf("unresolved parties for %s", conversationID))
	}
	return msg, nil
}

// readMessageLog is shared with the resolver's history snapshot. A missing key
// means no history, not an error.
func readMessageLog(ctx context.Context, store redis.Store, conversationID string) ([]types.Message, error) {
	raws, err := store.RangeJSON(ctx, logKey(conversationID))
	if err != nil {
		return nil, err
	}
	msgs := make([]types.Message, 0, len(raws))
	for _, raw := range raws {
		var m types.Message
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode message in %s: %w", conversationID, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// msClock hands out strictly increasing Unix-millisecond timestamps within
// this process, so same-millisecond appends stay ordered.
type msClock struct {
	mu   sync.Mutex
	last int64
}

func (c *msClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().UnixMilli()
	if now <= c.last {
		now = c.last + 1
	}
	c.last = now
	return now
}
