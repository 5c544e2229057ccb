package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yellowpin/yellowpin-backend/internal/apierr"
	"github.com/yellowpin/yellowpin-backend/internal/clients/redis"
	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/repos"
	"github.com/yellowpin/yellowpin-backend/internal/types"
)

// CacheTTL is the sliding lifetime of all fast-store state: metadata cache,
// message logs and read watermarks.
const CacheTTL = 24 * time.Hour

// ConversationID derives the stable identifier for a pair of parties.
// Deliberately order-sensitive: Resolve("u1","u2") and Resolve("u2","u1") key
// different threads, and existing durable records depend on that.
func ConversationID(partyA, partyB string) string {
	return partyA + "_" + partyB
}

// MetadataProvider is the slice of the resolver that other services need to
// fill in implicit party identifiers.
type MetadataProvider interface {
	GetMetadata(ctx context.Context, conversationID string) (*types.ConversationMetadata, error)
}

type ConversationService interface {
	MetadataProvider

	// Resolve loads or creates the durable conversation for the ordered pair
	// and returns it together with the current message history.
	Resolve(ctx context.Context, partyA, partyB string) (*types.Conversation, []types.Message, error)
	SetMode(ctx context.Context, conversationID, mode string) (*types.ConversationMetadata, error)
	ListForUser(ctx context.Context, userID string) ([]*types.Conversation, error)
}

type conversationService struct {
	db            *gorm.DB
	log           *logger.Logger
	conversations repos.ConversationRepo
	store         redis.Store
}

func NewConversationService(db *gorm.DB, log *logger.Logger, conversations repos.ConversationRepo, store redis.Store) ConversationService {
	return &conversationService{
		db:            db,
		log:           log.With("service", "ConversationService"),
		conversations: conversations,
		store:         store,
	}
}

func (cs *conversationService) Resolve(ctx context.Context, partyA, partyB string) (*types.Conversation, []types.Message, error) {
	if partyA == "" || partyB == "" {
		return nil, nil, apierr.Validation(fmt.Errorf("both party identifiers are required"))
	}

	conversationID := ConversationID(partyA, partyB)

	conversation, err := cs.conversations.GetByID(ctx, nil, conversationID)
	if err != nil {
		return nil, nil, err
	}
	if conversation == nil {
		conversation, err = cs.conversations.Create(ctx, nil, &types.Conversation{
			ID:     conversationID,
			PartyA: partyA,
			PartyB: partyB,
			Mode:   types.ModeHuman,
		})
		if err != nil {
			// Concurrent first contact: another resolver won the insert.
			// Re-read; surface the create error only if the record still
			// isn't there.
			existing, getErr := cs.conversations.GetByID(ctx, nil, conversationID)
			if getErr != nil || existing == nil {
				return nil, nil, err
			}
			conversation = existing
		} else {
			cs.log.Info("Created conversation", "conversation_id", conversationID)
		}
	}

	cs.refreshCache(ctx, conversation)

	history, err := readMessageLog(ctx, cs.store, conversationID)
	if err != nil {
		return nil, nil, err
	}
	return conversation, history, nil
}

func (cs *conversationService) GetMetadata(ctx context.Context, conversationID string) (*types.ConversationMetadata, error) {
	var meta types.ConversationMetadata
	hit, err := cs.store.GetJSON(ctx, metadataKey(conversationID), &meta)
	if err != nil {
		cs.log.Warn("Metadata cache read failed, falling back to durable record", "conversation_id", conversationID, "error", err)
	}
	if hit && err == nil {
		return &meta, nil
	}

	conversation, err := cs.conversations.GetByID(ctx, nil, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apierr.NotFound(fmt.Errorf("conversation %s not found", conversationID))
	}

	cs.refreshCache(ctx, conversation)
	return metadataOf(conversation), nil
}

func (cs *conversationService) SetMode(ctx context.Context, conversationID, mode string) (*types.ConversationMetadata, error) {
	if !types.ValidMode(mode) {
		return nil, apierr.Validation(fmt.Errorf("invalid mode %q", mode))
	}

	affected, err := cs.conversations.UpdateMode(ctx, nil, conversationID, mode)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, apierr.NotFound(fmt.Errorf("conversation %s not found", conversationID))
	}

	conversation, err := cs.conversations.GetByID(ctx, nil, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apierr.NotFound(fmt.Errorf("conversation %s not found", conversationID))
	}

	cs.refreshCache(ctx, conversation)
	cs.log.Info("Conversation mode updated", "conversation_id", conversationID, "mode", mode)
	return metadataOf(conversation), nil
}

func (cs *conversationService) ListForUser(ctx context.Context, userID string) ([]*types.Conversation, error) {
	if userID == "" {
		return nil, apierr.Validation(fmt.Errorf("user identifier is required"))
	}
	return cs.conversations.ListByParty(ctx, nil, userID)
}

// refreshCache rewrites the metadata cache entry. Cache failures are logged
// and ignored; the durable record stays the source of truth.
func (cs *conversationService) refreshCache(ctx context.Context, conversation *types.Conversation) {
	if err := cs.store.SetJSON(ctx, metadataKey(conversation.ID), metadataOf(conversation), CacheTTL); err != nil {
		cs.log.Warn("Failed to refresh metadata cache", "conversation_id", conversation.ID, "error", err)
	}
}

func metadataOf(c *types.Conversation) *types.ConversationMetadata {
	return &types.ConversationMetadata{
		ConversationID: c.ID,
		PartyA:         c.PartyA,
		PartyB:         c.PartyB,
		Mode:           c.Mode,
	}
}
