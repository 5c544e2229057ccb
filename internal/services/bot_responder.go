package services

import (
	"context"

	"github.com/yellowpin/yellowpin-backend/internal/clients/assist"
	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/repos"
	"github.com/yellowpin/yellowpin-backend/internal/types"
)

// Fixed replies used when the bot cannot answer. The orchestrator never
// surfaces an error to its caller; every failure path degrades into one of
// these messages.
const (
	ApologyReply  = "Sorry, I don't have an answer for that yet. A member of our team will follow up with you here."
	DegradedReply = "Our assistant is temporarily unavailable. Please try again in a few minutes."
)

// BotResponderService answers on behalf of a conversation in bot mode.
// HandleIncoming always returns a reply message; generation and persistence
// failures are absorbed into a degraded reply.
type BotResponderService interface {
	HandleIncoming(ctx context.Context, conversationID, senderID, receiverID, text string) types.Message
}

type botResponderService struct {
	log      *logger.Logger
	bots     repos.BotRepo
	assist   assist.Client
	metadata MetadataProvider
	messages MessageLogService
	clock    *msClock
}

func NewBotResponderService(log *logger.Logger, bots repos.BotRepo, assistClient assist.Client, metadata MetadataProvider, messages MessageLogService) BotResponderService {
	return &botResponderService{
		log:      log.With("service", "BotResponderService"),
		bots:     bots,
		assist:   assistClient,
		metadata: metadata,
		messages: messages,
		clock:    &msClock{},
	}
}

func (bs *botResponderService) HandleIncoming(ctx context.Context, conversationID, senderID, receiverID, text string) types.Message {
	senderID, receiverID = bs.resolveParties(ctx, conversationID, senderID, receiverID)

	replyText := bs.composeReply(ctx, conversationID, receiverID, text)

	reply := types.Message{
		SenderID:   receiverID,
		ReceiverID: senderID,
		Text:       replyText,
		Role:       types.RoleReceiver,
	}

	stored, err := bs.messages.Append(ctx, conversationID, reply)
	if err != nil {
		bs.log.Error("Failed to persist bot reply, returning unpersisted message", "conversation_id", conversationID, "error", err)
		reply.Timestamp = bs.clock.Now()
		return reply
	}
	return stored
}

func (bs *botResponderService) resolveParties(ctx context.Context, conversationID, senderID, receiverID string) (string, string) {
	if senderID != "" && receiverID != "" {
		return senderID, receiverID
	}
	meta, err := bs.metadata.GetMetadata(ctx, conversationID)
	if err != nil {
		bs.log.Warn("Could not resolve conversation metadata for bot reply", "conversation_id", conversationID, "error", err)
		return senderID, receiverID
	}
	if senderID == "" && receiverID == "" {
		return meta.PartyA, meta.PartyB
	}
	if senderID == "" {
		return meta.Counterpart(receiverID), receiverID
	}
	return senderID, meta.Counterpart(senderID)
}

// composeReply picks the reply text: generated when the counterpart owns a
// bot with configured knowledge, a fixed apology when it doesn't, a fixed
// degraded reply when anything upstream fails.
func (bs *botResponderService) composeReply(ctx context.Context, conversationID, botOwnerID, question string) string {
	if botOwnerID == "" {
		bs.log.Warn("Bot reply requested without a resolvable counterpart", "conversation_id", conversationID)
		return DegradedReply
	}

	bot, err := bs.bots.GetByOwner(ctx, nil, botOwnerID)
	if err != nil {
		bs.log.Warn("Bot lookup failed", "owner_id", botOwnerID, "error", err)
		return DegradedReply
	}
	if bot == nil {
		return ApologyReply
	}

	knowledge, err := bs.bots.KnowledgeCount(ctx, nil, bot.ID)
	if err != nil {
		bs.log.Warn("Knowledge count failed", "bot_id", bot.ID, "error", err)
		return DegradedReply
	}
	if knowledge == 0 {
		return ApologyReply
	}

	text, err := bs.assist.GenerateReply(ctx, bot.ID, question, conversationID)
	if err != nil {
		bs.log.Warn("Assist generation failed, degrading reply", "bot_id", bot.ID, "conversation_id", conversationID, "error", err)
		return DegradedReply
	}
	if text == "" {
		return ApologyReply
	}
	return text
}
