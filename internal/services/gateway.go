package services

import (
	"context"
	"sync"

	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/realtime"
	"github.com/yellowpin/yellowpin-backend/internal/realtime/bus"
	"github.com/yellowpin/yellowpin-backend/internal/types"
)

// GatewayService fans stored messages out to connected clients. Local clients
// are relayed to directly through the hub; every broadcast is also published
// on the shared bus so other instances relay to theirs. Delivery is
// at-least-once: the originating instance also receives its own publish back
// from the bus, so its clients may see a duplicate.
type GatewayService interface {
	Start(ctx context.Context) error
	Stop()
	Broadcast(ctx context.Context, conversationID string, msg types.Message)
	NotifyUser(ctx context.Context, userID string, summary *types.ConversationSummary)
}

type gatewayService struct {
	log *logger.Logger
	hub *realtime.SSEHub
	bus bus.Bus

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

// NewGatewayService builds the process-wide gateway. b may be nil when no bus
// is configured (single-instance deployments); fan-out is then local only.
func NewGatewayService(log *logger.Logger, hub *realtime.SSEHub, b bus.Bus) GatewayService {
	return &gatewayService{
		log: log.With("service", "GatewayService"),
		hub: hub,
		bus: b,
	}
}

func (gs *gatewayService) Start(ctx context.Context) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.running {
		return nil
	}

	if gs.bus == nil {
		gs.log.Warn("No bus configured; fan-out is local to this instance")
		gs.running = true
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := gs.bus.StartForwarder(runCtx, func(m realtime.SSEMessage) {
		gs.hub.Relay(m)
	}); err != nil {
		cancel()
		return err
	}
	gs.cancel = cancel
	gs.running = true
	gs.log.Info("Gateway running, bus subscription open")
	return nil
}

func (gs *gatewayService) Stop() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.cancel != nil {
		gs.cancel()
		gs.cancel = nil
	}
	gs.running = false
}

// Broadcast relays locally first so the sender's own instance is never
// affected by bus trouble; a failed publish is logged and swallowed, other
// instances catch up on the next pull-based summary.
func (gs *gatewayService) Broadcast(ctx context.Context, conversationID string, msg types.Message) {
	payload := realtime.SSEMessage{
		Room:  realtime.ConversationRoom(conversationID),
		Event: realtime.SSEEventReceiveMessage,
		Data: map[string]any{
			"conversation_id": conversationID,
			"message":         msg,
		},
	}

	gs.hub.Relay(payload)

	if gs.bus == nil {
		return
	}
	if err := gs.bus.Publish(ctx, payload); err != nil {
		gs.log.Warn("Bus publish failed; delivered locally only", "conversation_id", conversationID, "error", err)
	}
}

// NotifyUser pushes a lightweight unread summary to the user's own room only.
func (gs *gatewayService) NotifyUser(ctx context.Context, userID string, summary *types.ConversationSummary) {
	if summary == nil {
		return
	}
	payload := realtime.SSEMessage{
		Room:  realtime.UserRoom(userID),
		Event: realtime.SSEEventNewNotification,
		Data:  summary,
	}

	gs.hub.Relay(payload)

	if gs.bus == nil {
		return
	}
	if err := gs.bus.Publish(ctx, payload); err != nil {
		gs.log.Warn("Bus publish failed for notification", "user_id", userID, "error", err)
	}
}
