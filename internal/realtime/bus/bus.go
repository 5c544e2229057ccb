package bus

import (
	"context"

	"github.com/yellowpin/yellowpin-backend/internal/realtime"
)

// Bus is the shared publish/subscribe channel coordinating fan-out across
// server instances.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
