package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yellowpin/yellowpin-backend/internal/logger"
)

type SSEClient struct {
	ID       uuid.UUID
	UserID   string
	Rooms    map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	Logger   *logger.Logger

	closeOnce sync.Once
}
