package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yellowpin/yellowpin-backend/internal/logger"
)

// SSEHub tracks the live client connections of this instance and the rooms
// each is joined to. It only does local delivery; cross-instance relay is the
// gateway's job.
type SSEHub struct {
	mu            sync.RWMutex
	logger        *logger.Logger
	subscriptions map[string]map[*SSEClient]bool
}

func NewSSEHub(log *logger.Logger) *SSEHub {
	return &SSEHub{
		logger:        log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*SSEClient]bool),
	}
}

func (hub *SSEHub) NewSSEClient(userID string) *SSEClient {
	return &SSEClient{
		ID:       uuid.New(),
		UserID:   userID,
		Rooms:    make(map[string]bool),
		Outbound: make(chan SSEMessage, 16),
		done:     make(chan struct{}),
		Logger:   hub.logger.With("clientID", userID),
	}
}

func (hub *SSEHub) JoinRoom(client *SSEClient, room string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	room = strings.TrimSpace(room)
	if room == "" {
		return
	}

	client.Rooms[room] = true

	clients, exists := hub.subscriptions[room]
	if !exists {
		clients = make(map[*SSEClient]bool)
		hub.subscriptions[room] = clients
	}
	clients[client] = true

	hub.logger.Debug("SSE client joined room", "clientID", client.ID, "room", room)
}

func (hub *SSEHub) LeaveRoom(client *SSEClient, room string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	room = strings.TrimSpace(room)
	if room == "" {
		return
	}
	delete(client.Rooms, room)

	if subMap, ok := hub.subscriptions[room]; ok {
		delete(subMap, client)
		if len(subMap) == 0 {
			delete(hub.subscriptions, room)
		}
	}
	hub.logger.Debug("SSE client left room", "clientID", client.ID, "room", room)
}

func (hub *SSEHub) RemoveClient(client *SSEClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for room := range client.Rooms {
		if subMap, ok := hub.subscriptions[room]; ok {
			delete(subMap, client)
			if len(subMap) == 0 {
				delete(hub.subscriptions, room)
			}
		}
	}
	client.Rooms = make(map[string]bool)
}

// Relay delivers msg to every local client in the room. Clients with a full
// outbound buffer are skipped; they recover on their next pull-based summary.
func (hub *SSEHub) Relay(msg SSEMessage) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if msg.Room == "" {
		return
	}
	clientsMap, ok := hub.subscriptions[msg.Room]
	if !ok {
		return
	}
	for c := range clientsMap {
		select {
		case c.Outbound <- msg:
		default:
			hub.logger.Warn("Dropping SSE message; outbound buffer full", "clientID", c.ID, "room", msg.Room)
		}
	}
}

func (hub *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *SSEClient) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			hub.logger.Debug("SSE client context done", "clientID", client.ID, "err", ctx.Err())
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg := <-client.Outbound:
			jsonBytes, err := json.Marshal(msg)
			if err != nil {
				hub.logger.Warn("Failed to marshal SSE message", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\n", msg.Event)
			_, _ = fmt.Fprintf(w, "data: %s\n\n", string(jsonBytes))
			flusher.Flush()
		}
	}
}

// CloseClient is idempotent: a reconnect closes the replaced client while the
// old stream handler's cleanup still holds a reference to it, so both paths
// end up here.
func (hub *SSEHub) CloseClient(client *SSEClient) {
	client.closeOnce.Do(func() {
		close(client.done)
		hub.RemoveClient(client)
		close(client.Outbound)
	})
}
