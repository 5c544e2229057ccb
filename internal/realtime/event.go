package realtime

// SSEEvent names the server-to-client event types pushed through the hub.
type SSEEvent string

const (
	SSEEventReceiveMessage  SSEEvent = "receive_message"
	SSEEventNewNotification SSEEvent = "new_notification"
)

// SSEMessage is the unit relayed to a room, locally and across instances via
// the bus. Room carries the full room key so a forwarding instance can relay
// without interpreting the payload.
type SSEMessage struct {
	Room  string   `json:"room"`
	Event SSEEvent `json:"event"`
	Data  any      `json:"data,omitempty"`
}

// Room keys. One room per conversation, one per user (notifications only).
func ConversationRoom(conversationID string) string { return "conversation:" + conversationID }
func UserRoom(userID string) string                 { return "user:" + userID }
