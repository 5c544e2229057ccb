package types

// Message roles, relative to the conversation: the "sender" role marks the
// party that opened the thread, "receiver" the counterpart. This is an
// authorship tag, not an authentication identity.
const (
	RoleSender   = "sender"
	RoleReceiver = "receiver"
)

func ValidRole(role string) bool {
	return role == RoleSender || role == RoleReceiver
}

// Message is one entry of a conversation's append-only log. Messages live in
// the fast store with the log's TTL and are immutable once appended.
// Timestamp is Unix milliseconds and is the ordering and watermark key.
type Message struct {
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Text       string `json:"text"`
	Role       string `json:"role"`
	Timestamp  int64  `json:"timestamp"`
}
