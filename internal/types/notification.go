package types

// ConversationSummary describes one conversation with unread messages for a
// user's pull-based notification view.
type ConversationSummary struct {
	ConversationID string `json:"conversation_id"`
	WithUserID     string `json:"with_user_id"`
	UnreadCount    int    `json:"unread_count"`
	Preview        string `json:"preview"`
	Timestamp      int64  `json:"timestamp"`
}

type UnreadSummary struct {
	TotalUnread   int                   `json:"total_unread"`
	Conversations []ConversationSummary `json:"conversations"`
}
