package services

// Key layout of the fast store. Everything lives under the conversation
// namespace and expires with the 24h window.
func metadataKey(conversationID string) string { return "conversation:meta:" + conversationID }
func logKey(conversationID string) string      { return "conversation:log:" + conversationID }
func watermarkKey(conversationID, userID string) string {
	return "conversation:read:" + conversationID + ":" + userID
}
