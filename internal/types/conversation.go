package types

import (
	"time"
)

// Conversation modes. Human mode routes inbound messages to the business's
// staff; bot mode hands them to the automated responder.
const (
	ModeHuman = "human"
	ModeBot   = "bot"
)

func ValidMode(mode string) bool {
	return mode == ModeHuman || mode == ModeBot
}

// Conversation is the durable record for a two-party thread. The ID is the
// ordered concatenation of the party identifiers (see services.ConversationID),
// so it doubles as the lookup key for the message log and metadata cache.
type Conversation struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	PartyA    string    `gorm:"type:text;not null;index" json:"party_a"`
	PartyB    string    `gorm:"type:text;not null;index" json:"party_b"`
	Mode      string    `gorm:"type:text;not null;default:'human'" json:"mode"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversation" }

// ConversationMetadata is the ephemeral cached view of a Conversation held in
// the fast store with a TTL. Always reconstructable from the durable record.
type ConversationMetadata struct {
	ConversationID string `json:"conversation_id"`
	PartyA         string `json:"party_a"`
	PartyB         string `json:"party_b"`
	Mode           string `json:"mode"`
}

// Counterpart returns the other party of the pair, or "" when userID is not a
// participant.
func (m *ConversationMetadata) Counterpart(userID string) string {
	switch userID {
	case m.PartyA:
		return m.PartyB
	case m.PartyB:
		return m.PartyA
	}
	return ""
}
