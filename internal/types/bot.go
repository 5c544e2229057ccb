package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Bot is the automated responder owned by one party (a business account).
// A conversation in bot mode is answered by the bot owned by the counterpart
// of the inbound message's sender.
type Bot struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID  string    `gorm:"type:text;not null;uniqueIndex" json:"owner_id"`
	Name     string    `gorm:"type:text;not null" json:"name"`
	Settings datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"settings,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Bot) TableName() string { return "bot" }

// BotKnowledge is one configured knowledge entry for a bot. The embedding and
// similarity search over these entries happen in the external assist service;
// this record is the durable source the service indexes from.
type BotKnowledge struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BotID   uuid.UUID `gorm:"type:uuid;not null;index" json:"bot_id"`
	Title   string    `gorm:"type:text;not null;default:''" json:"title"`
	Content string    `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (BotKnowledge) TableName() string { return "bot_knowledge" }
