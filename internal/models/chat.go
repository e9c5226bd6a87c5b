package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat is the direct-message channel of one unordered pair of users.
// PairKey is the two participant ids in sorted order and is unique.
type Chat struct {
	ID            string            `json:"id" gorm:"primaryKey;size:36"`
	PairKey       string            `json:"-" gorm:"uniqueIndex;size:80;not null"`
	LastMessageAt time.Time         `json:"last_message_at" gorm:"index"`
	Participants  []ChatParticipant `json:"participants,omitempty" gorm:"foreignKey:ChatID"`
	CreatedAt     time.Time         `json:"created_at"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ParticipantIDs returns the ids of the chat members.
func (c *Chat) ParticipantIDs() []string {
	ids := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// ChatParticipant holds one member's unread counter
type ChatParticipant struct {
	ID          string `json:"-" gorm:"primaryKey;size:36"`
	ChatID      string `json:"chat_id" gorm:"size:36;not null;uniqueIndex:idx_chat_participant"`
	UserID      string `json:"user_id" gorm:"size:36;not null;index;uniqueIndex:idx_chat_participant"`
	UnreadCount int64  `json:"unread_count" gorm:"not null;default:0"`
}

func (ChatParticipant) TableName() string { return "chat_participants" }

func (p *ChatParticipant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PairKey builds the canonical key for an unordered user pair.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// CreateChatRequest asks for the chat with another user
type CreateChatRequest struct {
	OtherUserID string `json:"other_user_id" validate:"required"`
}

// ChatSummary is one entry of the caller's chat list
type ChatSummary struct {
	ID            string          `json:"id"`
	OtherUser     UserCompact     `json:"other_user"`
	LastMessage   *MessagePreview `json:"last_message"`
	LastMessageAt time.Time       `json:"last_message_at"`
	UnreadCount   int64           `json:"unread_count"`
}

type MessagePreview struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
