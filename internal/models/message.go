package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageStatus advances sent -> delivered -> seen and never moves back
type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageSeen      MessageStatus = "seen"
)

func (s MessageStatus) rank() int {
	switch s {
	case MessageSent:
		return 1
	case MessageDelivered:
		return 2
	case MessageSeen:
		return 3
	}
	return 0
}

// Before reports whether s precedes other in the delivery order.
func (s MessageStatus) Before(other MessageStatus) bool {
	return s.rank() < other.rank()
}

// StatusesBefore lists the statuses that may still advance to target.
func StatusesBefore(target MessageStatus) []MessageStatus {
	var out []MessageStatus
	for _, s := range []MessageStatus{MessageSent, MessageDelivered, MessageSeen} {
		if s.Before(target) {
			out = append(out, s)
		}
	}
	return out
}

// Message is a direct message inside a chat
type Message struct {
	ID        string        `json:"id" gorm:"primaryKey;size:36"`
	ChatID    string        `json:"chat_id" gorm:"index;size:36;not null"`
	SenderID  string        `json:"sender_id" gorm:"size:36;not null"`
	Content   *string       `json:"content,omitempty"`
	Status    MessageStatus `json:"status" gorm:"size:12;not null;default:'sent'"`
	MediaKind *MediaKind    `json:"media_kind,omitempty" gorm:"size:10"`
	MediaURL  *string       `json:"media_url,omitempty"`
	StorageID *string       `json:"storage_id,omitempty" gorm:"size:36"`
	CreatedAt time.Time     `json:"created_at" gorm:"index"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// SendMessageRequest defines the request body for a text message
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,notblank,max=5000"`
}

// SendMediaMessageRequest defines the request body for a media message
type SendMediaMessageRequest struct {
	StorageID string    `json:"storage_id" validate:"required"`
	Kind      MediaKind `json:"kind" validate:"required,oneof=image video"`
	Caption   string    `json:"caption" validate:"omitempty,max=2200"`
}

// MessageView flags whether the caller sent the message
type MessageView struct {
	Message
	IsSender bool `json:"is_sender"`
}
