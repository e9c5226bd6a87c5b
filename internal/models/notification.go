package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationKind is the event that produced a notification
type NotificationKind string

const (
	NotificationLike    NotificationKind = "like"
	NotificationComment NotificationKind = "comment"
	NotificationFollow  NotificationKind = "follow"
)

func (k NotificationKind) Valid() bool {
	switch k {
	case NotificationLike, NotificationComment, NotificationFollow:
		return true
	}
	return false
}

// Notification is fanned out to the receiver of a like, comment or follow
type Notification struct {
	ID         string           `json:"id" gorm:"primaryKey;size:36"`
	ReceiverID string           `json:"receiver_id" gorm:"index;size:36;not null"`
	SenderID   string           `json:"sender_id" gorm:"size:36;not null"`
	Kind       NotificationKind `json:"kind" gorm:"size:20;not null"`
	PostID     *string          `json:"post_id,omitempty" gorm:"index;size:36"`
	CommentID  *string          `json:"comment_id,omitempty" gorm:"size:36"`
	CreatedAt  time.Time        `json:"created_at" gorm:"index"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// NotificationView includes sender info and the post preview
type NotificationView struct {
	Notification
	Sender      UserCompact `json:"sender"`
	PostPreview string      `json:"post_preview,omitempty"`
}
