package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment represents a comment on a post
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"index;size:36;not null"`
	PostID    string    `json:"post_id" gorm:"index;size:36;not null"`
	Text      string    `json:"text" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,notblank,max=500"`
}

// CommentView is a comment with its author summary
type CommentView struct {
	ID        string      `json:"id"`
	Text      string      `json:"text"`
	User      UserCompact `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
}
