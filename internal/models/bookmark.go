package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bookmark represents a saved post, at most one per (user, post)
type Bookmark struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;index;uniqueIndex:idx_bookmark_user_post"`
	PostID    string    `json:"post_id" gorm:"size:36;not null;index;uniqueIndex:idx_bookmark_user_post"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
