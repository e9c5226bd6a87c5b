package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow represents an Instagram-style follow relationship
type Follow struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	FollowerID  string    `json:"follower_id" gorm:"size:36;not null;index;uniqueIndex:idx_follower_following"`
	FollowingID string    `json:"following_id" gorm:"size:36;not null;index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
