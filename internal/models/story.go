package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoryTTL is how long a story stays visible after creation
const StoryTTL = 24 * time.Hour

// Story is an ephemeral media item
type Story struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	AuthorID  string    `json:"author_id" gorm:"index;size:36;not null"`
	ImageURL  string    `json:"image_url"`
	StorageID string    `json:"storage_id" gorm:"size:36"`
	Views     int64     `json:"views" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
}

func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// ActiveAt reports whether the story is still visible at now.
func (s *Story) ActiveAt(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// StoryView records a distinct viewer of a story
type StoryView struct {
	ID       string    `json:"id" gorm:"primaryKey;size:36"`
	StoryID  string    `json:"story_id" gorm:"size:36;not null;index;uniqueIndex:idx_story_user_view"`
	UserID   string    `json:"user_id" gorm:"size:36;not null;index;uniqueIndex:idx_story_user_view"`
	ViewedAt time.Time `json:"viewed_at"`
}

func (StoryView) TableName() string { return "story_views" }

func (v *StoryView) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// CreateStoryRequest defines the request body for creating a story
type CreateStoryRequest struct {
	StorageID string `json:"storage_id" validate:"required"`
}

// StoryGroup is one author's active stories in chronological order
type StoryGroup struct {
	Author  UserCompact `json:"author"`
	Stories []Story     `json:"stories"`
}
