package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaKind is the kind of media attached to a post or message
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

func (k MediaKind) Valid() bool {
	return k == MediaImage || k == MediaVideo
}

// Post is a published post. The first media reference is primary, the rest are AdditionalMedia.
type Post struct {
	ID              string      `json:"id" gorm:"primaryKey;size:36"`
	AuthorID        string      `json:"author_id" gorm:"index;size:36;not null"`
	ImageURL        string      `json:"image_url"`
	StorageID       string      `json:"storage_id" gorm:"size:36"`
	Caption         string      `json:"caption,omitempty"`
	Likes           int64       `json:"likes" gorm:"not null;default:0"`
	Comments        int64       `json:"comments" gorm:"not null;default:0"`
	Kind            MediaKind   `json:"kind" gorm:"size:10;not null;default:'image'"`
	AdditionalMedia []PostMedia `json:"additional_media,omitempty" gorm:"foreignKey:PostID"`
	CreatedAt       time.Time   `json:"created_at" gorm:"index"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// StorageIDs lists every media reference owned by the post, primary first.
func (p *Post) StorageIDs() []string {
	ids := []string{p.StorageID}
	for _, m := range p.AdditionalMedia {
		ids = append(ids, m.StorageID)
	}
	return ids
}

// PostMedia is a non-primary media item of a post
type PostMedia struct {
	ID        string `json:"-" gorm:"primaryKey;size:36"`
	PostID    string `json:"-" gorm:"index;size:36;not null"`
	Position  int    `json:"-"`
	URL       string `json:"image_url"`
	StorageID string `json:"storage_id" gorm:"size:36"`
}

func (PostMedia) TableName() string { return "post_media" }

func (m *PostMedia) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	StorageIDs []string  `json:"storage_ids" validate:"required,min=1,dive,required"`
	Caption    string    `json:"caption" validate:"omitempty,max=2200"`
	Kind       MediaKind `json:"kind" validate:"omitempty,oneof=image video"`
}

// FeedPost is a post annotated for one viewer
type FeedPost struct {
	Post
	Author       UserCompact `json:"author"`
	IsLiked      bool        `json:"is_liked"`
	IsBookmarked bool        `json:"is_bookmarked"`
}
