package models

import (
	"time"
)

// MediaObject tracks an upload handle. Its ID is the opaque reference handed to clients.
type MediaObject struct {
	ID          string     `json:"storage_id" gorm:"primaryKey;size:36"`
	OwnerID     string     `json:"owner_id" gorm:"index;size:36;not null"`
	ContentType string     `json:"content_type"`
	Size        int64      `json:"size"`
	Uploaded    bool       `json:"uploaded" gorm:"not null;default:false"`
	// Consumed is set once a post, story or message takes the reference
	Consumed    bool       `json:"consumed" gorm:"not null;default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	UploadedAt  *time.Time `json:"uploaded_at,omitempty"`
}

func (MediaObject) TableName() string { return "media_objects" }

// UploadTarget is returned by the first phase of the upload handshake
type UploadTarget struct {
	UploadURL string `json:"upload_url"`
	StorageID string `json:"storage_id"`
}
