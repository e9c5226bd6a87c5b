package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PresenceTTL is how long a heartbeat keeps a user online.
const PresenceTTL = 5 * time.Minute

// User is the internal profile linked to an external auth identity.
type User struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	Username   string     `json:"username" gorm:"uniqueIndex;size:64;not null"`
	Fullname   string     `json:"fullname"`
	Email      string     `json:"email"`
	Bio        string     `json:"bio,omitempty"`
	Image      string     `json:"image"`
	ExternalID string     `json:"-" gorm:"uniqueIndex;size:128;not null"` // Subject of the verified auth token
	Followers  int64      `json:"followers" gorm:"not null;default:0"`
	Following  int64      `json:"following" gorm:"not null;default:0"`
	Posts      int64      `json:"posts" gorm:"not null;default:0"`
	IsOnline   bool       `json:"is_online" gorm:"not null;default:false"`
	LastSeen   *time.Time `json:"last_seen,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserCompact is the author/sender summary embedded in read results
type UserCompact struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Image    string `json:"image"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username, Image: u.Image}
}

// PresenceFresh reports whether a stored presence record still counts as online at now.
// It is the only place the heartbeat window is evaluated.
func PresenceFresh(isOnline bool, lastSeen *time.Time, now time.Time) bool {
	if !isOnline || lastSeen == nil {
		return false
	}
	return now.Sub(*lastSeen) < PresenceTTL
}

// CreateUserRequest registers the caller's profile
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,notblank,min=2,max=30"`
	Fullname string `json:"fullname" validate:"omitempty,max=80"`
	Email    string `json:"email" validate:"omitempty,email"`
	Bio      string `json:"bio" validate:"omitempty,max=300"`
	Image    string `json:"image" validate:"omitempty,url"`
}

// OnlineStatus is the derived presence answer
type OnlineStatus struct {
	UserID   string     `json:"user_id"`
	IsOnline bool       `json:"is_online"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

type UpdatePresenceRequest struct {
	Online *bool `json:"online" validate:"required"`
}
