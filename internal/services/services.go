// Package services implements the social graph and messaging store. Every
// operation runs as one transaction against repositories.Store: counters,
// notifications and unread totals change in the same unit as the edge or
// message that justifies them.
package services

import (
	"time"

	"github.com/anonto42/snapgram/backend/internal/repositories"
	"go.uber.org/zap"
)

// Clock returns the current time. Tests substitute a fixed or stepping clock.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// Options configures New
type Options struct {
	PublicBaseURL       string
	MaxUploadBytes      int64
	RequireMutualFollow bool
	Now                 Clock
}

// Services bundles every component wired over one store
type Services struct {
	Identity      *IdentityService
	Graph         *GraphService
	Posts         *PostService
	Stories       *StoryService
	Notifications *NotificationService
	Chat          *ChatService
	Presence      *PresenceService
	Media         *MediaService
}

// New wires the services. cache may be nil, in which case presence is read
// from the user record alone.
func New(store *repositories.Store, blobs repositories.BlobStore, cache repositories.PresenceCache, opts Options, log *zap.Logger) *Services {
	now := opts.Now
	if now == nil {
		now = systemClock
	}
	if log == nil {
		log = zap.NewNop()
	}

	notifications := NewNotificationService(store, now, log)
	media := NewMediaService(store, blobs, opts.PublicBaseURL, opts.MaxUploadBytes, now, log)

	return &Services{
		Identity:      NewIdentityService(store, now, log),
		Graph:         NewGraphService(store, notifications, now, log),
		Posts:         NewPostService(store, media, notifications, now, log),
		Stories:       NewStoryService(store, media, now, log),
		Notifications: notifications,
		Chat:          NewChatService(store, media, ChatPolicy{RequireMutualFollow: opts.RequireMutualFollow}, now, log),
		Presence:      NewPresenceService(store, cache, now, log),
		Media:         media,
	}
}
