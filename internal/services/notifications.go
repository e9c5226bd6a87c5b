package services

import (
	"context"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"go.uber.org/zap"
)

// NotificationService fans like, comment and follow events out to their receiver
type NotificationService struct {
	store *repositories.Store
	now   Clock
	log   *zap.Logger
}

func NewNotificationService(store *repositories.Store, now Clock, log *zap.Logger) *NotificationService {
	return &NotificationService{store: store, now: now, log: log}
}

// Notify writes n inside the caller's transaction. Self-notifications are
// skipped and reported as false.
func (s *NotificationService) Notify(ctx context.Context, tx *repositories.Store, n *models.Notification) (bool, error) {
	if !n.Kind.Valid() {
		return false, apperr.InvalidArgument("unknown notification kind " + string(n.Kind))
	}
	if n.ReceiverID == n.SenderID {
		return false, nil
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if err := tx.Notifications.CreateNotification(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}

// ListForReceiver returns the receiver's notifications newest first, with
// sender summaries and post previews.
func (s *NotificationService) ListForReceiver(ctx context.Context, receiverID string) ([]models.NotificationView, error) {
	var views []models.NotificationView
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		notifications, err := tx.Notifications.GetByReceiverID(ctx, receiverID)
		if err != nil {
			return err
		}

		senderIDs := make([]string, 0, len(notifications))
		postIDs := make([]string, 0, len(notifications))
		for _, n := range notifications {
			senderIDs = append(senderIDs, n.SenderID)
			if n.PostID != nil {
				postIDs = append(postIDs, *n.PostID)
			}
		}
		senders, err := tx.Users.GetUsersByIDs(ctx, senderIDs)
		if err != nil {
			return err
		}
		posts, err := tx.Posts.GetPostsByIDs(ctx, postIDs)
		if err != nil {
			return err
		}

		views = make([]models.NotificationView, 0, len(notifications))
		for _, n := range notifications {
			sender, ok := senders[n.SenderID]
			if !ok {
				continue
			}
			v := models.NotificationView{Notification: n, Sender: sender.ToCompact()}
			if n.PostID != nil {
				if p, ok := posts[*n.PostID]; ok {
					v.PostPreview = p.ImageURL
				}
			}
			views = append(views, v)
		}
		return nil
	})
	return views, err
}
