package services

import (
	"context"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"go.uber.org/zap"
)

// GraphService maintains follow edges and the follower/following counters
type GraphService struct {
	store         *repositories.Store
	notifications *NotificationService
	now           Clock
	log           *zap.Logger
}

func NewGraphService(store *repositories.Store, notifications *NotificationService, now Clock, log *zap.Logger) *GraphService {
	return &GraphService{store: store, notifications: notifications, now: now, log: log}
}

// Follow creates the edge follower -> following. Following an already
// followed user changes nothing and returns false.
func (s *GraphService) Follow(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == followingID {
		return false, apperr.InvalidArgument("cannot follow yourself")
	}

	var created bool
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Users.GetUserByID(ctx, followingID); err != nil {
			return err
		}
		inserted, err := tx.Follows.CreateFollow(ctx, &models.Follow{
			FollowerID:  followerID,
			FollowingID: followingID,
			CreatedAt:   s.now(),
		})
		if err != nil || !inserted {
			return err
		}
		if err := tx.Users.AdjustCounter(ctx, followerID, repositories.CounterFollowing, 1); err != nil {
			return err
		}
		if err := tx.Users.AdjustCounter(ctx, followingID, repositories.CounterFollowers, 1); err != nil {
			return err
		}
		if _, err := s.notifications.Notify(ctx, tx, &models.Notification{
			ReceiverID: followingID,
			SenderID:   followerID,
			Kind:       models.NotificationFollow,
		}); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if created {
		s.log.Debug("follow created", zap.String("follower_id", followerID), zap.String("following_id", followingID))
	}
	return created, nil
}

// Unfollow removes the edge if present and reports whether it existed
func (s *GraphService) Unfollow(ctx context.Context, followerID, followingID string) (bool, error) {
	var removed bool
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		deleted, err := tx.Follows.DeleteFollow(ctx, followerID, followingID)
		if err != nil || !deleted {
			return err
		}
		if err := tx.Users.AdjustCounter(ctx, followerID, repositories.CounterFollowing, -1); err != nil {
			return err
		}
		if err := tx.Users.AdjustCounter(ctx, followingID, repositories.CounterFollowers, -1); err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (s *GraphService) IsFollowing(ctx context.Context, a, b string) (bool, error) {
	return s.store.Follows.IsFollowing(ctx, a, b)
}

// ListFollowing returns the users userID follows
func (s *GraphService) ListFollowing(ctx context.Context, userID string) ([]models.User, error) {
	if _, err := s.store.Users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Follows.GetFollowing(ctx, userID)
}

// ListFollowers returns the users following userID
func (s *GraphService) ListFollowers(ctx context.Context, userID string) ([]models.User, error) {
	if _, err := s.store.Users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Follows.GetFollowers(ctx, userID)
}
