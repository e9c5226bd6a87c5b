package services

import (
	"context"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"go.uber.org/zap"
)

// PresenceService records heartbeats and answers "is this user online".
// Freshness is always decided by models.PresenceFresh.
type PresenceService struct {
	store *repositories.Store
	cache repositories.PresenceCache
	now   Clock
	log   *zap.Logger
}

func NewPresenceService(store *repositories.Store, cache repositories.PresenceCache, now Clock, log *zap.Logger) *PresenceService {
	return &PresenceService{store: store, cache: cache, now: now, log: log}
}

// UpdatePresence sets the online flag and stamps lastSeen with the current time.
// The cache is refreshed after commit on a best-effort basis.
func (s *PresenceService) UpdatePresence(ctx context.Context, userID string, online bool) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		return tx.Users.SetPresence(ctx, userID, online, s.now())
	})
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Touch(ctx, userID, online); err != nil {
		s.log.Warn("presence cache update failed", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}

func (s *PresenceService) GetOnlineStatus(ctx context.Context, userID string) (*models.OnlineStatus, error) {
	user, err := s.store.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	online := models.PresenceFresh(user.IsOnline, user.LastSeen, s.now())
	if online && s.cache != nil {
		cached, err := s.cache.Online(ctx, userID)
		if err != nil {
			s.log.Warn("presence cache unavailable", zap.String("user_id", userID), zap.Error(err))
		} else {
			online = cached
		}
	}
	return &models.OnlineStatus{UserID: userID, IsOnline: online, LastSeen: user.LastSeen}, nil
}
