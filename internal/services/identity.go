package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"go.uber.org/zap"
)

// IdentityService maps a verified external identity to its User record
type IdentityService struct {
	store *repositories.Store
	now   Clock
	log   *zap.Logger
}

func NewIdentityService(store *repositories.Store, now Clock, log *zap.Logger) *IdentityService {
	return &IdentityService{store: store, now: now, log: log}
}

// Resolve returns the user registered for subject. It has no side effects.
func (s *IdentityService) Resolve(ctx context.Context, subject string) (*models.User, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, apperr.Unauthenticated("no identity presented")
	}
	return s.store.Users.GetUserByExternalID(ctx, subject)
}

// Register creates the profile for subject. A subject that is already
// registered gets its existing record back and created is false.
func (s *IdentityService) Register(ctx context.Context, subject string, req models.CreateUserRequest) (user *models.User, created bool, err error) {
	if strings.TrimSpace(subject) == "" {
		return nil, false, apperr.Unauthenticated("no identity presented")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, false, apperr.InvalidArgument("username is required")
	}

	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		existing, err := tx.Users.GetUserByExternalID(ctx, subject)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		if _, err := tx.Users.GetUserByUsername(ctx, username); err == nil {
			return apperr.InvalidArgument("username " + username + " is taken")
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		now := s.now()
		candidate := &models.User{
			Username:   username,
			Fullname:   req.Fullname,
			Email:      req.Email,
			Bio:        req.Bio,
			Image:      req.Image,
			ExternalID: subject,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		inserted, err := tx.Users.CreateUser(ctx, candidate)
		if err != nil {
			return err
		}
		if !inserted {
			user, err = tx.Users.GetUserByExternalID(ctx, subject)
			return err
		}
		user, created = candidate, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	}
	return user, created, nil
}

// GetUser loads a profile by internal id
func (s *IdentityService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.store.Users.GetUserByID(ctx, id)
}
