package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (bool, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	AdjustCounter(ctx context.Context, userID string, counter UserCounter, delta int64) error
	SetPresence(ctx context.Context, userID string, online bool, at time.Time) error
}

// UserCounter names a denormalized counter column on users
type UserCounter string

const (
	CounterFollowers UserCounter = "followers"
	CounterFollowing UserCounter = "following"
	CounterPosts     UserCounter = "posts"
)

// PostgresUserRepository implements UserRepository with GORM
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser inserts the user unless its external id is already registered.
// It reports whether a row was inserted.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "external_id"}}, DoNothing: true}).
		Create(user)
	if res.Error != nil {
		return false, fmt.Errorf("create user: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// GetUsersByIDs loads users keyed by id; unknown ids are absent from the map
func (r *PostgresUserRepository) GetUsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	result := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

// AdjustCounter adds delta to one counter, never going below zero
func (r *PostgresUserRepository) AdjustCounter(ctx context.Context, userID string, counter UserCounter, delta int64) error {
	col := string(counter)
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn(col, counterExpr(col, delta))
	if res.Error != nil {
		return fmt.Errorf("adjust user %s: %w", col, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "user")
	}
	return nil
}

func (r *PostgresUserRepository) SetPresence(ctx context.Context, userID string, online bool, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		UpdateColumns(map[string]interface{}{"is_online": online, "last_seen": at})
	if res.Error != nil {
		return fmt.Errorf("set presence: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "user")
	}
	return nil
}
