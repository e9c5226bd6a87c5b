package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/snapgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) (bool, error)
	DeleteLike(ctx context.Context, postID, userID string) (bool, error)
	HasUserLikedPost(ctx context.Context, postID, userID string) (bool, error)
	GetLikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	DeleteLikesByPostID(ctx context.Context, postID string) (int64, error)
}

// PostgresLikeRepository implements LikeRepository with GORM
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike inserts the like unless the (user, post) pair exists and reports whether it did
func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if res.Error != nil {
		return false, fmt.Errorf("create like: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// DeleteLike removes the like and reports whether one existed
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, postID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return false, fmt.Errorf("delete like: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// HasUserLikedPost checks if a user has liked a specific post
func (r *PostgresLikeRepository) HasUserLikedPost(ctx context.Context, postID, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("has liked: %w", err)
	}
	return count > 0, nil
}

func (r *PostgresLikeRepository) GetLikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var liked []string
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).Pluck("post_id", &liked).Error
	if err != nil {
		return nil, fmt.Errorf("get liked posts: %w", err)
	}
	for _, id := range liked {
		result[id] = true
	}
	return result, nil
}

func (r *PostgresLikeRepository) DeleteLikesByPostID(ctx context.Context, postID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Like{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete likes: %w", res.Error)
	}
	return res.RowsAffected, nil
}
