package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/snapgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookmarkRepository defines the interface for bookmark operations
type BookmarkRepository interface {
	CreateBookmark(ctx context.Context, bookmark *models.Bookmark) (bool, error)
	DeleteBookmark(ctx context.Context, userID, postID string) (bool, error)
	GetBookmarksByUser(ctx context.Context, userID string) ([]models.Bookmark, error)
	GetBookmarkedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	DeleteBookmarksByPostID(ctx context.Context, postID string) (int64, error)
}

// PostgresBookmarkRepository implements BookmarkRepository with GORM
type PostgresBookmarkRepository struct {
	db *gorm.DB
}

func NewPostgresBookmarkRepository(db *gorm.DB) *PostgresBookmarkRepository {
	return &PostgresBookmarkRepository{db: db}
}

func (r *PostgresBookmarkRepository) CreateBookmark(ctx context.Context, bookmark *models.Bookmark) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(bookmark)
	if res.Error != nil {
		return false, fmt.Errorf("create bookmark: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresBookmarkRepository) DeleteBookmark(ctx context.Context, userID, postID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Bookmark{})
	if res.Error != nil {
		return false, fmt.Errorf("delete bookmark: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// GetBookmarksByUser returns the user's bookmarks, newest first
func (r *PostgresBookmarkRepository) GetBookmarksByUser(ctx context.Context, userID string) ([]models.Bookmark, error) {
	var saved []models.Bookmark
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Find(&saved).Error
	return saved, err
}

func (r *PostgresBookmarkRepository) GetBookmarkedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var saved []models.Bookmark
	err := r.db.WithContext(ctx).Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&saved).Error
	if err != nil {
		return nil, fmt.Errorf("get bookmarked posts: %w", err)
	}
	for _, s := range saved {
		result[s.PostID] = true
	}
	return result, nil
}

func (r *PostgresBookmarkRepository) DeleteBookmarksByPostID(ctx context.Context, postID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Bookmark{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete bookmarks: %w", res.Error)
	}
	return res.RowsAffected, nil
}
