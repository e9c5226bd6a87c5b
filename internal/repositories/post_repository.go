package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/snapgram/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	LockPost(ctx context.Context, id string) (*models.Post, error)
	GetPostsByUserID(ctx context.Context, userID string) ([]models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []string) (map[string]models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	DeletePost(ctx context.Context, id string) error
	AdjustCounter(ctx context.Context, postID string, counter PostCounter, delta int64) error
}

// PostCounter names a denormalized counter column on posts
type PostCounter string

const (
	CounterLikes    PostCounter = "likes"
	CounterComments PostCounter = "comments"
)

// PostgresPostRepository implements PostRepository with GORM
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func withMedia(db *gorm.DB) *gorm.DB {
	return db.Preload("AdditionalMedia", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// CreatePost inserts the post together with its additional media rows
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := withMedia(r.db.WithContext(ctx)).First(&post, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "post")
	}
	return &post, nil
}

// LockPost loads the post and holds a row lock on it for the rest of the
// transaction, serialising toggles and deletion on the same post.
func (r *PostgresPostRepository) LockPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := forUpdate(r.db.WithContext(ctx)).First(&post, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "post")
	}
	return &post, nil
}

// GetPostsByUserID returns the user's posts, newest first
func (r *PostgresPostRepository) GetPostsByUserID(ctx context.Context, userID string) ([]models.Post, error) {
	var posts []models.Post
	err := withMedia(r.db.WithContext(ctx)).Where("author_id = ?", userID).
		Order("created_at DESC").Order("id DESC").Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("get posts by user: %w", err)
	}
	return posts, nil
}

func (r *PostgresPostRepository) GetPostsByIDs(ctx context.Context, ids []string) (map[string]models.Post, error) {
	result := make(map[string]models.Post, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var posts []models.Post
	if err := withMedia(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("get posts: %w", err)
	}
	for _, p := range posts {
		result[p.ID] = p
	}
	return result, nil
}

// GetAllPosts returns every post, newest first
func (r *PostgresPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := withMedia(r.db.WithContext(ctx)).Order("created_at DESC").Order("id DESC").Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("get all posts: %w", err)
	}
	return posts, nil
}

// DeletePost removes the post and its additional media rows
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("post_id = ?", id).Delete(&models.PostMedia{}).Error; err != nil {
		return fmt.Errorf("delete post media: %w", err)
	}
	res := db.Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		return fmt.Errorf("delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "post")
	}
	return nil
}

// AdjustCounter adds delta to one counter, never going below zero
func (r *PostgresPostRepository) AdjustCounter(ctx context.Context, postID string, counter PostCounter, delta int64) error {
	col := string(counter)
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn(col, counterExpr(col, delta))
	if res.Error != nil {
		return fmt.Errorf("adjust post %s: %w", col, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "post")
	}
	return nil
}
