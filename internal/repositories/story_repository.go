package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoryRepository defines the interface for story operations
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id string) (*models.Story, error)
	LockStory(ctx context.Context, id string) (*models.Story, error)
	GetActiveStoriesByUserIDs(ctx context.Context, userIDs []string, now time.Time) ([]models.Story, error)
	DeleteStory(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, storyID string) error
	CreateView(ctx context.Context, view *models.StoryView) (bool, error)
	GetViewedStoryIDs(ctx context.Context, userID string) ([]string, error)
	DeleteViewsByStoryID(ctx context.Context, storyID string) error
}

type storyRepository struct {
	db *gorm.DB
}

func NewPostgresStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) CreateStory(ctx context.Context, story *models.Story) error {
	if err := r.db.WithContext(ctx).Create(story).Error; err != nil {
		return fmt.Errorf("create story: %w", err)
	}
	return nil
}

func (r *storyRepository) GetStoryByID(ctx context.Context, id string) (*models.Story, error) {
	var story models.Story
	if err := r.db.WithContext(ctx).First(&story, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "story")
	}
	return &story, nil
}

func (r *storyRepository) LockStory(ctx context.Context, id string) (*models.Story, error) {
	var story models.Story
	if err := forUpdate(r.db.WithContext(ctx)).First(&story, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "story")
	}
	return &story, nil
}

// GetActiveStoriesByUserIDs returns unexpired stories of the given authors, oldest first
func (r *storyRepository) GetActiveStoriesByUserIDs(ctx context.Context, userIDs []string, now time.Time) ([]models.Story, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var stories []models.Story
	err := r.db.WithContext(ctx).
		Where("author_id IN ? AND expires_at > ?", userIDs, now).
		Order("created_at ASC").Order("id ASC").
		Find(&stories).Error
	if err != nil {
		return nil, fmt.Errorf("get active stories: %w", err)
	}
	return stories, nil
}

func (r *storyRepository) DeleteStory(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Story{})
	if res.Error != nil {
		return fmt.Errorf("delete story: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "story")
	}
	return nil
}

func (r *storyRepository) IncrementViews(ctx context.Context, storyID string) error {
	res := r.db.WithContext(ctx).Model(&models.Story{}).Where("id = ?", storyID).
		UpdateColumn("views", counterExpr("views", 1))
	if res.Error != nil {
		return fmt.Errorf("increment story views: %w", res.Error)
	}
	return nil
}

// CreateView records the view unless the (story, user) pair exists and reports whether it did
func (r *storyRepository) CreateView(ctx context.Context, view *models.StoryView) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(view)
	if res.Error != nil {
		return false, fmt.Errorf("create story view: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *storyRepository) GetViewedStoryIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.StoryView{}).Where("user_id = ?", userID).
		Order("viewed_at ASC").Pluck("story_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("get viewed stories: %w", err)
	}
	return ids, nil
}

func (r *storyRepository) DeleteViewsByStoryID(ctx context.Context, storyID string) error {
	if err := r.db.WithContext(ctx).Where("story_id = ?", storyID).Delete(&models.StoryView{}).Error; err != nil {
		return fmt.Errorf("delete story views: %w", err)
	}
	return nil
}
