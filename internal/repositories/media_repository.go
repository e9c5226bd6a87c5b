package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"gorm.io/gorm"
)

// MediaRepository tracks upload handles and whether bytes arrived for them
type MediaRepository interface {
	CreateMediaObject(ctx context.Context, obj *models.MediaObject) error
	GetMediaObject(ctx context.Context, id string) (*models.MediaObject, error)
	MarkUploaded(ctx context.Context, id, contentType string, size int64, at time.Time) error
	ClaimMediaObject(ctx context.Context, id, ownerID string) (bool, error)
	DeleteMediaObjects(ctx context.Context, ids []string) error
}

type mediaRepository struct {
	db *gorm.DB
}

func NewPostgresMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) CreateMediaObject(ctx context.Context, obj *models.MediaObject) error {
	if err := r.db.WithContext(ctx).Create(obj).Error; err != nil {
		return fmt.Errorf("create media object: %w", err)
	}
	return nil
}

func (r *mediaRepository) GetMediaObject(ctx context.Context, id string) (*models.MediaObject, error) {
	var obj models.MediaObject
	if err := r.db.WithContext(ctx).First(&obj, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "media")
	}
	return &obj, nil
}

func (r *mediaRepository) MarkUploaded(ctx context.Context, id, contentType string, size int64, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.MediaObject{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"uploaded":     true,
			"content_type": contentType,
			"size":         size,
			"uploaded_at":  at,
		}).Error
	if err != nil {
		return fmt.Errorf("mark media uploaded: %w", err)
	}
	return nil
}

// ClaimMediaObject marks an uploaded object owned by ownerID as consumed.
// It reports false when the object is missing, foreign, pending or already taken.
func (r *mediaRepository) ClaimMediaObject(ctx context.Context, id, ownerID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.MediaObject{}).
		Where("id = ? AND owner_id = ? AND uploaded = ? AND consumed = ?", id, ownerID, true, false).
		UpdateColumn("consumed", true)
	if res.Error != nil {
		return false, fmt.Errorf("claim media object: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *mediaRepository) DeleteMediaObjects(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.MediaObject{}).Error; err != nil {
		return fmt.Errorf("delete media objects: %w", err)
	}
	return nil
}
