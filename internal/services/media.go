package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultMaxUploadBytes int64 = 50 << 20

// MediaService runs the two-phase upload handshake and turns upload
// references into durable URLs.
type MediaService struct {
	store    *repositories.Store
	blobs    repositories.BlobStore
	baseURL  string
	maxBytes int64
	now      Clock
	log      *zap.Logger
}

func NewMediaService(store *repositories.Store, blobs repositories.BlobStore, baseURL string, maxBytes int64, now Clock, log *zap.Logger) *MediaService {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &MediaService{
		store:    store,
		blobs:    blobs,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
		now:      now,
		log:      log,
	}
}

// IssueUploadTarget reserves a reference owned by requesterID and returns
// the URL the bytes must be PUT to.
func (s *MediaService) IssueUploadTarget(ctx context.Context, requesterID string) (*models.UploadTarget, error) {
	if requesterID == "" {
		return nil, apperr.Unauthenticated("no identity presented")
	}
	obj := &models.MediaObject{
		ID:        uuid.NewString(),
		OwnerID:   requesterID,
		CreatedAt: s.now(),
	}
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		return tx.Media.CreateMediaObject(ctx, obj)
	})
	if err != nil {
		return nil, err
	}
	return &models.UploadTarget{
		UploadURL: s.baseURL + "/api/v1/media/upload/" + obj.ID,
		StorageID: obj.ID,
	}, nil
}

// Upload stores the bytes for a reserved reference. Only the owner may
// upload and a reference accepts a single upload.
func (s *MediaService) Upload(ctx context.Context, requesterID, ref, contentType string, r io.Reader) (*models.MediaObject, error) {
	obj, err := s.store.Media.GetMediaObject(ctx, ref)
	if err != nil {
		return nil, err
	}
	if obj.OwnerID != requesterID {
		return nil, apperr.Forbidden("upload reference belongs to another user")
	}
	if obj.Uploaded {
		return nil, apperr.InvalidArgument("media already uploaded")
	}

	// One byte over the limit is enough to detect an oversized body.
	size, err := s.blobs.Put(ctx, ref, contentType, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if size > s.maxBytes {
		if delErr := s.blobs.Delete(ctx, ref); delErr != nil {
			s.log.Warn("failed to discard oversized upload", zap.String("storage_id", ref), zap.Error(delErr))
		}
		return nil, apperr.InvalidArgument("upload exceeds size limit")
	}

	uploadedAt := s.now()
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		return tx.Media.MarkUploaded(ctx, ref, contentType, size, uploadedAt)
	})
	if err != nil {
		return nil, err
	}
	obj.Uploaded, obj.ContentType, obj.Size, obj.UploadedAt = true, contentType, size, &uploadedAt
	s.log.Debug("media uploaded", zap.String("storage_id", ref), zap.Int64("size", size))
	return obj, nil
}

// Resolve claims ref for a single post, story or message inside tx and maps
// it to its retrievable URL. A reference that was never uploaded, belongs to
// someone else or was already claimed does not resolve.
func (s *MediaService) Resolve(ctx context.Context, tx *repositories.Store, ownerID, ref string) (string, error) {
	if ref == "" {
		return "", apperr.MediaNotFound(ref)
	}
	obj, err := tx.Media.GetMediaObject(ctx, ref)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.MediaNotFound(ref)
		}
		return "", err
	}
	if !obj.Uploaded || obj.Consumed || obj.OwnerID != ownerID {
		return "", apperr.MediaNotFound(ref)
	}
	claimed, err := tx.Media.ClaimMediaObject(ctx, ref, ownerID)
	if err != nil {
		return "", err
	}
	if !claimed {
		return "", apperr.MediaNotFound(ref)
	}
	return s.URL(ref), nil
}

// URL is the durable location of ref
func (s *MediaService) URL(ref string) string {
	return s.baseURL + "/media/" + ref
}

// Open streams an uploaded object
func (s *MediaService) Open(ctx context.Context, ref string) (*models.MediaObject, io.ReadCloser, error) {
	obj, err := s.store.Media.GetMediaObject(ctx, ref)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil, apperr.MediaNotFound(ref)
		}
		return nil, nil, err
	}
	if !obj.Uploaded {
		return nil, nil, apperr.MediaNotFound(ref)
	}
	rc, err := s.blobs.Open(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	return obj, rc, nil
}

// Release permanently deletes a media object
func (s *MediaService) Release(ctx context.Context, ref string) error {
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		return s.releaseRows(ctx, tx, []string{ref})
	})
	if err != nil {
		return err
	}
	s.purge(ctx, []string{ref})
	return nil
}

func (s *MediaService) releaseRows(ctx context.Context, tx *repositories.Store, refs []string) error {
	return tx.Media.DeleteMediaObjects(ctx, nonEmpty(refs))
}

// purge removes blobs whose rows were deleted by a committed transaction.
// A failed delete leaves an orphaned blob, which is logged and not returned.
func (s *MediaService) purge(ctx context.Context, refs []string) {
	for _, ref := range nonEmpty(refs) {
		if err := s.blobs.Delete(ctx, ref); err != nil {
			s.log.Warn("orphaned media blob", zap.String("storage_id", ref), zap.Error(err))
		}
	}
}

func nonEmpty(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}
