package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedia_Handshake(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := f.user(t, "alice"), f.user(t, "bob")

	_, err := f.svc.Media.IssueUploadTarget(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	target, err := f.svc.Media.IssueUploadTarget(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://api.test/api/v1/media/upload/"+target.StorageID, target.UploadURL)

	err = f.store.Transaction(ctx, func(tx *repositories.Store) error {
		_, err := f.svc.Media.Resolve(ctx, tx, alice.ID, target.StorageID)
		return err
	})
	assert.ErrorIs(t, err, apperr.ErrMediaNotFound)

	_, err = f.svc.Media.Upload(ctx, bob.ID, target.StorageID, "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	obj, err := f.svc.Media.Upload(ctx, alice.ID, target.StorageID, "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.True(t, obj.Uploaded)
	assert.EqualValues(t, 3, obj.Size)

	_, err = f.svc.Media.Upload(ctx, alice.ID, target.StorageID, "image/png", strings.NewReader("again"))
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	meta, rc, err := f.svc.Media.Open(ctx, target.StorageID)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png", string(body))
	assert.Equal(t, "image/png", meta.ContentType)

	require.NoError(t, f.svc.Media.Release(ctx, target.StorageID))
	_, _, err = f.svc.Media.Open(ctx, target.StorageID)
	assert.ErrorIs(t, err, apperr.ErrMediaNotFound)
	assert.False(t, f.blobs.Has(target.StorageID))
}

func TestMedia_UploadSizeLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	target, err := f.svc.Media.IssueUploadTarget(ctx, alice.ID)
	require.NoError(t, err)

	_, err = f.svc.Media.Upload(ctx, alice.ID, target.StorageID, "video/mp4", strings.NewReader(strings.Repeat("a", 2048)))
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.False(t, f.blobs.Has(target.StorageID))
}

func TestMedia_ReferenceBacksOneEntity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	ref := f.media(t, alice.ID)

	first, err := f.svc.Posts.CreatePost(ctx, alice.ID, models.CreatePostRequest{StorageIDs: []string{ref}})
	require.NoError(t, err)

	_, err = f.svc.Posts.CreatePost(ctx, alice.ID, models.CreatePostRequest{StorageIDs: []string{ref}})
	assert.ErrorIs(t, err, apperr.ErrMediaNotFound)
	_, err = f.svc.Stories.CreateStory(ctx, alice.ID, ref)
	assert.ErrorIs(t, err, apperr.ErrMediaNotFound)
	assert.EqualValues(t, 1, f.reload(t, alice.ID).Posts)

	require.NoError(t, f.svc.Posts.DeletePost(ctx, alice.ID, first.ID))
	assert.False(t, f.blobs.Has(ref))
}

func TestMedia_FailedCreateLeavesReferenceUnclaimed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	ref := f.media(t, alice.ID)

	_, err := f.svc.Posts.CreatePost(ctx, alice.ID, models.CreatePostRequest{StorageIDs: []string{ref, "nope"}})
	assert.ErrorIs(t, err, apperr.ErrMediaNotFound)

	obj, err := f.store.Media.GetMediaObject(ctx, ref)
	require.NoError(t, err)
	assert.False(t, obj.Consumed)

	post, err := f.svc.Posts.CreatePost(ctx, alice.ID, models.CreatePostRequest{StorageIDs: []string{ref}})
	require.NoError(t, err)
	assert.Equal(t, ref, post.StorageID)
}

func TestMedia_BlobPurgeFailureKeepsDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	post := f.post(t, alice.ID)
	storyRef := f.media(t, alice.ID)
	story, err := f.svc.Stories.CreateStory(ctx, alice.ID, storyRef)
	require.NoError(t, err)

	f.blobs.FailDeletes(errors.New("gridfs unavailable"))

	require.NoError(t, f.svc.Posts.DeletePost(ctx, alice.ID, post.ID))
	_, err = f.store.Posts.GetPostByID(ctx, post.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.True(t, f.blobs.Has(post.StorageID))

	require.NoError(t, f.svc.Stories.DeleteStory(ctx, alice.ID, story.ID))
	_, err = f.store.Stories.GetStoryByID(ctx, story.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.True(t, f.blobs.Has(storyRef))
}
