package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Services
	store *repositories.Store
	clock *testutil.Clock
	blobs *testutil.MemoryBlobStore
	cache *testutil.MemoryPresenceCache
}

func newFixture(t *testing.T, opts ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		store: testutil.OpenStore(t),
		clock: testutil.NewClock(epoch),
		blobs: testutil.NewMemoryBlobStore(),
		cache: testutil.NewMemoryPresenceCache(),
	}
	o := Options{PublicBaseURL: "https://api.test", MaxUploadBytes: 1 << 10, Now: f.clock.Now}
	for _, fn := range opts {
		fn(&o)
	}
	f.svc = New(f.store, f.blobs, f.cache, o, zap.NewNop())
	return f
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	u, created, err := f.svc.Identity.Register(context.Background(), "ext-"+username, models.CreateUserRequest{Username: username})
	require.NoError(t, err)
	require.True(t, created)
	return u
}

// media runs the full upload handshake and returns the reference
func (f *fixture) media(t *testing.T, ownerID string) string {
	t.Helper()
	ctx := context.Background()
	target, err := f.svc.Media.IssueUploadTarget(ctx, ownerID)
	require.NoError(t, err)
	_, err = f.svc.Media.Upload(ctx, ownerID, target.StorageID, "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	return target.StorageID
}

func (f *fixture) post(t *testing.T, authorID string) *models.Post {
	t.Helper()
	p, err := f.svc.Posts.CreatePost(context.Background(), authorID, models.CreatePostRequest{
		StorageIDs: []string{f.media(t, authorID)},
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) reload(t *testing.T, userID string) *models.User {
	t.Helper()
	u, err := f.store.Users.GetUserByID(context.Background(), userID)
	require.NoError(t, err)
	return u
}
