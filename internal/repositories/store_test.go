package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, store *repositories.Store, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, ExternalID: "ext-" + username}
	inserted, err := store.Users.CreateUser(context.Background(), u)
	require.NoError(t, err)
	require.True(t, inserted)
	return u
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	store := testutil.OpenStore(t)
	ctx := context.Background()
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Follows.CreateFollow(ctx, &models.Follow{FollowerID: alice.ID, FollowingID: bob.ID}); err != nil {
			return err
		}
		if err := tx.Users.AdjustCounter(ctx, alice.ID, repositories.CounterFollowing, 1); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	following, err := store.Follows.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
	got, err := store.Users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.Following)
}

func TestUsers_CreateIsIdempotentOnExternalID(t *testing.T) {
	store := testutil.OpenStore(t)
	ctx := context.Background()
	createUser(t, store, "alice")

	inserted, err := store.Users.CreateUser(ctx, &models.User{Username: "alice-again", ExternalID: "ext-alice"})
	require.NoError(t, err)
	assert.False(t, inserted)

	_, err = store.Users.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCounters_FloorAtZero(t *testing.T) {
	store := testutil.OpenStore(t)
	ctx := context.Background()
	alice := createUser(t, store, "alice")

	require.NoError(t, store.Users.AdjustCounter(ctx, alice.ID, repositories.CounterPosts, -3))
	got, err := store.Users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.Posts)

	err = store.Users.AdjustCounter(ctx, "missing", repositories.CounterPosts, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLikes_UniquePerPair(t *testing.T) {
	store := testutil.OpenStore(t)
	ctx := context.Background()
	alice := createUser(t, store, "alice")
	post := &models.Post{AuthorID: alice.ID, StorageID: "ref", ImageURL: "u"}
	require.NoError(t, store.Posts.CreatePost(ctx, post))

	inserted, err := store.Likes.CreateLike(ctx, &models.Like{UserID: alice.ID, PostID: post.ID})
	require.NoError(t, err)
	assert.True(t, inserted)
	inserted, err = store.Likes.CreateLike(ctx, &models.Like{UserID: alice.ID, PostID: post.ID})
	require.NoError(t, err)
	assert.False(t, inserted)

	removed, err := store.Likes.DeleteLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = store.Likes.DeleteLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestChats_PairKeyIsUnique(t *testing.T) {
	store := testutil.OpenStore(t)
	ctx := context.Background()
	alice, bob := createUser(t, store, "alice"), createUser(t, store, "bob")
	key := models.PairKey(bob.ID, alice.ID)
	assert.Equal(t, models.PairKey(alice.ID, bob.ID), key)

	newChat := func() *models.Chat {
		return &models.Chat{PairKey: key, Participants: []models.ChatParticipant{{UserID: alice.ID}, {UserID: bob.ID}}}
	}
	inserted, err := store.Chats.CreateChat(ctx, newChat())
	require.NoError(t, err)
	assert.True(t, inserted)
	inserted, err = store.Chats.CreateChat(ctx, newChat())
	require.NoError(t, err)
	assert.False(t, inserted)

	chat, err := store.Chats.GetChatByPairKey(ctx, key)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{alice.ID, bob.ID}, chat.ParticipantIDs())

	chats, err := store.Chats.GetChatsByUserID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, chats, 1)
}

func TestMessages_AdvanceStatusIsMonotonic(t *testing.T) {
	store := testutil.OpenStore(t)
	ctx := context.Background()
	alice, bob := createUser(t, store, "alice"), createUser(t, store, "bob")
	chat := &models.Chat{PairKey: models.PairKey(alice.ID, bob.ID), Participants: []models.ChatParticipant{{UserID: alice.ID}, {UserID: bob.ID}}}
	_, err := store.Chats.CreateChat(ctx, chat)
	require.NoError(t, err)

	text := "hi"
	require.NoError(t, store.Messages.CreateMessage(ctx, &models.Message{ChatID: chat.ID, SenderID: alice.ID, Content: &text, Status: models.MessageSent}))

	n, err := store.Messages.AdvanceStatus(ctx, chat.ID, bob.ID, models.MessageSeen)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = store.Messages.AdvanceStatus(ctx, chat.ID, bob.ID, models.MessageDelivered)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	msgs, err := store.Messages.GetMessagesByChatID(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.MessageSeen, msgs[0].Status)
}

func TestStories_ActiveFilter(t *testing.T) {
	store := testutil.OpenStore(t)
	ctx := context.Background()
	alice := createUser(t, store, "alice")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	live := &models.Story{AuthorID: alice.ID, CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(23 * time.Hour)}
	gone := &models.Story{AuthorID: alice.ID, CreatedAt: now.Add(-25 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, store.Stories.CreateStory(ctx, live))
	require.NoError(t, store.Stories.CreateStory(ctx, gone))

	active, err := store.Stories.GetActiveStoriesByUserIDs(ctx, []string{alice.ID}, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, live.ID, active[0].ID)
}

func TestRepairCounters(t *testing.T) {
	store := testutil.OpenStore(t)
	ctx := context.Background()
	alice, bob := createUser(t, store, "alice"), createUser(t, store, "bob")

	post := &models.Post{AuthorID: alice.ID, StorageID: "ref"}
	require.NoError(t, store.Posts.CreatePost(ctx, post))
	_, err := store.Likes.CreateLike(ctx, &models.Like{UserID: bob.ID, PostID: post.ID})
	require.NoError(t, err)
	_, err = store.Follows.CreateFollow(ctx, &models.Follow{FollowerID: bob.ID, FollowingID: alice.ID})
	require.NoError(t, err)

	// Drift the counters the wrong way.
	require.NoError(t, store.Posts.AdjustCounter(ctx, post.ID, repositories.CounterLikes, 7))
	require.NoError(t, store.Users.AdjustCounter(ctx, bob.ID, repositories.CounterPosts, 4))

	touched, err := store.RepairCounters(ctx)
	require.NoError(t, err)
	assert.Contains(t, touched, "post likes")

	got, err := store.Posts.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Likes)

	a, err := store.Users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, a.Posts)
	assert.EqualValues(t, 1, a.Followers)

	b, err := store.Users.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, b.Posts)
	assert.EqualValues(t, 1, b.Following)
}

func TestMedia_ClaimOnce(t *testing.T) {
	store := testutil.OpenStore(t)
	ctx := context.Background()
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	obj := &models.MediaObject{ID: "ref-1", OwnerID: alice.ID}
	require.NoError(t, store.Media.CreateMediaObject(ctx, obj))

	claimed, err := store.Media.ClaimMediaObject(ctx, obj.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, claimed, "pending upload")

	require.NoError(t, store.Media.MarkUploaded(ctx, obj.ID, "image/png", 3, time.Now()))

	claimed, err = store.Media.ClaimMediaObject(ctx, obj.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, claimed, "foreign owner")

	claimed, err = store.Media.ClaimMediaObject(ctx, obj.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.Media.ClaimMediaObject(ctx, obj.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, claimed, "already consumed")
}

func TestFollows_ListErrorsAreWrapped(t *testing.T) {
	db := testutil.OpenDB(t)
	store := repositories.NewStore(db)
	ctx := context.Background()
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = store.Follows.GetFollowers(ctx, "u1")
	assert.ErrorContains(t, err, "list followers")
	_, err = store.Follows.GetFollowing(ctx, "u1")
	assert.ErrorContains(t, err, "list following")
	_, err = store.Follows.GetFollowingIDs(ctx, "u1")
	assert.ErrorContains(t, err, "list following ids")
}
