package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPresence_HeartbeatWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	status, err := f.svc.Presence.GetOnlineStatus(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, status.IsOnline)

	require.NoError(t, f.svc.Presence.UpdatePresence(ctx, alice.ID, true))
	status, err = f.svc.Presence.GetOnlineStatus(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, status.IsOnline)
	require.NotNil(t, status.LastSeen)

	f.clock.Advance(4 * time.Minute)
	status, err = f.svc.Presence.GetOnlineStatus(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, status.IsOnline)

	f.clock.Advance(2 * time.Minute)
	status, err = f.svc.Presence.GetOnlineStatus(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, status.IsOnline)
}

func TestPresence_Offline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	require.NoError(t, f.svc.Presence.UpdatePresence(ctx, alice.ID, true))
	require.NoError(t, f.svc.Presence.UpdatePresence(ctx, alice.ID, false))

	status, err := f.svc.Presence.GetOnlineStatus(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, status.IsOnline)
	assert.NotNil(t, status.LastSeen)
}

func TestPresence_CacheExpiryWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	require.NoError(t, f.svc.Presence.UpdatePresence(ctx, alice.ID, true))
	f.cache.Expire(alice.ID)

	status, err := f.svc.Presence.GetOnlineStatus(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, status.IsOnline)
}

func TestPresence_UnknownUser(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Presence.UpdatePresence(context.Background(), "missing", true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

type unavailableCache struct{ err error }

func (c unavailableCache) Touch(ctx context.Context, userID string, online bool) error { return c.err }

func (c unavailableCache) Online(ctx context.Context, userID string) (bool, error) { return false, c.err }

func TestPresence_CacheFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	presence := NewPresenceService(f.store, unavailableCache{err: errors.New("redis down")}, f.clock.Now, zap.NewNop())

	require.NoError(t, presence.UpdatePresence(ctx, alice.ID, true))
	assert.True(t, f.reload(t, alice.ID).IsOnline)

	status, err := presence.GetOnlineStatus(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, status.IsOnline)

	require.NoError(t, presence.UpdatePresence(ctx, alice.ID, false))
	status, err = presence.GetOnlineStatus(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, status.IsOnline)
}
