package services

import (
	"context"
	"testing"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity_Resolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	got, err := f.svc.Identity.Resolve(ctx, "ext-alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = f.svc.Identity.Resolve(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = f.svc.Identity.Resolve(ctx, "ext-nobody")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestIdentity_RegisterIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	again, created, err := f.svc.Identity.Register(ctx, "ext-alice", models.CreateUserRequest{Username: "alice2"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, alice.ID, again.ID)
	assert.Equal(t, "alice", again.Username)
}

func TestIdentity_RegisterRejectsTakenUsername(t *testing.T) {
	f := newFixture(t)
	f.user(t, "alice")

	_, _, err := f.svc.Identity.Register(context.Background(), "ext-other", models.CreateUserRequest{Username: "alice"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}
