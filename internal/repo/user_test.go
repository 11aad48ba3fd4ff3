package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/inventory/internal/db/dbtest"
	"github.com/Skotchmaster/inventory/internal/models"
)

func newUserRepo(t *testing.T) *UserRepo {
	t.Helper()
	return NewUserRepo(NewGormRepo(dbtest.Open(t)))
}

func TestUserRepo_CreateAndFind(t *testing.T) {
	t.Parallel()

	r := newUserRepo(t)
	ctx := context.Background()

	u := &models.User{Username: "alice", PasswordHash: "digest"}
	require.NoError(t, r.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	byName, err := r.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
	assert.Nil(t, byName.RefreshToken)

	byID, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestUserRepo_Create_DuplicateUsername(t *testing.T) {
	t.Parallel()

	r := newUserRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.User{Username: "alice", PasswordHash: "a"}))
	err := r.Create(ctx, &models.User{Username: "alice", PasswordHash: "b"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepo_NotFound(t *testing.T) {
	t.Parallel()

	r := newUserRepo(t)
	ctx := context.Background()

	_, err := r.FindByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	token := "t"
	assert.ErrorIs(t, r.SetRefreshToken(ctx, "missing", &token), ErrNotFound)
}

func TestUserRepo_SetRefreshToken(t *testing.T) {
	t.Parallel()

	r := newUserRepo(t)
	ctx := context.Background()

	u := &models.User{Username: "alice", PasswordHash: "digest"}
	require.NoError(t, r.Create(ctx, u))

	token := "refresh-1"
	require.NoError(t, r.SetRefreshToken(ctx, u.ID, &token))

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RefreshToken)
	assert.Equal(t, "refresh-1", *got.RefreshToken)

	require.NoError(t, r.SetRefreshToken(ctx, u.ID, nil))

	got, err = r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RefreshToken)
}

func TestUserRepo_SwapRefreshToken(t *testing.T) {
	t.Parallel()

	r := newUserRepo(t)
	ctx := context.Background()

	u := &models.User{Username: "alice", PasswordHash: "digest"}
	require.NoError(t, r.Create(ctx, u))
	first := "refresh-1"
	require.NoError(t, r.SetRefreshToken(ctx, u.ID, &first))

	require.NoError(t, r.SwapRefreshToken(ctx, u.ID, "refresh-1", "refresh-2"))
	assert.ErrorIs(t, r.SwapRefreshToken(ctx, u.ID, "refresh-1", "refresh-3"), ErrNotFound)

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RefreshToken)
	assert.Equal(t, "refresh-2", *got.RefreshToken)
}
