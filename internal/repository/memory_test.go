package repository

import (
	"context"
	"testing"

	"github.com/Dan9191/bankshot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	user := &models.User{ID: "u1", Username: "demo", Email: " Demo@GamePlan.com ", PasswordHash: "h"}
	require.NoError(t, repo.CreateUser(ctx, user))
	assert.False(t, user.CreatedAt.IsZero())

	got, err := repo.FindUserByEmail(ctx, "demo@gameplan.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "demo@gameplan.com", got.Email)

	got, err = repo.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "h", got.PasswordHash)
}

func TestMemory_Errors(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.CreateUser(ctx, &models.User{ID: "u1", Email: "a@b.co"}))

	assert.ErrorIs(t, repo.CreateUser(ctx, &models.User{ID: "u2", Email: "A@B.CO"}), ErrDuplicateEmail)

	_, err := repo.FindUserByEmail(ctx, "missing@b.co")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindUserByID(ctx, "u2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.CreateUser(ctx, &models.User{ID: "u1", Email: "a@b.co", Username: "a"}))

	got, _ := repo.FindUserByID(ctx, "u1")
	got.Username = "changed"

	again, _ := repo.FindUserByID(ctx, "u1")
	assert.Equal(t, "a", again.Username)
}

func TestMemory_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.CreateUser(ctx, &models.User{ID: "u1", Email: "a@b.co", PasswordHash: "old"}))

	require.NoError(t, repo.UpdatePassword(ctx, "u1", "new"))
	got, err := repo.FindUserByEmail(ctx, "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, "missing", "x"), ErrNotFound)
}
