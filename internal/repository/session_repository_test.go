package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskhive/deskhive/internal/models"
)

func sessionFixture(token string, userID int, expiresAt time.Time) *models.Session {
	return &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: expiresAt.Add(-models.SessionTTL),
	}
}

func TestMemorySessionRepository_CreateAndGet(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()
	expires := time.Now().Add(models.SessionTTL)

	require.NoError(t, repo.Create(ctx, sessionFixture("tok-1", 7, expires)))

	got, err := repo.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.UserID)
	assert.WithinDuration(t, expires, got.ExpiresAt, time.Second)
}

func TestMemorySessionRepository_CreateRequiresToken(t *testing.T) {
	repo := NewMemorySessionRepository()
	err := repo.Create(context.Background(), sessionFixture("", 1, time.Now()))
	require.Error(t, err)
}

func TestMemorySessionRepository_DuplicateToken(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	require.NoError(t, repo.Create(ctx, sessionFixture("tok-1", 1, expires)))
	err := repo.Create(ctx, sessionFixture("tok-1", 2, expires))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemorySessionRepository_GetUnknownToken(t *testing.T) {
	repo := NewMemorySessionRepository()
	_, err := repo.GetByToken(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySessionRepository_GetDoesNotCheckExpiry(t *testing.T) {
	// Expiry is the validator's decision; the repository returns the row as-is.
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sessionFixture("tok-old", 1, time.Now().Add(-time.Hour))))
	got, err := repo.GetByToken(ctx, "tok-old")
	require.NoError(t, err)
	assert.Equal(t, 1, got.UserID)
}

func TestMemorySessionRepository_Delete(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sessionFixture("tok-1", 1, time.Now().Add(time.Hour))))
	require.NoError(t, repo.Delete(ctx, "tok-1"))

	_, err := repo.GetByToken(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "tok-1"), ErrNotFound)
}

func TestMemorySessionRepository_DeleteByUserID(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	require.NoError(t, repo.Create(ctx, sessionFixture("a", 1, expires)))
	require.NoError(t, repo.Create(ctx, sessionFixture("b", 1, expires)))
	require.NoError(t, repo.Create(ctx, sessionFixture("c", 2, expires)))

	n, err := repo.DeleteByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = repo.GetByToken(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByToken(ctx, "c")
	assert.NoError(t, err, "other users' sessions survive")
}

func TestMemorySessionRepository_DeleteExpired(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, sessionFixture("live", 1, now.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, sessionFixture("dead", 1, now.Add(-time.Minute))))
	require.NoError(t, repo.Create(ctx, sessionFixture("edge", 1, now)))

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "expiry at the cutoff instant counts as expired")

	_, err = repo.GetByToken(ctx, "live")
	assert.NoError(t, err)
	_, err = repo.GetByToken(ctx, "dead")
	assert.ErrorIs(t, err, ErrNotFound)
}
