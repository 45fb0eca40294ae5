package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ugaemi/arena-server/internal/account"
)

// The same behaviour is required of every Store; each backend runs these.

func testCreateAndFind(t *testing.T, s Store) {
	ctx := context.Background()

	acc := account.NewGuestAccount("guest")
	require.NoError(t, s.Create(ctx, acc))

	found, err := s.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, acc.ID, found.ID)
	assert.Equal(t, "guest", found.Nickname)
	assert.True(t, found.IsGuest)

	missing, err := s.FindByID(ctx, "nonexistent-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testUpdates(t *testing.T, s Store) {
	ctx := context.Background()

	acc := account.NewGuestAccount("before")
	require.NoError(t, s.Create(ctx, acc))

	require.NoError(t, s.UpdateNickname(ctx, acc.ID, "after"))
	require.NoError(t, s.UpdateLastLogin(ctx, acc.ID))

	found, err := s.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", found.Nickname)
	assert.False(t, found.LastLoginAt.Before(acc.CreatedAt.Truncate(time.Microsecond)))

	assert.ErrorIs(t, s.UpdateNickname(ctx, "nonexistent-id", "x"), ErrAccountNotFound)
	assert.ErrorIs(t, s.UpdateLastLogin(ctx, "nonexistent-id"), ErrAccountNotFound)
}

func testRuns(t *testing.T, s Store) {
	ctx := context.Background()

	a := account.NewGuestAccount("a")
	b := account.NewGuestAccount("b")
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))

	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
	runs := []*account.Run{
		{ID: "r1", AccountID: a.ID, Nickname: "a", Kills: 2, Survived: 40, EndedAt: base},
		{ID: "r2", AccountID: a.ID, Nickname: "a", Kills: 5, Survived: 10, EndedAt: base.Add(time.Minute)},
		{ID: "r3", AccountID: b.ID, Nickname: "b", Kills: 2, Survived: 50, EndedAt: base.Add(2 * time.Minute)},
		{ID: "r4", AccountID: b.ID, Nickname: "b", Kills: 0, Survived: 5, EndedAt: base.Add(3 * time.Minute)},
	}
	for _, r := range runs {
		require.NoError(t, s.SaveRun(ctx, r))
	}

	top, err := s.TopRuns(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "r2", top[0].ID)
	assert.Equal(t, "r3", top[1].ID)
	assert.Equal(t, "r1", top[2].ID)

	all, err := s.TopRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	mine, err := s.RunsByAccount(ctx, a.ID, 10)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "r2", mine[0].ID, "newest first")
	assert.Equal(t, "r1", mine[1].ID)
	assert.Equal(t, 40.0, mine[1].Survived)
}

func TestMemoryStore(t *testing.T) {
	t.Run("create and find", func(t *testing.T) { testCreateAndFind(t, NewMemoryStore()) })
	t.Run("updates", func(t *testing.T) { testUpdates(t, NewMemoryStore()) })
	t.Run("runs", func(t *testing.T) { testRuns(t, NewMemoryStore()) })
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	acc := account.NewGuestAccount("original")
	require.NoError(t, s.Create(ctx, acc))
	acc.Nickname = "mutated"

	found, err := s.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", found.Nickname)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLeaderboardSize, normalizeLimit(0))
	assert.Equal(t, DefaultLeaderboardSize, normalizeLimit(-5))
	assert.Equal(t, 3, normalizeLimit(3))
}
