package postgres_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fennwald/emberquest/internal/game/character"
	"github.com/fennwald/emberquest/internal/game/fault"
	"github.com/fennwald/emberquest/internal/storage/postgres"
	"github.com/fennwald/emberquest/internal/testutil"
)

var userSeq atomic.Int64

func nextUserID() int64 {
	return userSeq.Add(1)
}

func TestCharacterRepository_CreateAndGet(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewCharacterRepository(pool)
	ctx := context.Background()

	c := character.New("Arin")
	c.UserID = nextUserID()
	c.Gold = 100

	created, err := repo.Create(ctx, c)
	require.NoError(t, err)
	assert.Greater(t, created.ID, int64(0))
	assert.Equal(t, c.UserID, created.UserID)
	assert.Equal(t, "Arin", created.Name)
	assert.Equal(t, 1, created.Level)
	assert.Equal(t, 100, created.ExperienceToNext)
	assert.Equal(t, 50, created.MaxHP)
	assert.Equal(t, 10, created.Stats.Attack)
	assert.Equal(t, 100, created.Gold)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Stats, got.Stats)

	byUser, err := repo.GetByUser(ctx, c.UserID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUser.ID)
}

func TestCharacterRepository_OneCharacterPerUser(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewCharacterRepository(pool)
	ctx := context.Background()

	c := character.New("Arin")
	c.UserID = nextUserID()
	_, err := repo.Create(ctx, c)
	require.NoError(t, err)

	dup := character.New("Brel")
	dup.UserID = c.UserID
	_, err = repo.Create(ctx, dup)
	assert.True(t, fault.IsConflict(err))
}

func TestCharacterRepository_GetMissing(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewCharacterRepository(pool)

	_, err := repo.Get(context.Background(), 999999)
	assert.True(t, fault.IsNotFound(err))
}

func TestCharacterRepository_SavePersistsProgression(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewCharacterRepository(pool)
	ctx := context.Background()

	c := character.New("Arin")
	c.UserID = nextUserID()
	created, err := repo.Create(ctx, c)
	require.NoError(t, err)

	created.GainExperience(150)
	created.Gold = 40
	created.SetHP(12)
	require.NoError(t, repo.Save(ctx, created))

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Level)
	assert.Equal(t, 50, got.Experience)
	assert.Equal(t, 200, got.ExperienceToNext)
	assert.Equal(t, 40, got.Gold)
	assert.Equal(t, 60, got.MaxHP)
	assert.Equal(t, 12, got.Stats.Attack)
}

func TestCharacterRepository_SaveMissing(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewCharacterRepository(pool)

	c := character.New("Ghost")
	c.ID = 999999
	err := repo.Save(context.Background(), c)
	assert.True(t, fault.IsNotFound(err))
}
