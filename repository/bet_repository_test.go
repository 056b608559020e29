package repository

import (
	"context"
	"testing"

	"dragontiger/models"
	"dragontiger/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	_, err := userRepo.Create(ctx, 111, 200000)
	require.NoError(t, err)

	t.Run("first bet inserts", func(t *testing.T) {
		inserted, err := repo.Create(ctx, &models.Bet{
			RoundID: 1,
			UserID:  111,
			Choice:  models.ChoiceDragon,
			Amount:  1000,
		})
		require.NoError(t, err)
		assert.True(t, inserted)
	})

	t.Run("second bet in same round conflicts", func(t *testing.T) {
		inserted, err := repo.Create(ctx, &models.Bet{
			RoundID: 1,
			UserID:  111,
			Choice:  models.ChoiceTiger,
			Amount:  500,
		})
		require.NoError(t, err)
		assert.False(t, inserted)

		// The original bet is untouched
		bets, err := repo.GetByRound(ctx, 1)
		require.NoError(t, err)
		require.Len(t, bets, 1)
		assert.Equal(t, models.ChoiceDragon, bets[0].Choice)
		assert.Equal(t, int64(1000), bets[0].Amount)
	})

	t.Run("same player may bet in the next round", func(t *testing.T) {
		inserted, err := repo.Create(ctx, &models.Bet{
			RoundID: 2,
			UserID:  111,
			Choice:  models.ChoiceTie,
			Amount:  250,
		})
		require.NoError(t, err)
		assert.True(t, inserted)
	})
}

func TestBetRepository_GetByRound(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		_, err := userRepo.Create(ctx, id, 10000)
		require.NoError(t, err)
	}

	t.Run("empty round", func(t *testing.T) {
		bets, err := repo.GetByRound(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, bets)
	})

	t.Run("returns all bets for the round", func(t *testing.T) {
		for i, bet := range []*models.Bet{
			{RoundID: 5, UserID: 1, Choice: models.ChoiceDragon, Amount: 100},
			{RoundID: 5, UserID: 2, Choice: models.ChoiceTiger, Amount: 200},
			{RoundID: 6, UserID: 3, Choice: models.ChoiceTie, Amount: 300},
		} {
			inserted, err := repo.Create(ctx, bet)
			require.NoError(t, err, "bet %d", i)
			require.True(t, inserted)
		}

		bets, err := repo.GetByRound(ctx, 5)
		require.NoError(t, err)
		require.Len(t, bets, 2)

		assert.Equal(t, int64(1), bets[0].UserID)
		assert.Equal(t, int64(2), bets[1].UserID)
		assert.False(t, bets[0].PlacedAt.IsZero())
	})
}
