package repository

import (
	"context"
	"testing"

	"dragontiger/repository/testutil"
	"dragontiger/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByID(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no user found", func(t *testing.T) {
		user, err := repo.GetByID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("user found", func(t *testing.T) {
		created, err := repo.Create(ctx, 111, 200000)
		require.NoError(t, err)
		require.NotNil(t, created)

		user, err := repo.GetByID(ctx, 111)
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, int64(111), user.UserID)
		assert.Equal(t, int64(200000), user.Balance)
		assert.False(t, user.CreatedAt.IsZero())
	})
}

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		user, err := repo.Create(ctx, 222, 200000)
		require.NoError(t, err)

		assert.Equal(t, int64(222), user.UserID)
		assert.Equal(t, int64(200000), user.Balance)
	})

	t.Run("duplicate user id", func(t *testing.T) {
		_, err := repo.Create(ctx, 333, 200000)
		require.NoError(t, err)

		_, err = repo.Create(ctx, 333, 200000)
		assert.Error(t, err)
	})
}

func TestUserRepository_AddBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("credits existing user", func(t *testing.T) {
		_, err := repo.Create(ctx, 111, 1000)
		require.NoError(t, err)

		err = repo.AddBalance(ctx, 111, 2000)
		require.NoError(t, err)

		user, err := repo.GetByID(ctx, 111)
		require.NoError(t, err)
		assert.Equal(t, int64(3000), user.Balance)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := repo.AddBalance(ctx, 999, 2000)
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		err := repo.AddBalance(ctx, 111, 0)
		assert.Error(t, err)
	})
}

func TestUserRepository_DeductBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("debits within balance", func(t *testing.T) {
		_, err := repo.Create(ctx, 111, 10000)
		require.NoError(t, err)

		err = repo.DeductBalance(ctx, 111, 1000)
		require.NoError(t, err)

		user, err := repo.GetByID(ctx, 111)
		require.NoError(t, err)
		assert.Equal(t, int64(9000), user.Balance)
	})

	t.Run("exact balance allowed", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 111, 9000)
		require.NoError(t, err)

		user, err := repo.GetByID(ctx, 111)
		require.NoError(t, err)
		assert.Equal(t, int64(0), user.Balance)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 111, 1)
		assert.ErrorIs(t, err, service.ErrInsufficientFunds)

		// Balance is untouched
		user, getErr := repo.GetByID(ctx, 111)
		require.NoError(t, getErr)
		assert.Equal(t, int64(0), user.Balance)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 999, 100)
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

func TestUserRepository_GetAll(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, 100)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 2, 300)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 3, 200)
	require.NoError(t, err)

	users, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)

	// Ordered by balance, richest first
	assert.Equal(t, int64(2), users[0].UserID)
	assert.Equal(t, int64(3), users[1].UserID)
	assert.Equal(t, int64(1), users[2].UserID)
}
