package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"dragontiger/events"
	"dragontiger/models"
	"dragontiger/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_RollbackDiscardsChanges(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	factory := NewUnitOfWorkFactory(testDB.DB, eventBus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.UserRepository().Create(ctx, 111, 200000)
	require.NoError(t, err)

	require.NoError(t, uow.Rollback())

	// The user never existed outside the transaction
	userRepo := NewUserRepository(testDB.DB)
	user, err := userRepo.GetByID(ctx, 111)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUnitOfWork_CommitFlushesEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()

	var mu sync.Mutex
	var received []events.Event
	done := make(chan struct{}, 1)
	eventBus.Subscribe(events.EventTypeUserCreated, func(_ context.Context, e events.Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		done <- struct{}{}
	})

	factory := NewUnitOfWorkFactory(testDB.DB, eventBus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.UserRepository().Create(ctx, 111, 200000)
	require.NoError(t, err)
	uow.EventBus().Publish(events.UserCreatedEvent{UserID: 111, InitialBalance: 200000})

	// Nothing is emitted until the transaction commits
	mu.Lock()
	assert.Empty(t, received)
	mu.Unlock()

	require.NoError(t, uow.Commit())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected event after commit")
	}

	mu.Lock()
	require.Len(t, received, 1)
	created := received[0].(events.UserCreatedEvent)
	mu.Unlock()
	assert.Equal(t, int64(111), created.UserID)
}

func TestUnitOfWork_BetFlowIsAtomic(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	factory := NewUnitOfWorkFactory(testDB.DB, eventBus)

	// Seed a player and a round outside the transaction under test
	setup := factory.Create()
	require.NoError(t, setup.Begin(ctx))
	_, err := setup.UserRepository().Create(ctx, 111, 10000)
	require.NoError(t, err)
	require.NoError(t, setup.RoundRepository().Seed(ctx, 1, time.Now().Add(45*time.Second)))
	require.NoError(t, setup.Commit())

	// Bet insert and stake debit in one transaction, then abandon it
	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	inserted, err := uow.BetRepository().Create(ctx, &models.Bet{
		RoundID: 1, UserID: 111, Choice: models.ChoiceDragon, Amount: 1000,
	})
	require.NoError(t, err)
	require.True(t, inserted)
	require.NoError(t, uow.UserRepository().DeductBalance(ctx, 111, 1000))

	require.NoError(t, uow.Rollback())

	// Neither the bet nor the debit survived
	betRepo := NewBetRepository(testDB.DB)
	bets, err := betRepo.GetByRound(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, bets)

	userRepo := NewUserRepository(testDB.DB)
	user, err := userRepo.GetByID(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), user.Balance)
}

func TestUnitOfWork_RepositoryAccessBeforeBeginPanics(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	eventBus := events.NewBus()
	factory := NewUnitOfWorkFactory(testDB.DB, eventBus)

	uow := factory.Create()

	assert.Panics(t, func() {
		uow.UserRepository()
	})
}
