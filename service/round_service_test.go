package service

import (
	"context"
	"testing"
	"time"

	"dragontiger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// newTestRoundService builds a round service with a fixed clock and a
// scripted card sequence so settlement is deterministic.
func newTestRoundService(factory UnitOfWorkFactory, now time.Time, cards ...models.Card) *roundService {
	queue := cards
	return &roundService{
		uowFactory:    factory,
		bettingWindow: 45 * time.Second,
		revealDelay:   3 * time.Second,
		multipliers: map[models.Choice]float64{
			models.ChoiceDragon: 2.0,
			models.ChoiceTiger:  2.0,
			models.ChoiceTie:    9.0,
		},
		payoutPolicy: models.PayoutTruncate,
		now:          func() time.Time { return now },
		draw: func() (models.Card, error) {
			card := queue[0]
			queue = queue[1:]
			return card, nil
		},
	}
}

func TestRoundService_Tick_BeforeDeadline(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRoundRepo := new(MockRoundRepository)

	mockUoW.SetRepositories(nil, mockRoundRepo, nil, nil, nil)

	service := newTestRoundService(mockFactory, now)

	round := &models.Round{
		RoundID:  7,
		Phase:    models.PhaseBetting,
		Deadline: now.Add(20 * time.Second),
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	// No Commit expected for a no-op tick

	mockRoundRepo.On("GetForUpdate", ctx).Return(round, nil)

	result, err := service.Tick(ctx)

	assert.NoError(t, err)
	assert.True(t, result.IsNoop())

	mockRoundRepo.AssertNotCalled(t, "CloseBetting")
	mockUoW.AssertExpectations(t)
}

func TestRoundService_Tick_ClosesBetting(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRoundRepo := new(MockRoundRepository)

	mockUoW.SetRepositories(nil, mockRoundRepo, nil, nil, nil)

	service := newTestRoundService(mockFactory, now)

	round := &models.Round{
		RoundID:  7,
		Phase:    models.PhaseBetting,
		Deadline: now.Add(-1 * time.Second),
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRoundRepo.On("GetForUpdate", ctx).Return(round, nil)
	mockRoundRepo.On("CloseBetting", ctx, int64(7), now.Add(3*time.Second)).Return(true, nil)

	result, err := service.Tick(ctx)

	assert.NoError(t, err)
	assert.NotNil(t, result.Closed)
	assert.Equal(t, int64(7), result.Closed.RoundID)
	assert.Equal(t, now.Add(3*time.Second), result.Closed.RevealAt)
	assert.Nil(t, result.Settlement)
	assert.Nil(t, result.Opened)

	mockUoW.AssertExpectations(t)
	mockRoundRepo.AssertExpectations(t)
}

func TestRoundService_Tick_CloseRace(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRoundRepo := new(MockRoundRepository)

	mockUoW.SetRepositories(nil, mockRoundRepo, nil, nil, nil)

	service := newTestRoundService(mockFactory, now)

	round := &models.Round{
		RoundID:  7,
		Phase:    models.PhaseBetting,
		Deadline: now,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRoundRepo.On("GetForUpdate", ctx).Return(round, nil)
	// Another instance already flipped the phase
	mockRoundRepo.On("CloseBetting", ctx, int64(7), now.Add(3*time.Second)).Return(false, nil)

	result, err := service.Tick(ctx)

	assert.NoError(t, err)
	assert.True(t, result.IsNoop())
}

func TestRoundService_Tick_SettlesRound(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockRoundRepo := new(MockRoundRepository)
	mockBetRepo := new(MockBetRepository)
	mockOutcomeRepo := new(MockOutcomeRepository)
	mockBalanceHistoryRepo := new(MockBalanceHistoryRepository)

	mockUoW.SetRepositories(mockUserRepo, mockRoundRepo, mockBetRepo, mockOutcomeRepo, mockBalanceHistoryRepo)

	// Dragon draws a queen against a seven: Dragon wins
	service := newTestRoundService(mockFactory, now,
		models.Card{Rank: "Q", Suit: "♥"},
		models.Card{Rank: "7", Suit: "♠"},
	)

	round := &models.Round{
		RoundID:  7,
		Phase:    models.PhaseClosed,
		Deadline: now.Add(-1 * time.Second),
	}

	bets := []*models.Bet{
		{RoundID: 7, UserID: 111, Choice: models.ChoiceDragon, Amount: 1000},
		{RoundID: 7, UserID: 222, Choice: models.ChoiceTiger, Amount: 500},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRoundRepo.On("GetForUpdate", ctx).Return(round, nil)
	mockOutcomeRepo.On("GetByRound", ctx, int64(7)).Return(nil, nil)
	mockBetRepo.On("GetByRound", ctx, int64(7)).Return(bets, nil)

	// Winner gets stake x2 back; the loser's stake was debited at placement
	mockUserRepo.On("AddBalance", ctx, int64(111), int64(2000)).Return(nil)
	mockUserRepo.On("GetByID", ctx, int64(111)).Return(&models.User{UserID: 111, Balance: 11000}, nil)
	mockBalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.UserID == 111 &&
			h.BalanceBefore == 9000 &&
			h.BalanceAfter == 11000 &&
			h.ChangeAmount == 2000 &&
			h.TransactionType == models.TransactionTypeBetPayout
	})).Return(nil)

	mockOutcomeRepo.On("Create", ctx, mock.MatchedBy(func(o *models.Outcome) bool {
		return o.RoundID == 7 &&
			o.WinningSide == models.ChoiceDragon &&
			o.DragonCard == "Q♥" &&
			o.TigerCard == "7♠" &&
			o.TotalWinners == 1 &&
			o.TotalPaid == 2000
	})).Return(nil)

	mockRoundRepo.On("OpenNextRound", ctx, int64(7), now.Add(45*time.Second), "Q♥ vs 7♠ => Dragon").Return(true, nil)

	result, err := service.Tick(ctx)

	assert.NoError(t, err)
	assert.NotNil(t, result.Settlement)
	assert.Equal(t, int64(7), result.Settlement.RoundID)
	assert.Equal(t, models.ChoiceDragon, result.Settlement.WinningSide)
	assert.Equal(t, int64(2), result.Settlement.TotalBets)
	assert.Equal(t, int64(1500), result.Settlement.TotalStaked)
	assert.Equal(t, int64(1), result.Settlement.TotalWinners)
	assert.Equal(t, int64(2000), result.Settlement.TotalPaid)

	assert.NotNil(t, result.Opened)
	assert.Equal(t, int64(8), result.Opened.RoundID)
	assert.Equal(t, now.Add(45*time.Second), result.Opened.Deadline)

	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockRoundRepo.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
	mockOutcomeRepo.AssertExpectations(t)
	mockBalanceHistoryRepo.AssertExpectations(t)

	// Losers are never credited
	mockUserRepo.AssertNotCalled(t, "AddBalance", ctx, int64(222), mock.Anything)
}

func TestRoundService_Tick_TiePaysOnlyTieBets(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockRoundRepo := new(MockRoundRepository)
	mockBetRepo := new(MockBetRepository)
	mockOutcomeRepo := new(MockOutcomeRepository)
	mockBalanceHistoryRepo := new(MockBalanceHistoryRepository)

	mockUoW.SetRepositories(mockUserRepo, mockRoundRepo, mockBetRepo, mockOutcomeRepo, mockBalanceHistoryRepo)

	// Equal ranks, different suits: Tie
	service := newTestRoundService(mockFactory, now,
		models.Card{Rank: "9", Suit: "♦"},
		models.Card{Rank: "9", Suit: "♣"},
	)

	round := &models.Round{
		RoundID:  4,
		Phase:    models.PhaseClosed,
		Deadline: now,
	}

	bets := []*models.Bet{
		{RoundID: 4, UserID: 111, Choice: models.ChoiceDragon, Amount: 2000},
		{RoundID: 4, UserID: 333, Choice: models.ChoiceTie, Amount: 100},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRoundRepo.On("GetForUpdate", ctx).Return(round, nil)
	mockOutcomeRepo.On("GetByRound", ctx, int64(4)).Return(nil, nil)
	mockBetRepo.On("GetByRound", ctx, int64(4)).Return(bets, nil)

	mockUserRepo.On("AddBalance", ctx, int64(333), int64(900)).Return(nil)
	mockUserRepo.On("GetByID", ctx, int64(333)).Return(&models.User{UserID: 333, Balance: 1100}, nil)
	mockBalanceHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)

	mockOutcomeRepo.On("Create", ctx, mock.MatchedBy(func(o *models.Outcome) bool {
		return o.WinningSide == models.ChoiceTie && o.TotalWinners == 1 && o.TotalPaid == 900
	})).Return(nil)

	mockRoundRepo.On("OpenNextRound", ctx, int64(4), now.Add(45*time.Second), "9♦ vs 9♣ => Tie").Return(true, nil)

	result, err := service.Tick(ctx)

	assert.NoError(t, err)
	assert.Equal(t, models.ChoiceTie, result.Settlement.WinningSide)
	assert.Equal(t, int64(900), result.Settlement.TotalPaid)

	mockUserRepo.AssertNotCalled(t, "AddBalance", ctx, int64(111), mock.Anything)
}

func TestRoundService_Tick_SettlementReplayDoesNotPayTwice(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockRoundRepo := new(MockRoundRepository)
	mockBetRepo := new(MockBetRepository)
	mockOutcomeRepo := new(MockOutcomeRepository)

	mockUoW.SetRepositories(mockUserRepo, mockRoundRepo, mockBetRepo, mockOutcomeRepo, nil)

	service := newTestRoundService(mockFactory, now)

	round := &models.Round{
		RoundID:  7,
		Phase:    models.PhaseClosed,
		Deadline: now,
	}

	// A previous run settled the round but died before advancing the row
	existing := &models.Outcome{
		RoundID:      7,
		WinningSide:  models.ChoiceTiger,
		DragonCard:   "3♠",
		TigerCard:    "K♦",
		TotalWinners: 2,
		TotalPaid:    4400,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRoundRepo.On("GetForUpdate", ctx).Return(round, nil)
	mockOutcomeRepo.On("GetByRound", ctx, int64(7)).Return(existing, nil)
	mockRoundRepo.On("OpenNextRound", ctx, int64(7), now.Add(45*time.Second), "3♠ vs K♦ => Tiger").Return(true, nil)

	result, err := service.Tick(ctx)

	assert.NoError(t, err)
	assert.Equal(t, models.ChoiceTiger, result.Settlement.WinningSide)
	assert.Equal(t, int64(8), result.Opened.RoundID)

	// No re-credit, no second outcome record
	mockUserRepo.AssertNotCalled(t, "AddBalance")
	mockOutcomeRepo.AssertNotCalled(t, "Create")
	mockBetRepo.AssertNotCalled(t, "GetByRound")
}

func TestRoundService_EnsureRound(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRoundRepo := new(MockRoundRepository)

	mockUoW.SetRepositories(nil, mockRoundRepo, nil, nil, nil)

	service := newTestRoundService(mockFactory, now)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRoundRepo.On("Seed", ctx, int64(1), now.Add(45*time.Second)).Return(nil)

	err := service.EnsureRound(ctx)

	assert.NoError(t, err)
	mockRoundRepo.AssertExpectations(t)
}

func TestRoundService_GetRoundStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockRoundRepo := new(MockRoundRepository)

	mockUoW.SetRepositories(nil, mockRoundRepo, nil, nil, nil)

	service := newTestRoundService(mockFactory, now)

	lastResult := "Q♥ vs 7♠ => Dragon"
	round := &models.Round{
		RoundID:    8,
		Phase:      models.PhaseBetting,
		Deadline:   now.Add(30 * time.Second),
		LastResult: &lastResult,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRoundRepo.On("Get", ctx).Return(round, nil)

	status, err := service.GetRoundStatus(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(8), status.RoundID)
	assert.Equal(t, models.PhaseBetting, status.Phase)
	assert.Equal(t, int64(30), status.SecondsRemaining)
	assert.Equal(t, lastResult, status.LastResult)
}
