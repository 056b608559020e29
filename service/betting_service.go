package service

import (
	"context"
	"fmt"

	"dragontiger/events"
	"dragontiger/metrics"
	"dragontiger/models"
)

// bettingService implements the BettingService interface
type bettingService struct {
	uowFactory UnitOfWorkFactory
}

// NewBettingService creates a new betting service
func NewBettingService(uowFactory UnitOfWorkFactory) BettingService {
	return &bettingService{
		uowFactory: uowFactory,
	}
}

// PlaceBet places a stake on a side of the given round. The round check,
// the one-bet-per-round check, the debit and the bet insert are a single
// transaction: if any precondition fails nothing is mutated. The shared
// lock on the round row serializes the bet against a concurrent round
// close, so a bet can never land in a round that already flipped to CLOSED.
func (s *bettingService) PlaceBet(ctx context.Context, roundID, userID int64, choice models.Choice, amount int64) (*models.BetReceipt, error) {
	if !choice.IsValid() {
		metrics.BetsRejected.WithLabelValues("invalid_choice").Inc()
		return nil, fmt.Errorf("choice %q: %w", choice, ErrInvalidChoice)
	}
	if amount <= 0 {
		metrics.BetsRejected.WithLabelValues("invalid_amount").Inc()
		return nil, fmt.Errorf("amount %d: %w", amount, ErrInvalidAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	round, err := uow.RoundRepository().GetForShare(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get round state: %w", err)
	}
	if round == nil {
		return nil, fmt.Errorf("round state not initialized")
	}
	if round.RoundID != roundID || !round.IsBetting() {
		metrics.BetsRejected.WithLabelValues("round_not_open").Inc()
		return nil, fmt.Errorf("round %d: %w", roundID, ErrRoundNotOpen)
	}

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.HasSufficientBalance(amount) {
		metrics.BetsRejected.WithLabelValues("insufficient_funds").Inc()
		return nil, fmt.Errorf("have %d, need %d: %w", user.Balance, amount, ErrInsufficientFunds)
	}

	// The primary key makes this the authoritative one-bet-per-round check
	inserted, err := uow.BetRepository().Create(ctx, &models.Bet{
		RoundID: roundID,
		UserID:  userID,
		Choice:  choice,
		Amount:  amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}
	if !inserted {
		metrics.BetsRejected.WithLabelValues("already_bet").Inc()
		return nil, fmt.Errorf("round %d user %d: %w", roundID, userID, ErrAlreadyBet)
	}

	// Conditional debit; a concurrent spend on the same player surfaces
	// here as insufficient funds and rolls the bet back with it
	if err := uow.UserRepository().DeductBalance(ctx, userID, amount); err != nil {
		return nil, fmt.Errorf("failed to debit stake: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    user.Balance - amount,
		ChangeAmount:    -amount,
		TransactionType: models.TransactionTypeBetStake,
		TransactionMetadata: map[string]any{
			"round_id": roundID,
			"choice":   string(choice),
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record stake: %w", err)
	}

	uow.EventBus().Publish(events.BetPlacedEvent{
		RoundID: roundID,
		UserID:  userID,
		Choice:  choice,
		Amount:  amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.BetsPlaced.WithLabelValues(string(choice)).Inc()
	metrics.PointsStaked.Add(float64(amount))

	return &models.BetReceipt{
		RoundID:    roundID,
		Choice:     choice,
		Amount:     amount,
		NewBalance: user.Balance - amount,
	}, nil
}
