package service

import (
	"context"
	"fmt"
	"time"

	"dragontiger/config"
	"dragontiger/events"
	"dragontiger/metrics"
	"dragontiger/models"

	log "github.com/sirupsen/logrus"
)

// roundService implements the RoundService interface. It is the only
// writer of round phase transitions; bet placement only ever reads the
// round row.
type roundService struct {
	uowFactory    UnitOfWorkFactory
	bettingWindow time.Duration
	revealDelay   time.Duration
	multipliers   map[models.Choice]float64
	payoutPolicy  models.PayoutPolicy
	now           func() time.Time
	draw          func() (models.Card, error)
}

// NewRoundService creates a new round service
func NewRoundService(uowFactory UnitOfWorkFactory, cfg *config.Config) RoundService {
	return &roundService{
		uowFactory:    uowFactory,
		bettingWindow: cfg.BettingWindow,
		revealDelay:   cfg.RevealDelay,
		multipliers:   cfg.PayoutMultipliers,
		payoutPolicy:  cfg.PayoutPolicy,
		now:           time.Now,
		draw:          models.DrawCard,
	}
}

// EnsureRound seeds round 1 with a fresh betting window if no round state
// exists yet
func (s *roundService) EnsureRound(ctx context.Context) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.RoundRepository().Seed(ctx, 1, s.now().Add(s.bettingWindow)); err != nil {
		return fmt.Errorf("failed to seed round state: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRoundStatus returns the current round snapshot for display
func (s *roundService) GetRoundStatus(ctx context.Context) (*models.RoundStatus, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get round state: %w", err)
	}
	if round == nil {
		return nil, fmt.Errorf("round state not initialized")
	}

	lastResult := ""
	if round.LastResult != nil {
		lastResult = *round.LastResult
	}

	return &models.RoundStatus{
		RoundID:          round.RoundID,
		Phase:            round.Phase,
		SecondsRemaining: round.SecondsRemaining(s.now()),
		LastResult:       lastResult,
	}, nil
}

// GetRecentOutcomes returns recent settled rounds for trend display
func (s *roundService) GetRecentOutcomes(ctx context.Context, limit int) ([]*models.Outcome, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	outcomes, err := uow.OutcomeRepository().GetRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent outcomes: %w", err)
	}

	return outcomes, nil
}

// Tick advances the round state machine by at most one transition. Each
// transition is a single transaction holding an exclusive lock on the
// round row, so overlapping ticks serialize and the compare-and-set
// updates turn the loser into a no-op.
func (s *roundService) Tick(ctx context.Context) (*models.TickResult, error) {
	result := &models.TickResult{}
	now := s.now()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().GetForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get round state: %w", err)
	}
	if round == nil {
		return nil, fmt.Errorf("round state not initialized")
	}

	if !round.IsDue(now) {
		// Deadline not reached, nothing to do
		return result, nil
	}

	switch round.Phase {
	case models.PhaseBetting:
		revealAt := now.Add(s.revealDelay)
		closed, err := uow.RoundRepository().CloseBetting(ctx, round.RoundID, revealAt)
		if err != nil {
			return nil, fmt.Errorf("failed to close betting: %w", err)
		}
		if !closed {
			return result, nil
		}

		uow.EventBus().Publish(events.RoundClosedEvent{RoundID: round.RoundID})
		result.Closed = &models.RoundClosed{
			RoundID:  round.RoundID,
			RevealAt: revealAt,
		}

	case models.PhaseClosed:
		summary, opened, err := s.settle(ctx, uow, round, now)
		if err != nil {
			return nil, err
		}
		result.Settlement = summary
		result.Opened = opened
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if result.Settlement != nil {
		metrics.RoundsSettled.WithLabelValues(string(result.Settlement.WinningSide)).Inc()
		metrics.PointsPaid.Add(float64(result.Settlement.TotalPaid))
	}

	return result, nil
}

// settle resolves the closed round inside the caller's transaction: draw
// the outcome, credit winners, append the outcome record and open the
// next round. The phase already flipped to CLOSED in an earlier, committed
// transaction, so the bet book read here is stable by construction.
func (s *roundService) settle(ctx context.Context, uow UnitOfWork, round *models.Round, now time.Time) (*models.SettlementSummary, *models.RoundOpened, error) {
	// A round that already has an outcome record was settled by a previous
	// run that died before advancing the round row. Skip the credits and
	// only advance.
	existing, err := uow.OutcomeRepository().GetByRound(ctx, round.RoundID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check for existing outcome: %w", err)
	}
	if existing != nil {
		log.WithFields(log.Fields{
			"round_id":     round.RoundID,
			"winning_side": existing.WinningSide,
		}).Warn("Round already settled, skipping re-credit")
		return s.advanceRound(ctx, uow, round, existing, now)
	}

	dragon, err := s.draw()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to draw dragon card: %w", err)
	}
	tiger, err := s.draw()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to draw tiger card: %w", err)
	}
	winner := models.DecideWinner(dragon, tiger)

	bets, err := uow.BetRepository().GetByRound(ctx, round.RoundID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get bets for round %d: %w", round.RoundID, err)
	}

	outcome := &models.Outcome{
		RoundID:     round.RoundID,
		WinningSide: winner,
		DragonCard:  dragon.String(),
		TigerCard:   tiger.String(),
	}

	var totalStaked int64
	multiplier := s.multipliers[winner]

	for _, bet := range bets {
		totalStaked += bet.Amount

		if bet.Choice != winner {
			// Losing stakes were forfeited at placement
			continue
		}

		payout := models.ComputePayout(bet.Amount, multiplier, s.payoutPolicy)
		if payout > 0 {
			if err := uow.UserRepository().AddBalance(ctx, bet.UserID, payout); err != nil {
				return nil, nil, fmt.Errorf("failed to credit payout for user %d: %w", bet.UserID, err)
			}

			user, err := uow.UserRepository().GetByID(ctx, bet.UserID)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to get user %d: %w", bet.UserID, err)
			}

			history := &models.BalanceHistory{
				UserID:          bet.UserID,
				BalanceBefore:   user.Balance - payout,
				BalanceAfter:    user.Balance,
				ChangeAmount:    payout,
				TransactionType: models.TransactionTypeBetPayout,
				TransactionMetadata: map[string]any{
					"round_id":     round.RoundID,
					"winning_side": string(winner),
					"stake":        bet.Amount,
				},
			}
			if err := RecordBalanceChange(ctx, uow, history); err != nil {
				return nil, nil, fmt.Errorf("failed to record payout: %w", err)
			}
		}

		outcome.TotalWinners++
		outcome.TotalPaid += payout
	}

	if err := uow.OutcomeRepository().Create(ctx, outcome); err != nil {
		return nil, nil, fmt.Errorf("failed to record outcome: %w", err)
	}

	uow.EventBus().Publish(events.RoundSettledEvent{
		RoundID:      round.RoundID,
		WinningSide:  winner,
		TotalWinners: outcome.TotalWinners,
		TotalPaid:    outcome.TotalPaid,
	})

	summary, opened, err := s.advanceRound(ctx, uow, round, outcome, now)
	if err != nil {
		return nil, nil, err
	}
	summary.TotalBets = int64(len(bets))
	summary.TotalStaked = totalStaked

	log.WithFields(log.Fields{
		"round_id":      round.RoundID,
		"winning_side":  winner,
		"dragon_card":   outcome.DragonCard,
		"tiger_card":    outcome.TigerCard,
		"total_bets":    len(bets),
		"total_staked":  totalStaked,
		"total_winners": outcome.TotalWinners,
		"total_paid":    outcome.TotalPaid,
	}).Info("Round settled")

	return summary, opened, nil
}

// advanceRound moves the round row to the next betting window
func (s *roundService) advanceRound(ctx context.Context, uow UnitOfWork, round *models.Round, outcome *models.Outcome, now time.Time) (*models.SettlementSummary, *models.RoundOpened, error) {
	deadline := now.Add(s.bettingWindow)

	advanced, err := uow.RoundRepository().OpenNextRound(ctx, round.RoundID, deadline, outcome.ResultText())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open next round: %w", err)
	}
	if !advanced {
		return nil, nil, fmt.Errorf("round state changed during settlement of round %d", round.RoundID)
	}

	uow.EventBus().Publish(events.RoundOpenedEvent{RoundID: round.RoundID + 1})

	summary := &models.SettlementSummary{
		RoundID:      round.RoundID,
		WinningSide:  outcome.WinningSide,
		DragonCard:   outcome.DragonCard,
		TigerCard:    outcome.TigerCard,
		TotalWinners: outcome.TotalWinners,
		TotalPaid:    outcome.TotalPaid,
	}
	opened := &models.RoundOpened{
		RoundID:  round.RoundID + 1,
		Deadline: deadline,
	}

	return summary, opened, nil
}
