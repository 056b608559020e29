package service

import (
	"context"
	"time"

	"dragontiger/events"
	"dragontiger/models"
)

// UserRepository defines the interface for player ledger data access
type UserRepository interface {
	// GetByID retrieves a player by id, or nil if none exists
	GetByID(ctx context.Context, userID int64) (*models.User, error)

	// Create creates a new player with the initial balance
	Create(ctx context.Context, userID int64, initialBalance int64) (*models.User, error)

	// AddBalance credits a player's balance atomically
	AddBalance(ctx context.Context, userID int64, amount int64) error

	// DeductBalance debits a player's balance atomically, failing with
	// ErrInsufficientFunds if the balance would go negative
	DeductBalance(ctx context.Context, userID int64, amount int64) error

	// GetAll returns all players
	GetAll(ctx context.Context) ([]*models.User, error)
}

// RoundRepository defines the interface for the singleton round state row
type RoundRepository interface {
	// Get retrieves the current round state
	Get(ctx context.Context) (*models.Round, error)

	// GetForUpdate retrieves the round state with an exclusive row lock,
	// serializing scheduler transitions against each other
	GetForUpdate(ctx context.Context) (*models.Round, error)

	// GetForShare retrieves the round state with a shared row lock. Bet
	// placement holds it until commit so a round close cannot slip between
	// the phase check and the bet insert.
	GetForShare(ctx context.Context) (*models.Round, error)

	// Seed inserts the initial round row if none exists yet
	Seed(ctx context.Context, roundID int64, deadline time.Time) error

	// CloseBetting flips BETTING -> CLOSED for the given round and sets the
	// reveal deadline. Returns false if the round was not in BETTING,
	// making overlapping ticks a no-op.
	CloseBetting(ctx context.Context, roundID int64, revealAt time.Time) (bool, error)

	// OpenNextRound advances CLOSED round -> BETTING round+1 with a fresh
	// deadline and the human-readable result of the settled round. Returns
	// false if the round row no longer matches.
	OpenNextRound(ctx context.Context, settledRoundID int64, deadline time.Time, lastResult string) (bool, error)
}

// BetRepository defines the interface for bet book data access
type BetRepository interface {
	// Create inserts a bet row. Returns false without error when the
	// player already has a bet for the round.
	Create(ctx context.Context, bet *models.Bet) (bool, error)

	// GetByRound returns all bets placed in a round
	GetByRound(ctx context.Context, roundID int64) ([]*models.Bet, error)
}

// OutcomeRepository defines the interface for the append-only outcome history
type OutcomeRepository interface {
	// Create appends the outcome record for a settled round
	Create(ctx context.Context, outcome *models.Outcome) error

	// GetByRound retrieves the outcome for a round, or nil if the round
	// has not settled
	GetByRound(ctx context.Context, roundID int64) (*models.Outcome, error)

	// GetRecent returns the most recent outcomes, newest first
	GetRecent(ctx context.Context, limit int) ([]*models.Outcome, error)
}

// BalanceHistoryRepository defines the interface for the balance audit trail
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific player
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// UserService defines the interface for player ledger operations
type UserService interface {
	// GetOrCreateUser retrieves an existing player or creates one with the
	// configured starting balance
	GetOrCreateUser(ctx context.Context, userID int64) (*models.User, error)

	// GetBalance returns a player's balance, 0 for unknown players without
	// creating them
	GetBalance(ctx context.Context, userID int64) (int64, error)

	// Grant applies an administrative or reward credit of any sign; zero
	// is rejected and a negative grant cannot drive the balance below zero
	Grant(ctx context.Context, userID int64, delta int64) (*models.User, error)
}

// BettingService defines the interface for bet placement
type BettingService interface {
	// PlaceBet atomically debits the stake and records the bet for the
	// round, enforcing one bet per player per round
	PlaceBet(ctx context.Context, roundID, userID int64, choice models.Choice, amount int64) (*models.BetReceipt, error)
}

// RoundService defines the round lifecycle operations
type RoundService interface {
	// EnsureRound seeds the initial round state if none exists
	EnsureRound(ctx context.Context) error

	// GetRoundStatus returns the current round snapshot for display
	GetRoundStatus(ctx context.Context) (*models.RoundStatus, error)

	// Tick advances the round state machine by at most one transition.
	// The result is a no-op when no deadline has elapsed.
	Tick(ctx context.Context) (*models.TickResult, error)

	// GetRecentOutcomes returns recent settled rounds for trend display
	GetRecentOutcomes(ctx context.Context, limit int) ([]*models.Outcome, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	RoundRepository() RoundRepository
	BetRepository() BetRepository
	OutcomeRepository() OutcomeRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
