package repository

import (
	"context"
	"fmt"

	"dragontiger/database"
	"dragontiger/models"
)

// BetRepository implements the service.BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// Create inserts a bet row. The (round_id, user_id) primary key enforces
// one bet per player per round; a conflict inserts nothing and returns
// false so the caller can report AlreadyBet without a failed transaction.
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) (bool, error) {
	query := `
		INSERT INTO bets (round_id, user_id, choice, amount, placed_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (round_id, user_id) DO NOTHING
	`

	result, err := r.q.Exec(ctx, query, bet.RoundID, bet.UserID, bet.Choice, bet.Amount)
	if err != nil {
		return false, fmt.Errorf("failed to create bet for user %d in round %d: %w", bet.UserID, bet.RoundID, err)
	}

	return result.RowsAffected() == 1, nil
}

// GetByRound returns all bets placed in a round
func (r *BetRepository) GetByRound(ctx context.Context, roundID int64) ([]*models.Bet, error) {
	query := `
		SELECT round_id, user_id, choice, amount, placed_at
		FROM bets
		WHERE round_id = $1
		ORDER BY placed_at
	`

	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for round %d: %w", roundID, err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		var bet models.Bet
		err := rows.Scan(
			&bet.RoundID,
			&bet.UserID,
			&bet.Choice,
			&bet.Amount,
			&bet.PlacedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}
