package repository

import (
	"context"
	"fmt"

	"dragontiger/database"
	"dragontiger/models"

	"github.com/jackc/pgx/v5"
)

// OutcomeRepository implements the service.OutcomeRepository interface
type OutcomeRepository struct {
	q queryable
}

// NewOutcomeRepository creates a new outcome repository
func NewOutcomeRepository(db *database.DB) *OutcomeRepository {
	return &OutcomeRepository{q: db.Pool}
}

// newOutcomeRepositoryWithTx creates a new outcome repository with a transaction
func newOutcomeRepositoryWithTx(tx queryable) *OutcomeRepository {
	return &OutcomeRepository{q: tx}
}

// Create appends the outcome record for a settled round
func (r *OutcomeRepository) Create(ctx context.Context, outcome *models.Outcome) error {
	query := `
		INSERT INTO outcomes (round_id, winning_side, dragon_card, tiger_card, total_winners, total_paid)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		outcome.RoundID,
		outcome.WinningSide,
		outcome.DragonCard,
		outcome.TigerCard,
		outcome.TotalWinners,
		outcome.TotalPaid,
	).Scan(&outcome.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create outcome for round %d: %w", outcome.RoundID, err)
	}

	return nil
}

// GetByRound retrieves the outcome for a round, or nil if the round has
// not settled
func (r *OutcomeRepository) GetByRound(ctx context.Context, roundID int64) (*models.Outcome, error) {
	query := `
		SELECT round_id, winning_side, dragon_card, tiger_card, total_winners, total_paid, created_at
		FROM outcomes
		WHERE round_id = $1
	`

	var outcome models.Outcome
	err := r.q.QueryRow(ctx, query, roundID).Scan(
		&outcome.RoundID,
		&outcome.WinningSide,
		&outcome.DragonCard,
		&outcome.TigerCard,
		&outcome.TotalWinners,
		&outcome.TotalPaid,
		&outcome.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome for round %d: %w", roundID, err)
	}

	return &outcome, nil
}

// GetRecent returns the most recent outcomes, newest first
func (r *OutcomeRepository) GetRecent(ctx context.Context, limit int) ([]*models.Outcome, error) {
	query := `
		SELECT round_id, winning_side, dragon_card, tiger_card, total_winners, total_paid, created_at
		FROM outcomes
		ORDER BY round_id DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []*models.Outcome
	for rows.Next() {
		var outcome models.Outcome
		err := rows.Scan(
			&outcome.RoundID,
			&outcome.WinningSide,
			&outcome.DragonCard,
			&outcome.TigerCard,
			&outcome.TotalWinners,
			&outcome.TotalPaid,
			&outcome.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, &outcome)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outcomes: %w", err)
	}

	return outcomes, nil
}
