package repository

import (
	"context"
	"fmt"
	"time"

	"dragontiger/database"
	"dragontiger/models"

	"github.com/jackc/pgx/v5"
)

// RoundRepository implements the service.RoundRepository interface over
// the singleton round_state row
type RoundRepository struct {
	q queryable
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(db *database.DB) *RoundRepository {
	return &RoundRepository{q: db.Pool}
}

// newRoundRepositoryWithTx creates a new round repository with a transaction
func newRoundRepositoryWithTx(tx queryable) *RoundRepository {
	return &RoundRepository{q: tx}
}

func (r *RoundRepository) get(ctx context.Context, lock string) (*models.Round, error) {
	query := `
		SELECT round_id, phase, deadline, last_result, updated_at
		FROM round_state
		WHERE id = 1
	` + lock

	var round models.Round
	err := r.q.QueryRow(ctx, query).Scan(
		&round.RoundID,
		&round.Phase,
		&round.Deadline,
		&round.LastResult,
		&round.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round state: %w", err)
	}

	return &round, nil
}

// Get retrieves the current round state
func (r *RoundRepository) Get(ctx context.Context) (*models.Round, error) {
	return r.get(ctx, "")
}

// GetForUpdate retrieves the round state with an exclusive row lock
func (r *RoundRepository) GetForUpdate(ctx context.Context) (*models.Round, error) {
	return r.get(ctx, "FOR UPDATE")
}

// GetForShare retrieves the round state with a shared row lock. Concurrent
// bets share it; a scheduler transition's FOR UPDATE must wait for them.
func (r *RoundRepository) GetForShare(ctx context.Context) (*models.Round, error) {
	return r.get(ctx, "FOR SHARE")
}

// Seed inserts the initial round row if none exists yet
func (r *RoundRepository) Seed(ctx context.Context, roundID int64, deadline time.Time) error {
	query := `
		INSERT INTO round_state (id, round_id, phase, deadline, last_result)
		VALUES (1, $1, $2, $3, NULL)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, roundID, models.PhaseBetting, deadline); err != nil {
		return fmt.Errorf("failed to seed round state: %w", err)
	}

	return nil
}

// CloseBetting flips BETTING -> CLOSED for the given round. The phase and
// round id in the WHERE clause make the transition a compare-and-set, so a
// second overlapping tick affects zero rows.
func (r *RoundRepository) CloseBetting(ctx context.Context, roundID int64, revealAt time.Time) (bool, error) {
	query := `
		UPDATE round_state
		SET phase = $1, deadline = $2, updated_at = NOW()
		WHERE id = 1 AND round_id = $3 AND phase = $4
	`

	result, err := r.q.Exec(ctx, query, models.PhaseClosed, revealAt, roundID, models.PhaseBetting)
	if err != nil {
		return false, fmt.Errorf("failed to close betting for round %d: %w", roundID, err)
	}

	return result.RowsAffected() == 1, nil
}

// OpenNextRound advances the settled CLOSED round to BETTING round+1
func (r *RoundRepository) OpenNextRound(ctx context.Context, settledRoundID int64, deadline time.Time, lastResult string) (bool, error) {
	query := `
		UPDATE round_state
		SET round_id = round_id + 1, phase = $1, deadline = $2, last_result = $3, updated_at = NOW()
		WHERE id = 1 AND round_id = $4 AND phase = $5
	`

	result, err := r.q.Exec(ctx, query, models.PhaseBetting, deadline, lastResult, settledRoundID, models.PhaseClosed)
	if err != nil {
		return false, fmt.Errorf("failed to open round after %d: %w", settledRoundID, err)
	}

	return result.RowsAffected() == 1, nil
}
