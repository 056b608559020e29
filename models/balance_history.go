package models

import (
	"time"
)

// TransactionType categorizes balance changes
type TransactionType string

const (
	TransactionTypeInitial   TransactionType = "initial"
	TransactionTypeBetStake  TransactionType = "bet_stake"
	TransactionTypeBetPayout TransactionType = "bet_payout"
	TransactionTypeGrant     TransactionType = "grant"
)

// BalanceHistory represents a single balance change entry
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	UserID              int64           `db:"user_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}
