package models

import (
	"fmt"
	"strings"
	"time"
)

// Choice is one of the three sides a bet can be placed on
type Choice string

const (
	ChoiceDragon Choice = "D"
	ChoiceTiger  Choice = "T"
	ChoiceTie    Choice = "I"
)

// ParseChoice converts a user-supplied choice code into a Choice
func ParseChoice(code string) (Choice, error) {
	switch Choice(strings.ToUpper(strings.TrimSpace(code))) {
	case ChoiceDragon:
		return ChoiceDragon, nil
	case ChoiceTiger:
		return ChoiceTiger, nil
	case ChoiceTie:
		return ChoiceTie, nil
	default:
		return "", fmt.Errorf("invalid choice %q", code)
	}
}

// IsValid reports whether the choice is one of the three known sides
func (c Choice) IsValid() bool {
	switch c {
	case ChoiceDragon, ChoiceTiger, ChoiceTie:
		return true
	}
	return false
}

// Label returns the display name for the choice
func (c Choice) Label() string {
	switch c {
	case ChoiceDragon:
		return "Dragon"
	case ChoiceTiger:
		return "Tiger"
	case ChoiceTie:
		return "Tie"
	default:
		return string(c)
	}
}

// Bet represents a single stake on the current round.
// At most one bet exists per (round, user); the stake is debited
// in the same transaction that inserts the row.
type Bet struct {
	RoundID  int64     `db:"round_id"`
	UserID   int64     `db:"user_id"`
	Choice   Choice    `db:"choice"`
	Amount   int64     `db:"amount"`
	PlacedAt time.Time `db:"placed_at"`
}

// BetReceipt is returned to the caller after a successful bet
type BetReceipt struct {
	RoundID    int64
	Choice     Choice
	Amount     int64
	NewBalance int64
}
