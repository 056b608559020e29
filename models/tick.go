package models

import (
	"time"
)

// RoundClosed describes a BETTING -> CLOSED transition
type RoundClosed struct {
	RoundID  int64
	RevealAt time.Time
}

// SettlementSummary describes the payout run for a closed round
type SettlementSummary struct {
	RoundID      int64
	WinningSide  Choice
	DragonCard   string
	TigerCard    string
	TotalBets    int64
	TotalStaked  int64
	TotalWinners int64
	TotalPaid    int64
}

// RoundOpened describes a new round entering its betting window
type RoundOpened struct {
	RoundID  int64
	Deadline time.Time
}

// TickResult reports what a scheduler tick did. All fields are nil for a
// no-op tick; Settlement and Opened are set together when a round turns over.
type TickResult struct {
	Closed     *RoundClosed
	Settlement *SettlementSummary
	Opened     *RoundOpened
}

// IsNoop returns true when the tick advanced nothing
func (t *TickResult) IsNoop() bool {
	return t.Closed == nil && t.Settlement == nil && t.Opened == nil
}
