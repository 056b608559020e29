package models

import (
	"fmt"
	"time"
)

// Outcome is the append-only history record of a settled round.
// Its presence marks the round as settled; settlement checks for it
// before crediting so a crashed-and-retried tick never pays twice.
type Outcome struct {
	RoundID      int64     `db:"round_id"`
	WinningSide  Choice    `db:"winning_side"`
	DragonCard   string    `db:"dragon_card"`
	TigerCard    string    `db:"tiger_card"`
	TotalWinners int64     `db:"total_winners"`
	TotalPaid    int64     `db:"total_paid"`
	CreatedAt    time.Time `db:"created_at"`
}

// ResultText renders the short last-result line stored on the round row
func (o *Outcome) ResultText() string {
	return fmt.Sprintf("%s vs %s => %s", o.DragonCard, o.TigerCard, o.WinningSide.Label())
}
