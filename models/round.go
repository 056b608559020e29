package models

import (
	"time"
)

// Phase represents the phase of the current round
type Phase string

const (
	PhaseBetting Phase = "BETTING"
	PhaseClosed  Phase = "CLOSED"
)

// Round is the singleton record describing the current round.
// Exactly one row exists; past rounds live in the outcomes table.
type Round struct {
	RoundID    int64     `db:"round_id"`
	Phase      Phase     `db:"phase"`
	Deadline   time.Time `db:"deadline"`
	LastResult *string   `db:"last_result"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// IsBetting returns true while the betting window is open
func (r *Round) IsBetting() bool {
	return r.Phase == PhaseBetting
}

// IsDue returns true once the current phase deadline has elapsed
func (r *Round) IsDue(now time.Time) bool {
	return !now.Before(r.Deadline)
}

// SecondsRemaining returns the whole seconds until the phase deadline, never negative
func (r *Round) SecondsRemaining(now time.Time) int64 {
	remaining := int64(r.Deadline.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RoundStatus is the snapshot handed to the transport layer
type RoundStatus struct {
	RoundID          int64
	Phase            Phase
	SecondsRemaining int64
	LastResult       string
}
