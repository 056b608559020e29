package models

import (
	"math"
)

// PayoutPolicy controls how fractional payouts are resolved.
// The multipliers are stake-inclusive, so a winning bet of 1000 at 2.0
// credits 2000 back.
type PayoutPolicy string

const (
	// PayoutTruncate truncates toward zero (house keeps the fraction)
	PayoutTruncate PayoutPolicy = "truncate"
	// PayoutNearest rounds to the nearest point
	PayoutNearest PayoutPolicy = "nearest"
)

// IsValid reports whether the policy is a known rounding mode
func (p PayoutPolicy) IsValid() bool {
	return p == PayoutTruncate || p == PayoutNearest
}

// ComputePayout applies a stake-inclusive multiplier to a winning stake
func ComputePayout(amount int64, multiplier float64, policy PayoutPolicy) int64 {
	raw := float64(amount) * multiplier
	if policy == PayoutNearest {
		return int64(math.Round(raw))
	}
	return int64(raw)
}
