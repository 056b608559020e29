package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BetsPlaced counts accepted bets by choice
	BetsPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dragontiger_bets_placed_total",
		Help: "Number of bets accepted, by choice.",
	}, []string{"choice"})

	// BetsRejected counts rejected bet attempts by reason
	BetsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dragontiger_bets_rejected_total",
		Help: "Number of bet attempts rejected, by reason.",
	}, []string{"reason"})

	// PointsStaked accumulates stake amounts debited at placement
	PointsStaked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dragontiger_points_staked_total",
		Help: "Total points debited as stakes.",
	})

	// PointsPaid accumulates payout amounts credited at settlement
	PointsPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dragontiger_points_paid_total",
		Help: "Total points credited as payouts.",
	})

	// RoundsSettled counts settled rounds by winning side
	RoundsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dragontiger_rounds_settled_total",
		Help: "Number of rounds settled, by winning side.",
	}, []string{"winning_side"})

	// TickErrors counts scheduler ticks that failed
	TickErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dragontiger_tick_errors_total",
		Help: "Number of scheduler ticks that returned an error.",
	})
)
