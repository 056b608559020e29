package service

import (
	"context"
	"sync/atomic"
	"time"

	"dragontiger/metrics"

	log "github.com/sirupsen/logrus"
)

// RoundNotifier receives round lifecycle transitions produced by the
// scheduler, typically to announce them in chat. Implementations must not
// block for long; they run on the scheduler goroutine.
type RoundNotifier interface {
	NotifyRoundClosed(roundID int64)
	NotifyRoundSettled(summary RoundSettledNotification)
	NotifyRoundOpened(roundID int64, deadline time.Time)
}

// RoundSettledNotification carries the settlement details a notifier needs
// to render the reveal message.
type RoundSettledNotification struct {
	RoundID      int64
	WinningSide  string
	DragonCard   string
	TigerCard    string
	TotalWinners int64
	TotalPaid    int64
}

// Scheduler drives the round state machine on a fixed interval.
type Scheduler struct {
	rounds   RoundService
	notifier RoundNotifier
	interval time.Duration
	ticking  atomic.Bool
}

// NewScheduler creates a new round scheduler. notifier may be nil.
func NewScheduler(rounds RoundService, notifier RoundNotifier, interval time.Duration) *Scheduler {
	return &Scheduler{
		rounds:   rounds,
		notifier: notifier,
		interval: interval,
	}
}

// Start begins the tick loop and returns a function to stop it.
func (s *Scheduler) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go s.run(ctx, stopChan)

	log.WithField("interval", s.interval).Info("Round scheduler started")

	return func() {
		close(stopChan)
	}
}

func (s *Scheduler) run(ctx context.Context, stopChan chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Round scheduler stopping due to context cancellation")
			return
		case <-stopChan:
			log.Info("Round scheduler stopped")
			return
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

// runTick performs a single state machine step. A slow tick (settlement of
// a large round, a stalled database) must not stack further ticks behind
// it, so overlapping fires are dropped.
func (s *Scheduler) runTick(ctx context.Context) {
	if !s.ticking.CompareAndSwap(false, true) {
		log.Debug("Previous tick still running, skipping")
		return
	}
	defer s.ticking.Store(false)

	result, err := s.rounds.Tick(ctx)
	if err != nil {
		metrics.TickErrors.Inc()
		log.WithError(err).Error("Round tick failed")
		return
	}

	if result.IsNoop() || s.notifier == nil {
		return
	}

	if result.Closed != nil {
		s.notifier.NotifyRoundClosed(result.Closed.RoundID)
	}
	if result.Settlement != nil {
		s.notifier.NotifyRoundSettled(RoundSettledNotification{
			RoundID:      result.Settlement.RoundID,
			WinningSide:  string(result.Settlement.WinningSide),
			DragonCard:   result.Settlement.DragonCard,
			TigerCard:    result.Settlement.TigerCard,
			TotalWinners: result.Settlement.TotalWinners,
			TotalPaid:    result.Settlement.TotalPaid,
		})
	}
	if result.Opened != nil {
		s.notifier.NotifyRoundOpened(result.Opened.RoundID, result.Opened.Deadline)
	}
}
