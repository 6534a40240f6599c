package utils

import (
	"context"
	"time"

	"gpu-price-tracker/src/logger"
)

// TrackingScheduler repeats a tracking run on UTC-aligned interval
// boundaries. The marketplace trades around the clock, so there is no
// session calendar.
type TrackingScheduler struct {
	Interval time.Duration
	Logger   *logger.Logger
	Now      func() time.Time
}

// -----------------------------------------------------------------------------

func NewTrackingScheduler(interval time.Duration, l *logger.Logger) *TrackingScheduler {
	if l == nil {
		l = logger.Discard("Scheduler")
	}
	return &TrackingScheduler{Interval: interval, Logger: l, Now: time.Now}
}

// -----------------------------------------------------------------------------

// NextRun returns the first interval boundary strictly after now. With an
// interval of 1h and now at 10:20 it returns 11:00.
func (s *TrackingScheduler) NextRun(now time.Time) time.Time {
	now = now.UTC()
	if s.Interval <= 0 {
		return now
	}
	return now.Truncate(s.Interval).Add(s.Interval)
}

// -----------------------------------------------------------------------------

// Run calls fn once immediately and then on every boundary until ctx is
// cancelled. A failed run is logged and does not stop the schedule.
func (s *TrackingScheduler) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	for {
		if err := fn(ctx); err != nil {
			s.Logger.Error("Tracking run failed: %v", err)
		}

		next := s.NextRun(s.Now())
		s.Logger.Info("Next run at %s", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.Logger.Info("Scheduler stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}
