package registration

import (
	"context"
	"fmt"
	"time"

	"github.com/platinummonkey/ideagrave/pkg/observability"
	"github.com/platinummonkey/ideagrave/pkg/session"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SweepStore removes verification attempts older than a cutoff
type SweepStore interface {
	DeleteVerificationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically deletes expired verification attempts and, when a
// purger is given, expired sessions. Lookups still expire attempts lazily;
// the sweep only keeps abandoned rows from piling up.
type Sweeper struct {
	store    SweepStore
	sessions session.Purger
	ttl      time.Duration
	metrics  *observability.Metrics
	logger   *logrus.Logger
	cron     *cron.Cron
	now      func() time.Time
}

// NewSweeper creates a sweeper. sessions and metrics may be nil.
func NewSweeper(store SweepStore, sessions session.Purger, ttl time.Duration, metrics *observability.Metrics, logger *logrus.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		sessions: sessions,
		ttl:      ttl,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Start schedules the sweep with a robfig/cron spec such as "@every 5m"
func (s *Sweeper) Start(schedule string) error {
	printf := cron.PrintfLogger(s.logger)
	c := cron.New(
		cron.WithLogger(printf),
		cron.WithChain(cron.Recover(printf), cron.SkipIfStillRunning(printf)),
	)

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, _, err := s.RunOnce(ctx); err != nil {
			s.logger.WithError(err).Error("verification sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	s.cron = c
	c.Start()
	s.logger.WithField("schedule", schedule).Info("verification sweep scheduled")
	return nil
}

// Stop stops scheduling and waits for a running sweep, or for ctx
func (s *Sweeper) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}

	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs a single sweep
func (s *Sweeper) RunOnce(ctx context.Context) (verifications, sessions int64, err error) {
	now := s.now().UTC()

	verifications, err = s.store.DeleteVerificationsBefore(ctx, now.Add(-s.ttl))
	if err != nil {
		return 0, 0, err
	}

	if s.sessions != nil {
		sessions, err = s.sessions.PurgeExpiredSessions(ctx, now)
		if err != nil {
			s.metrics.ObserveSweep(verifications, 0)
			return verifications, 0, err
		}
	}

	s.metrics.ObserveSweep(verifications, sessions)
	if verifications > 0 || sessions > 0 {
		s.logger.WithFields(logrus.Fields{
			"verifications": verifications,
			"sessions":      sessions,
		}).Info("swept expired records")
	}
	return verifications, sessions, nil
}
