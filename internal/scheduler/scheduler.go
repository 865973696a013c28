package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
)

const (
	jobName         = "run_due"
	timeoutDuration = 30 * time.Second
)

type dueLister interface {
	ListDueIDs(ctx context.Context, now time.Time) ([]int64, error)
}

type enqueuer interface {
	Enqueue(ctx context.Context, subscriptionID int64) error
}

// Scheduler periodically enqueues a notify job for every due subscription.
// It never mutates subscriptions.
type Scheduler struct {
	repo   dueLister
	queue  enqueuer
	spec   string
	cron   *cron.Cron
	cancel context.CancelFunc
	logger zerolog.Logger
	m      *metrics.Metrics
	now    func() time.Time
}

func New(repo dueLister, queue enqueuer, spec string, logger zerolog.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		repo:   repo,
		queue:  queue,
		spec:   spec,
		cron:   cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger.With().Str("component", "Scheduler").Logger(),
		m:      m,
		now:    time.Now,
	}
}

// Start registers the scan on the cron spec and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	_, err := s.cron.AddFunc(s.spec, func() {
		s.m.CronJob(jobName, func() {
			if _, err := s.RunDue(ctx); err != nil {
				s.logger.Error().Err(err).Msg("due scan failed")
			}
		})
	})
	if err != nil {
		cancel()
		s.logger.Error().Err(err).Str("spec", s.spec).Msg("failed to schedule due scan")
		s.m.TechnicalErrors.WithLabelValues("cron_schedule_error", "critical").Inc()
		return err
	}

	s.cron.Start()
	s.logger.Info().Str("spec", s.spec).Msg("scheduler started")
	return nil
}

// Stop cancels the running scan and waits for it to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunDue enqueues one job per due subscription and returns how many were enqueued.
// A failed enqueue does not stop the scan; the next tick picks the subscription up again.
func (s *Scheduler) RunDue(ctx context.Context) (int, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeoutDuration)
	defer cancel()

	ids, err := s.repo.ListDueIDs(ctx, s.now())
	if err != nil {
		s.m.TechnicalErrors.WithLabelValues("fetch_due_subs", "critical").Inc()
		return 0, err
	}

	enqueued := 0
	for _, id := range ids {
		if err := s.queue.Enqueue(ctx, id); err != nil {
			s.logger.Error().Err(err).Int64("subscription_id", id).Msg("failed to enqueue notify job")
			continue
		}
		enqueued++
	}

	s.logger.Info().
		Int("due", len(ids)).
		Int("enqueued", enqueued).
		Dur("duration", time.Since(start)).
		Msg("due scan completed")
	return enqueued, nil
}
