package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
)

var ErrClosed = errors.New("queue is closed")

type notifier interface {
	Notify(ctx context.Context, subscriptionID int64) error
}

// MemoryQueue runs notify jobs on a bounded pool of goroutines inside the process.
type MemoryQueue struct {
	jobs    chan int64
	workers int
	worker  notifier
	logger  zerolog.Logger
	m       *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewMemoryQueue(worker notifier, workers, buffer int, logger zerolog.Logger, m *metrics.Metrics) *MemoryQueue {
	if workers < 1 {
		workers = 1
	}
	return &MemoryQueue{
		jobs:    make(chan int64, buffer),
		workers: workers,
		worker:  worker,
		logger:  logger.With().Str("component", "MemoryQueue").Logger(),
		m:       m,
	}
}

// Start launches the pool. Jobs run with ctx; cancelling it aborts in-flight work.
func (q *MemoryQueue) Start(ctx context.Context) {
	q.wg.Add(q.workers)
	for i := 0; i < q.workers; i++ {
		go func() {
			defer q.wg.Done()
			for id := range q.jobs {
				if err := q.worker.Notify(ctx, id); err != nil {
					q.logger.Error().Err(err).Int64("subscription_id", id).Msg("notify job failed")
				}
			}
		}()
	}
	q.logger.Info().Int("workers", q.workers).Msg("memory queue started")
}

// Enqueue blocks while the buffer is full, until ctx is done.
func (q *MemoryQueue) Enqueue(ctx context.Context, subscriptionID int64) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.m.JobsEnqueued.WithLabelValues("memory", "error").Inc()
		return ErrClosed
	}

	select {
	case q.jobs <- subscriptionID:
		q.m.JobsEnqueued.WithLabelValues("memory", "ok").Inc()
		return nil
	case <-ctx.Done():
		q.m.JobsEnqueued.WithLabelValues("memory", "error").Inc()
		return ctx.Err()
	}
}

// Stop rejects new jobs, drains the buffer and waits for the pool.
func (q *MemoryQueue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Info().Msg("memory queue stopped")
}
