package cache

import (
	"context"
	"errors"
	"time"
)

type cache[T any] interface {
	Set(ctx context.Context, key string, value T) error
	Get(ctx context.Context, key string) (T, error)
	Delete(ctx context.Context, key string) error
}

type metricsCollector interface {
	ObserveLatency(operation string, duration time.Duration)
	IncrementCounter(operation string, labels ...string)
}

// MetricsDecorator times cache calls and counts their outcome.
type MetricsDecorator[T any] struct {
	next      cache[T]
	collector metricsCollector
}

func NewMetricsDecorator[T any](next cache[T], collector metricsCollector) *MetricsDecorator[T] {
	return &MetricsDecorator[T]{next: next, collector: collector}
}

func (m *MetricsDecorator[T]) Set(ctx context.Context, key string, value T) error {
	start := time.Now()
	err := m.next.Set(ctx, key, value)
	m.collector.ObserveLatency("cache_set", time.Since(start))
	m.collector.IncrementCounter("cache_set", outcome(err, "ok"))
	return err
}

//nolint:ireturn
func (m *MetricsDecorator[T]) Get(ctx context.Context, key string) (T, error) {
	start := time.Now()
	data, err := m.next.Get(ctx, key)
	m.collector.ObserveLatency("cache_get", time.Since(start))
	m.collector.IncrementCounter("cache_get", outcome(err, "hit"))
	return data, err
}

func (m *MetricsDecorator[T]) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := m.next.Delete(ctx, key)
	m.collector.ObserveLatency("cache_delete", time.Since(start))
	m.collector.IncrementCounter("cache_delete", outcome(err, "ok"))
	return err
}

func outcome(err error, success string) string {
	switch {
	case err == nil:
		return success
	case errors.Is(err, ErrMiss):
		return "miss"
	default:
		return "error"
	}
}
