package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

type BreakerConfig struct {
	TimeInterval time.Duration
	TimeTimeOut  time.Duration
	RepeatNumber uint32
}

// BreakerClient opens the circuit after RepeatNumber consecutive provider failures.
// Unknown cities are a valid answer and do not count as failures.
type BreakerClient struct {
	name    string
	cb      *gobreaker.CircuitBreaker
	wrapped Provider
}

func NewBreakerClient(name string, cfg BreakerConfig, wrapped Provider) *BreakerClient {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.TimeInterval,
		Timeout:     cfg.TimeTimeOut,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.RepeatNumber
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, models.ErrCityNotFound)
		},
	}
	return &BreakerClient{
		name:    name,
		cb:      gobreaker.NewCircuitBreaker(settings),
		wrapped: wrapped,
	}
}

func (b *BreakerClient) Geocode(ctx context.Context, name, country string) (models.City, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.wrapped.Geocode(ctx, name, country)
	})
	if err != nil {
		return models.City{}, b.wrap(err)
	}
	res, ok := result.(models.City)
	if !ok {
		return models.City{}, fmt.Errorf("%w: %s returned unexpected result", models.ErrProvider, b.name)
	}
	return res, nil
}

func (b *BreakerClient) Current(ctx context.Context, city models.City) (models.Reading, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.wrapped.Current(ctx, city)
	})
	if err != nil {
		return models.Reading{}, b.wrap(err)
	}
	res, ok := result.(models.Reading)
	if !ok {
		return models.Reading{}, fmt.Errorf("%w: %s returned unexpected result", models.ErrProvider, b.name)
	}
	return res, nil
}

func (b *BreakerClient) wrap(err error) error {
	if errors.Is(err, models.ErrCityNotFound) || errors.Is(err, models.ErrProvider) {
		return fmt.Errorf("%s unavailable: %w", b.name, err)
	}
	// open or half-open rejections
	return fmt.Errorf("%w: %s unavailable: %w", models.ErrProvider, b.name, err)
}
