package weather

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

// RateLimitedClient bounds the request rate towards the provider.
type RateLimitedClient struct {
	wrapped Provider
	limiter *rate.Limiter
}

func NewRateLimitedClient(wrapped Provider, rps float64, burst int) *RateLimitedClient {
	return &RateLimitedClient{
		wrapped: wrapped,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedClient) Geocode(ctx context.Context, name, country string) (models.City, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return models.City{}, fmt.Errorf("%w: rate limit wait canceled: %w", models.ErrProvider, err)
	}
	return r.wrapped.Geocode(ctx, name, country)
}

func (r *RateLimitedClient) Current(ctx context.Context, city models.City) (models.Reading, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return models.Reading{}, fmt.Errorf("%w: rate limit wait canceled: %w", models.ErrProvider, err)
	}
	return r.wrapped.Current(ctx, city)
}

var (
	_ Provider = (*RateLimitedClient)(nil)
	_ Provider = (*BreakerClient)(nil)
	_ Provider = (*ClientOpenWeatherMap)(nil)
)
