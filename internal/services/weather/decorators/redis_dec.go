package decorators

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

type readingGetterService interface {
	GetByCity(ctx context.Context, city models.City) (models.Reading, error)
}

type cacheClient[T any] interface {
	Set(ctx context.Context, key string, value T) error
	Get(ctx context.Context, key string) (T, error)
}

// CachedService puts redis in front of the stored readings. A cached reading older than ttl
// is treated as a miss, so redis never extends the freshness window.
type CachedService struct {
	inner  readingGetterService
	cache  cacheClient[models.Reading]
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

func NewCachedService(
	inner readingGetterService,
	cache cacheClient[models.Reading],
	ttl time.Duration,
	logger zerolog.Logger,
) *CachedService {
	return &CachedService{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "CachedService").Logger(),
		now:    time.Now,
	}
}

func (s *CachedService) GetByCity(ctx context.Context, city models.City) (models.Reading, error) {
	key := fmt.Sprintf("weather:%d", city.ID)

	reading, err := s.cache.Get(ctx, key)
	if err == nil && s.now().Sub(reading.RecordedAt) < s.ttl {
		s.logger.Debug().
			Ctx(ctx).
			Str("city", city.String()).
			Str("key", key).
			Msg("cache hit")
		return reading, nil
	}
	s.logger.Debug().
		Ctx(ctx).
		Str("city", city.String()).
		Str("key", key).
		AnErr("cache_err", err).
		Msg("cache miss")

	reading, err = s.inner.GetByCity(ctx, city)
	if err != nil {
		return models.Reading{}, err
	}

	if err := s.cache.Set(ctx, key, reading); err != nil {
		s.logger.Error().
			Ctx(ctx).
			Str("key", key).
			Err(err).
			Msg("cache set failed")
	}

	return reading, nil
}
