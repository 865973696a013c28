package weather

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

// Provider resolves cities and fetches current readings from a remote source.
type Provider interface {
	Geocode(ctx context.Context, name, country string) (models.City, error)
	Current(ctx context.Context, city models.City) (models.Reading, error)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type readingRepository interface {
	GetByCity(ctx context.Context, cityID int64) (models.Reading, error)
	Upsert(ctx context.Context, rd models.Reading) error
}

// ReadingService serves the stored reading while it is younger than ttl and refreshes it from
// the provider otherwise.
type ReadingService struct {
	repo     readingRepository
	provider Provider
	ttl      time.Duration
	logger   zerolog.Logger
	m        *metrics.Metrics
	now      func() time.Time
}

func NewReadingService(
	repo readingRepository,
	provider Provider,
	ttl time.Duration,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *ReadingService {
	return &ReadingService{
		repo:     repo,
		provider: provider,
		ttl:      ttl,
		logger:   logger.With().Str("component", "ReadingService").Logger(),
		m:        m,
		now:      time.Now,
	}
}

func (s *ReadingService) GetByCity(ctx context.Context, city models.City) (models.Reading, error) {
	now := s.now()

	stored, err := s.repo.GetByCity(ctx, city.ID)
	switch {
	case err == nil && now.Sub(stored.RecordedAt) < s.ttl:
		s.m.WeatherCacheLookups.WithLabelValues("fresh").Inc()
		s.logger.Debug().Ctx(ctx).Str("city", city.String()).Msg("serving stored reading")
		return stored, nil
	case err == nil:
		s.m.WeatherCacheLookups.WithLabelValues("stale").Inc()
	case errors.Is(err, models.ErrReadingNotFound):
		s.m.WeatherCacheLookups.WithLabelValues("missing").Inc()
	default:
		return models.Reading{}, err
	}

	reading, err := s.provider.Current(ctx, city)
	s.m.RecordProviderCall("current", err)
	if err != nil {
		s.logger.Error().Ctx(ctx).Err(err).Str("city", city.String()).Msg("provider fetch failed")
		return models.Reading{}, err
	}

	reading.CityID = city.ID
	reading.City = city.String()
	reading.RecordedAt = now.UTC().Round(0)

	if err := s.repo.Upsert(ctx, reading); err != nil {
		return models.Reading{}, err
	}

	s.logger.Info().
		Ctx(ctx).
		Str("city", city.String()).
		Float64("temperature", reading.Temperature).
		Msg("reading refreshed")
	return reading, nil
}
