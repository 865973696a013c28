package cities

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

type cityRepository interface {
	FindByNameCountry(ctx context.Context, name, country string) (models.City, error)
	Upsert(ctx context.Context, city models.City) (models.City, error)
	List(ctx context.Context) ([]models.City, error)
}

type geocoder interface {
	Geocode(ctx context.Context, name, country string) (models.City, error)
}

type Service struct {
	repo     cityRepository
	geocoder geocoder
	logger   zerolog.Logger
	m        *metrics.Metrics
}

func NewService(repo cityRepository, geocoder geocoder, logger zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:     repo,
		geocoder: geocoder,
		logger:   logger.With().Str("component", "CityService").Logger(),
		m:        m,
	}
}

// Resolve matches name/country locally, case-insensitively, and falls back to geocoding.
// Geocoded cities are stored under their canonical name.
func (s *Service) Resolve(ctx context.Context, name, country string) (models.City, error) {
	city, err := s.repo.FindByNameCountry(ctx, name, country)
	if err == nil {
		return city, nil
	}
	if !errors.Is(err, models.ErrCityNotFound) {
		return models.City{}, err
	}

	found, err := s.geocoder.Geocode(ctx, name, country)
	s.m.RecordProviderCall("geocode", err)
	if err != nil {
		s.logger.Warn().
			Ctx(ctx).
			Err(err).
			Str("city", name).
			Str("country", country).
			Msg("city resolution failed")
		return models.City{}, err
	}

	city, err = s.repo.Upsert(ctx, found)
	if err != nil {
		return models.City{}, err
	}

	s.logger.Info().Ctx(ctx).Int64("city_id", city.ID).Str("city", city.String()).Msg("city resolved")
	return city, nil
}

func (s *Service) List(ctx context.Context) ([]models.City, error) {
	return s.repo.List(ctx)
}
