package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

type CityRepository struct {
	DB  *sql.DB
	log zerolog.Logger
	m   *metrics.Metrics
}

func NewCityRepository(db *sql.DB, logger zerolog.Logger, m *metrics.Metrics) *CityRepository {
	logger = logger.With().Str("component", "CityRepository").Logger()
	return &CityRepository{DB: db, log: logger, m: m}
}

// FindByNameCountry matches name and country case-insensitively.
func (r *CityRepository) FindByNameCountry(ctx context.Context, name, country string) (models.City, error) {
	var c models.City
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, country, lat, lon FROM cities
		 WHERE name = ? COLLATE NOCASE AND country = ? COLLATE NOCASE`,
		name, country,
	).Scan(&c.ID, &c.Name, &c.Country, &c.Lat, &c.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		r.log.Debug().Ctx(ctx).Str("city", name).Str("country", country).Msg("city not stored locally")
		return models.City{}, models.ErrCityNotFound
	}
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Str("city", name).Msg("failed to query city")
		r.m.TechnicalErrors.WithLabelValues("db_query_error", "critical").Inc()
		return models.City{}, err
	}
	return c, nil
}

// Upsert inserts the city or corrects the coordinates of an existing (name, country) pair.
func (r *CityRepository) Upsert(ctx context.Context, city models.City) (models.City, error) {
	start := time.Now()
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO cities (name, country, lat, lon) VALUES (?, ?, ?, ?)
		 ON CONFLICT (name, country) DO UPDATE SET lat = excluded.lat, lon = excluded.lon
		 RETURNING id, name, country`,
		city.Name, city.Country, city.Lat, city.Lon,
	).Scan(&city.ID, &city.Name, &city.Country)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Str("city", city.Name).Msg("failed to upsert city")
		r.m.TechnicalErrors.WithLabelValues("db_upsert_error", "critical").Inc()
		return models.City{}, err
	}

	r.log.Info().Ctx(ctx).
		Int64("city_id", city.ID).
		Str("city", city.String()).
		Dur("duration", time.Since(start)).
		Msg("city stored")
	return city, nil
}

// List returns all cities ordered by name.
func (r *CityRepository) List(ctx context.Context) ([]models.City, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, country, lat, lon FROM cities ORDER BY name, country`)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Msg("failed to query cities")
		r.m.TechnicalErrors.WithLabelValues("db_query_error", "critical").Inc()
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.log.Error().Err(err).Ctx(ctx).Msg("failed to close rows after query")
		}
	}()

	cities := make([]models.City, 0)
	for rows.Next() {
		var c models.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Country, &c.Lat, &c.Lon); err != nil {
			r.m.TechnicalErrors.WithLabelValues("db_scan_error", "critical").Inc()
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}
