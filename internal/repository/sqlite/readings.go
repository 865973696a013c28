package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

// ReadingRepository keeps at most one reading per city.
type ReadingRepository struct {
	DB  *sql.DB
	log zerolog.Logger
	m   *metrics.Metrics
}

func NewReadingRepository(db *sql.DB, logger zerolog.Logger, m *metrics.Metrics) *ReadingRepository {
	logger = logger.With().Str("component", "ReadingRepository").Logger()
	return &ReadingRepository{DB: db, log: logger, m: m}
}

func (r *ReadingRepository) GetByCity(ctx context.Context, cityID int64) (models.Reading, error) {
	var (
		rd       models.Reading
		recorded int64
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT city_id, city, temperature, feels_like, humidity, wind_speed, pressure, recorded_at
		 FROM weather_readings WHERE city_id = ?`, cityID,
	).Scan(&rd.CityID, &rd.City, &rd.Temperature, &rd.FeelsLike, &rd.Humidity,
		&rd.WindSpeed, &rd.Pressure, &recorded)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reading{}, models.ErrReadingNotFound
	}
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Int64("city_id", cityID).Msg("failed to query reading")
		r.m.TechnicalErrors.WithLabelValues("db_query_error", "critical").Inc()
		return models.Reading{}, err
	}
	rd.RecordedAt = fromUnix(recorded)
	return rd, nil
}

// Upsert replaces the stored reading of the city.
func (r *ReadingRepository) Upsert(ctx context.Context, rd models.Reading) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO weather_readings
		    (city_id, city, temperature, feels_like, humidity, wind_speed, pressure, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (city_id) DO UPDATE SET
		    city = excluded.city,
		    temperature = excluded.temperature,
		    feels_like = excluded.feels_like,
		    humidity = excluded.humidity,
		    wind_speed = excluded.wind_speed,
		    pressure = excluded.pressure,
		    recorded_at = excluded.recorded_at`,
		rd.CityID, rd.City, rd.Temperature, rd.FeelsLike, rd.Humidity,
		rd.WindSpeed, rd.Pressure, toUnix(rd.RecordedAt),
	)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Int64("city_id", rd.CityID).Msg("failed to upsert reading")
		r.m.TechnicalErrors.WithLabelValues("db_upsert_error", "critical").Inc()
		return err
	}
	r.log.Debug().Ctx(ctx).Int64("city_id", rd.CityID).Msg("reading stored")
	return nil
}
