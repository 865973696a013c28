package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

type geoResponse []struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

// Main and Wind stay nil when the payload omits them.
type currentResponse struct {
	Main *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  float64 `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// ClientOpenWeatherMap talks to the OpenWeatherMap geocoding and current weather APIs.
// Every call is exactly one remote request.
type ClientOpenWeatherMap struct {
	APIKey     string
	geoURL     string
	weatherURL string
	client     HTTPClient
	logger     zerolog.Logger
}

// NewClientOpenWeatherMap constructs a new OpenWeatherMap client.
func NewClientOpenWeatherMap(apiKey, geoURL, weatherURL string,
	httpClient HTTPClient, logger zerolog.Logger,
) *ClientOpenWeatherMap {
	return &ClientOpenWeatherMap{
		APIKey:     apiKey,
		geoURL:     geoURL,
		weatherURL: weatherURL,
		client:     httpClient,
		logger:     logger.With().Str("component", "ClientOpenWeatherMap").Logger(),
	}
}

// Geocode returns the first candidate for name/country. An empty result is ErrCityNotFound.
func (s *ClientOpenWeatherMap) Geocode(ctx context.Context, name, country string) (models.City, error) {
	q := url.Values{}
	q.Set("q", name+","+country)
	q.Set("limit", "1")
	q.Set("appid", s.APIKey)

	var raw geoResponse
	if err := s.get(ctx, s.geoURL+"?"+q.Encode(), &raw); err != nil {
		return models.City{}, err
	}
	if len(raw) == 0 {
		s.logger.Info().Ctx(ctx).Str("city", name).Str("country", country).Msg("geocoding returned no candidates")
		return models.City{}, models.ErrCityNotFound
	}
	if raw[0].Name == "" || raw[0].Country == "" {
		s.logger.Error().Ctx(ctx).Str("city", name).Str("country", country).Msg("geocoding returned an empty candidate")
		return models.City{}, fmt.Errorf("%w: empty payload", models.ErrProvider)
	}

	return models.City{
		Name:    raw[0].Name,
		Country: raw[0].Country,
		Lat:     raw[0].Lat,
		Lon:     raw[0].Lon,
	}, nil
}

// Current fetches the current reading at the city's coordinates. RecordedAt is left to the caller.
func (s *ClientOpenWeatherMap) Current(ctx context.Context, city models.City) (models.Reading, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", city.Lat))
	q.Set("lon", fmt.Sprintf("%f", city.Lon))
	q.Set("units", "metric")
	q.Set("appid", s.APIKey)

	var raw currentResponse
	if err := s.get(ctx, s.weatherURL+"?"+q.Encode(), &raw); err != nil {
		return models.Reading{}, err
	}
	if raw.Main == nil || raw.Wind == nil {
		s.logger.Error().Ctx(ctx).Str("city", city.String()).Msg("OpenWeatherMap returned an empty payload")
		return models.Reading{}, fmt.Errorf("%w: empty payload", models.ErrProvider)
	}

	return models.Reading{
		CityID:      city.ID,
		City:        city.String(),
		Temperature: raw.Main.Temp,
		FeelsLike:   raw.Main.FeelsLike,
		Humidity:    raw.Main.Humidity,
		WindSpeed:   raw.Wind.Speed,
		Pressure:    raw.Main.Pressure,
	}, nil
}

func (s *ClientOpenWeatherMap) get(ctx context.Context, rawURL string, out any) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		s.logger.Error().Ctx(ctx).Err(err).Msg("failed to create HTTP request")
		return fmt.Errorf("%w: %w", models.ErrProvider, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().Ctx(ctx).Err(err).Str("host", req.URL.Host).Msg("error sending HTTP request to OpenWeatherMap")
		return fmt.Errorf("%w: %w", models.ErrProvider, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Error().Err(cerr).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error().
			Ctx(ctx).
			Str("path", req.URL.Path).
			Str("status", resp.Status).
			Msg("OpenWeatherMap API returned non-200 status")
		return fmt.Errorf("%w: status %s", models.ErrProvider, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		s.logger.Error().Ctx(ctx).Err(err).Msg("failed to decode OpenWeatherMap response")
		return fmt.Errorf("%w: %w", models.ErrProvider, err)
	}

	s.logger.Debug().
		Ctx(ctx).
		Str("path", req.URL.Path).
		Dur("duration", time.Since(start)).
		Msg("OpenWeatherMap request completed")
	return nil
}
