package weather

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

const timeoutDuration = 10 * time.Second

type cityResolver interface {
	Resolve(ctx context.Context, name, country string) (models.City, error)
	List(ctx context.Context) ([]models.City, error)
}

type readingGetter interface {
	GetByCity(ctx context.Context, city models.City) (models.Reading, error)
}

type Handler struct {
	cities  cityResolver
	weather readingGetter
	logger  zerolog.Logger
}

func NewHandler(cities cityResolver, weather readingGetter, logger zerolog.Logger) *Handler {
	return &Handler{
		cities:  cities,
		weather: weather,
		logger:  logger.With().Str("component", "WeatherHandler").Logger(),
	}
}

// ListCities
// @Summary List known cities
// @Tags weather
// @Produce json
// @Success 200 {array} models.City
// @Router /cities/ [get]
func (h *Handler) ListCities(c *gin.Context) {
	cities, err := h.cities.List(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list cities")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, cities)
}

// GetWeather
// @Summary Get current weather for a city
// @Tags weather
// @Produce json
// @Param city path string true "City name"
// @Param country path string true "Country code"
// @Success 200 {object} models.WeatherPayload
// @Failure 404
// @Router /cities/{city}/{country}/weather/ [get]
func (h *Handler) GetWeather(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	city, err := h.cities.Resolve(ctx, c.Param("city"), c.Param("country"))
	if err != nil {
		h.fail(c, err)
		return
	}

	reading, err := h.weather.GetByCity(ctx, city)
	if err != nil {
		h.fail(c, err)
		return
	}

	payload := reading.Payload()
	payload.City = city.String()
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrCityNotFound):
		h.logger.Info().Str("city", c.Param("city")).Str("country", c.Param("country")).Msg("city not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "City not found"})
	case errors.Is(err, models.ErrProvider):
		h.logger.Warn().Err(err).Str("city", c.Param("city")).Msg("weather provider failed")
		c.JSON(http.StatusNotFound, gin.H{"error": "Weather service error"})
	default:
		h.logger.Error().Ctx(c.Request.Context()).Err(err).Msg("weather lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
