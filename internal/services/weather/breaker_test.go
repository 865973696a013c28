//go:build unit

package weather_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-push-api/internal/models"
	"github.com/Nazarious-ucu/weather-push-api/internal/services/weather"
)

var breakerCfg = weather.BreakerConfig{
	TimeInterval: 30 * time.Second,
	TimeTimeOut:  15 * time.Second,
	RepeatNumber: 5,
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Geocode(ctx context.Context, name, country string) (models.City, error) {
	args := m.Called(ctx, name, country)
	city, _ := args.Get(0).(models.City)
	return city, args.Error(1)
}

func (m *mockProvider) Current(ctx context.Context, city models.City) (models.Reading, error) {
	args := m.Called(ctx, city)
	rd, _ := args.Get(0).(models.Reading)
	return rd, args.Error(1)
}

const breakerName = "TestAPI"

var lviv = models.City{ID: 3, Name: "Lviv", Country: "UA"}

func TestBreakerClient_Success(t *testing.T) {
	wrapped := new(mockProvider)
	expected := models.Reading{CityID: 3, City: "Lviv, UA", Temperature: 20}
	wrapped.On("Current", mock.Anything, lviv).Return(expected, nil).Once()

	bc := weather.NewBreakerClient(breakerName, breakerCfg, wrapped)

	rd, err := bc.Current(context.Background(), lviv)
	require.NoError(t, err)
	assert.Equal(t, expected, rd)
	wrapped.AssertExpectations(t)
}

func TestBreakerClient_TripAfterFiveFailures(t *testing.T) {
	wrapped := new(mockProvider)
	wrapped.On("Current", mock.Anything, lviv).
		Return(models.Reading{}, fmt.Errorf("%w: timeout", models.ErrProvider)).Times(5)

	bc := weather.NewBreakerClient(breakerName, breakerCfg, wrapped)

	for i := 1; i <= 5; i++ {
		_, err := bc.Current(context.Background(), lviv)
		require.Error(t, err, "call #%d", i)
		assert.ErrorIs(t, err, models.ErrProvider)
	}

	_, err := bc.Current(context.Background(), lviv)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrProvider)
	assert.Contains(t, err.Error(), "circuit breaker is open")

	wrapped.AssertNumberOfCalls(t, "Current", 5)
}

func TestBreakerClient_CityNotFoundDoesNotTrip(t *testing.T) {
	wrapped := new(mockProvider)
	wrapped.On("Geocode", mock.Anything, "Atlantis", "XX").
		Return(models.City{}, models.ErrCityNotFound).Times(7)

	bc := weather.NewBreakerClient(breakerName, breakerCfg, wrapped)

	for i := 0; i < 7; i++ {
		_, err := bc.Geocode(context.Background(), "Atlantis", "XX")
		assert.ErrorIs(t, err, models.ErrCityNotFound)
	}
	wrapped.AssertNumberOfCalls(t, "Geocode", 7)
}

func TestRateLimitedClient_CanceledContext(t *testing.T) {
	wrapped := new(mockProvider)
	rl := weather.NewRateLimitedClient(wrapped, 0.001, 1)

	wrapped.On("Geocode", mock.Anything, "Kyiv", "UA").Return(models.City{Name: "Kyiv"}, nil).Once()
	_, err := rl.Geocode(context.Background(), "Kyiv", "UA")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = rl.Geocode(ctx, "Kyiv", "UA")
	assert.ErrorIs(t, err, models.ErrProvider)
	wrapped.AssertNumberOfCalls(t, "Geocode", 1)
}
