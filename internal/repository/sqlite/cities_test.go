package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

func TestCityRepository_FindCaseInsensitive(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	kyiv := r.seedCity(t, "Kyiv", "UA")

	got, err := r.cities.FindByNameCountry(ctx, "kyiv", "ua")
	require.NoError(t, err)
	assert.Equal(t, kyiv, got)

	_, err = r.cities.FindByNameCountry(ctx, "Kyiv", "PL")
	assert.ErrorIs(t, err, models.ErrCityNotFound)
}

func TestCityRepository_UpsertCorrectsCoordinates(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	kyiv := r.seedCity(t, "Kyiv", "UA")

	again, err := r.cities.Upsert(ctx, models.City{Name: "Kyiv", Country: "UA", Lat: 50.4501, Lon: 30.5234})
	require.NoError(t, err)
	assert.Equal(t, kyiv.ID, again.ID)

	got, err := r.cities.FindByNameCountry(ctx, "Kyiv", "UA")
	require.NoError(t, err)
	assert.InDelta(t, 50.4501, got.Lat, 1e-9)
	assert.InDelta(t, 30.5234, got.Lon, 1e-9)
}

func TestCityRepository_ListOrderedByName(t *testing.T) {
	r := newRepos(t)
	r.seedCity(t, "Lviv", "UA")
	r.seedCity(t, "Kyiv", "UA")
	r.seedCity(t, "Odesa", "UA")

	cities, err := r.cities.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cities, 3)
	assert.Equal(t, []string{"Kyiv", "Lviv", "Odesa"}, []string{cities[0].Name, cities[1].Name, cities[2].Name})
}

func TestReadingRepository_UpsertReplaces(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	kyiv := r.seedCity(t, "Kyiv", "UA")

	_, err := r.readings.GetByCity(ctx, kyiv.ID)
	assert.ErrorIs(t, err, models.ErrReadingNotFound)

	first := models.Reading{CityID: kyiv.ID, City: "Kyiv, UA", Temperature: 10, RecordedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, r.readings.Upsert(ctx, first))

	second := models.Reading{
		CityID: kyiv.ID, City: "Kyiv, UA", Temperature: 21.5, FeelsLike: 20, Humidity: 40,
		WindSpeed: 3.2, Pressure: 1012, RecordedAt: time.Now(),
	}
	require.NoError(t, r.readings.Upsert(ctx, second))

	got, err := r.readings.GetByCity(ctx, kyiv.ID)
	require.NoError(t, err)
	assert.Equal(t, 21.5, got.Temperature)
	assert.Equal(t, 40, got.Humidity)
	assert.True(t, second.RecordedAt.Equal(got.RecordedAt))

	var cnt int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM weather_readings`).Scan(&cnt))
	assert.Equal(t, 1, cnt)
}
