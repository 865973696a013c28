//go:build unit

package weather_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
	"github.com/Nazarious-ucu/weather-push-api/internal/repository/sqlite"
	"github.com/Nazarious-ucu/weather-push-api/internal/services/weather"
)

func TestReadingService_StoredReadingIsByteIdentical(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.CreateSqliteDb(ctx, "sqlite", filepath.Join(t.TempDir(), "readings.db"))
	require.NoError(t, err)
	require.NoError(t, sqlite.InitSqliteDb(db, "sqlite"))
	t.Cleanup(func() { _ = db.Close() })

	m := metrics.NewMetrics("test", nil, "")
	city, err := sqlite.NewCityRepository(db, zerolog.Nop(), m).Upsert(ctx, kyiv)
	require.NoError(t, err)

	provider := new(mockProvider)
	provider.On("Current", mock.Anything, city).
		Return(models.Reading{Temperature: 21.5, FeelsLike: 20, Humidity: 40}, nil).Once()

	svc := weather.NewReadingService(sqlite.NewReadingRepository(db, zerolog.Nop(), m),
		provider, 600*time.Second, zerolog.Nop(), m)

	kyivTime := time.FixedZone("EEST", 3*60*60)
	now := time.Date(2025, 6, 1, 12, 35, 50, 786239888, kyivTime)
	svc.SetClock(func() time.Time { return now })

	first, err := svc.GetByCity(ctx, city)
	require.NoError(t, err)

	now = now.Add(time.Minute)
	second, err := svc.GetByCity(ctx, city)
	require.NoError(t, err)
	provider.AssertNumberOfCalls(t, "Current", 1)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
	assert.Equal(t, time.UTC, first.RecordedAt.Location())
}
