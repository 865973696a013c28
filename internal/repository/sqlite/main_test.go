package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
	"github.com/Nazarious-ucu/weather-push-api/internal/repository/sqlite"
)

const dialect = "sqlite"

type repos struct {
	db       *sql.DB
	users    *sqlite.UserRepository
	cities   *sqlite.CityRepository
	readings *sqlite.ReadingRepository
	subs     *sqlite.SubscriptionRepository
}

func newRepos(t *testing.T) repos {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.CreateSqliteDb(ctx, dialect, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, sqlite.InitSqliteDb(db, dialect))
	t.Cleanup(func() { _ = db.Close() })

	l := zerolog.Nop()
	m := metrics.NewMetrics("repository_test", db, "test")

	return repos{
		db:       db,
		users:    sqlite.NewUserRepository(db, l, m),
		cities:   sqlite.NewCityRepository(db, l, m),
		readings: sqlite.NewReadingRepository(db, l, m),
		subs:     sqlite.NewSubscriptionRepository(db, l, m),
	}
}

func (r repos) seedUser(t *testing.T, username string) models.User {
	t.Helper()
	u := models.NewUser(username, username+"@test.com", "hash", time.Now())
	require.NoError(t, r.users.Create(context.Background(), &u))
	return u
}

func (r repos) seedCity(t *testing.T, name, country string) models.City {
	t.Helper()
	c, err := r.cities.Upsert(context.Background(), models.City{Name: name, Country: country, Lat: 50.45, Lon: 30.52})
	require.NoError(t, err)
	return c
}

func (r repos) seedSubscription(t *testing.T, u models.User, c models.City, period int) models.Subscription {
	t.Helper()
	sub := models.NewSubscription(u.ID, c.ID, models.SubscriptionSettings{PeriodPush: &period}, time.Now())
	require.NoError(t, r.subs.Create(context.Background(), &sub))
	return sub
}
