//go:build unit

package users_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-push-api/internal/auth"
	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
	"github.com/Nazarious-ucu/weather-push-api/internal/repository/sqlite"
	"github.com/Nazarious-ucu/weather-push-api/internal/services/users"
)

type mockEmailer struct {
	mock.Mock
}

func (m *mockEmailer) SendConfirmation(user models.User) error {
	return m.Called(user).Error(0)
}

func newService(t *testing.T, emailer *mockEmailer) (*users.Service, *sqlite.UserRepository) {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.CreateSqliteDb(ctx, "sqlite", filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.InitSqliteDb(db, "sqlite"))

	m := metrics.NewMetrics("test", nil, "")
	repo := sqlite.NewUserRepository(db, zerolog.Nop(), m)
	svc := users.NewService(repo, auth.NewMemorySessionStore(time.Hour), emailer, zerolog.Nop(), m)
	svc.UseMinCost()
	return svc, repo
}

var ivan = models.RegisterData{Username: "Ivan", Email: "ivan@test.com", Password: "password123"}

func TestRegisterVerifyLogin(t *testing.T) {
	emailer := new(mockEmailer)
	emailer.On("SendConfirmation", mock.MatchedBy(func(u models.User) bool {
		return u.Email == "ivan@test.com" && u.VerifyToken != ""
	})).Return(nil).Once()

	svc, repo := newService(t, emailer)
	ctx := context.Background()

	user, err := svc.Register(ctx, ivan)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.False(t, user.EmailVerified)
	assert.NotEqual(t, ivan.Password, user.PasswordHash)

	ok, err := svc.Verify(ctx, user.VerifyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)

	token, err := svc.Login(ctx, models.LoginData{Username: "Ivan", Password: "password123"})
	require.NoError(t, err)

	authed, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestRegister_EmailFailureKeepsUser(t *testing.T) {
	emailer := new(mockEmailer)
	emailer.On("SendConfirmation", mock.Anything).Return(errors.New("smtp down")).Once()

	svc, repo := newService(t, emailer)
	user, err := svc.Register(context.Background(), ivan)
	require.NoError(t, err)

	_, err = repo.GetByID(context.Background(), user.ID)
	assert.NoError(t, err)
}

func TestRegister_Duplicate(t *testing.T) {
	emailer := new(mockEmailer)
	emailer.On("SendConfirmation", mock.Anything).Return(nil).Once()

	svc, _ := newService(t, emailer)
	_, err := svc.Register(context.Background(), ivan)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), ivan)
	assert.ErrorIs(t, err, models.ErrUserExists)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	emailer := new(mockEmailer)
	emailer.On("SendConfirmation", mock.Anything).Return(nil)

	svc, _ := newService(t, emailer)
	_, err := svc.Register(context.Background(), ivan)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginData{Username: "Ivan", Password: "wrong-password"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginData{Username: "Nobody", Password: "password123"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	svc, repo := newService(t, new(mockEmailer))
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "admin@test.com", "adminpass"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "admin@test.com", "adminpass"))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	admin, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.True(t, admin.EmailVerified)

	_, err = svc.Login(ctx, models.LoginData{Username: "admin", Password: "adminpass"})
	assert.NoError(t, err)
}
