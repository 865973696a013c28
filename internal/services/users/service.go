package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	VerifyEmail(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type sessionStore interface {
	Create(ctx context.Context, userID int64) (string, error)
	Get(ctx context.Context, token string) (int64, bool, error)
	Delete(ctx context.Context, token string) error
}

type ConfirmationEmailer interface {
	SendConfirmation(user models.User) error
}

type Service struct {
	repo     userRepository
	sessions sessionStore
	emailer  ConfirmationEmailer
	logger   zerolog.Logger
	m        *metrics.Metrics
	cost     int
	now      func() time.Time
}

func NewService(
	repo userRepository,
	sessions sessionStore,
	emailer ConfirmationEmailer,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		emailer:  emailer,
		logger:   logger.With().Str("component", "UserService").Logger(),
		m:        m,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Register stores a new unverified user and mails the confirmation link.
// A failed confirmation email does not undo the registration.
func (s *Service) Register(ctx context.Context, data models.RegisterData) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), s.cost)
	if err != nil {
		return models.User{}, err
	}

	user := models.NewUser(data.Username, data.Email, string(hash), s.now())
	user.VerifyToken = uuid.NewString()

	if err := s.repo.Create(ctx, &user); err != nil {
		return models.User{}, err
	}
	s.m.UsersRegistered.Inc()

	if err := s.emailer.SendConfirmation(user); err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Int64("user_id", user.ID).
			Msg("failed to send confirmation email")
		s.m.TechnicalErrors.WithLabelValues("email_send_error", "warning").Inc()
	}

	return user, nil
}

func (s *Service) Verify(ctx context.Context, token string) (bool, error) {
	return s.repo.VerifyEmail(ctx, token)
}

// Login checks the password and opens a session. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, data models.LoginData) (string, error) {
	user, err := s.repo.GetByUsername(ctx, data.Username)
	if errors.Is(err, models.ErrUserNotFound) {
		return "", models.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(data.Password)); err != nil {
		s.logger.Info().Ctx(ctx).Str("username", data.Username).Msg("login rejected")
		return "", models.ErrInvalidCredentials
	}

	return s.sessions.Create(ctx, user.ID)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Authenticate maps a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (models.User, error) {
	id, ok, err := s.sessions.Get(ctx, token)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, models.ErrInvalidCredentials
	}

	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, models.ErrUserNotFound) {
		return models.User{}, models.ErrInvalidCredentials
	}
	return user, err
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// EnsureAdmin creates the bootstrap admin unless a user with that name already exists.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if username == "" || password == "" {
		return nil
	}

	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}

	admin := models.NewUser(username, email, string(hash), s.now())
	admin.IsAdmin = true
	admin.EmailVerified = true
	if err := s.repo.Create(ctx, &admin); err != nil {
		return err
	}

	s.logger.Info().Ctx(ctx).Str("username", username).Msg("admin user created")
	return nil
}
