package subscriptions

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	GetByID(ctx context.Context, id int64) (models.Subscription, error)
	GetByUserCity(ctx context.Context, userID, cityID int64) (models.Subscription, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Subscription, error)
	Update(ctx context.Context, sub models.Subscription) error
	Delete(ctx context.Context, id int64) error
}

type cityResolver interface {
	Resolve(ctx context.Context, name, country string) (models.City, error)
}

// Enqueuer hands a notify job for the subscription to the worker queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, subscriptionID int64) error
}

type Service struct {
	repo   SubscriptionRepository
	cities cityResolver
	queue  Enqueuer
	logger zerolog.Logger
	m      *metrics.Metrics
	now    func() time.Time
}

func NewService(
	repo SubscriptionRepository,
	cities cityResolver,
	queue Enqueuer,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:   repo,
		cities: cities,
		queue:  queue,
		logger: logger.With().Str("component", "SubscriptionService").Logger(),
		m:      m,
		now:    time.Now,
	}
}

// Create subscribes the user to the city, schedules the first cycle and queues an
// immediate notification.
func (s *Service) Create(
	ctx context.Context, user models.User, name, country string, settings models.SubscriptionSettings,
) (models.Subscription, error) {
	city, err := s.cities.Resolve(ctx, name, country)
	if err != nil {
		return models.Subscription{}, err
	}

	now := s.now()
	sub := models.NewSubscription(user.ID, city.ID, settings, now)
	sub.ScheduleNext(now)

	if err := s.repo.Create(ctx, &sub); err != nil {
		return models.Subscription{}, err
	}
	sub.User = user
	sub.City = city
	s.m.SubscriptionsCreated.Inc()

	s.enqueue(ctx, sub.ID)
	return sub, nil
}

// Update replaces the delivery settings of an existing subscription and restarts its cycle.
func (s *Service) Update(
	ctx context.Context, user models.User, name, country string, settings models.SubscriptionSettings,
) (models.Subscription, error) {
	city, err := s.cities.Resolve(ctx, name, country)
	if err != nil {
		return models.Subscription{}, err
	}

	sub, err := s.repo.GetByUserCity(ctx, user.ID, city.ID)
	if err != nil {
		return models.Subscription{}, err
	}

	now := s.now()
	sub.Apply(settings, now)
	sub.ScheduleNext(now)

	if err := s.repo.Update(ctx, sub); err != nil {
		return models.Subscription{}, err
	}
	s.m.SubscriptionsUpdated.Inc()

	s.enqueue(ctx, sub.ID)
	return sub, nil
}

func (s *Service) Delete(ctx context.Context, user models.User, name, country string) (models.Subscription, error) {
	city, err := s.cities.Resolve(ctx, name, country)
	if err != nil {
		return models.Subscription{}, err
	}

	sub, err := s.repo.GetByUserCity(ctx, user.ID, city.ID)
	if err != nil {
		return models.Subscription{}, err
	}

	if err := s.repo.Delete(ctx, sub.ID); err != nil {
		return models.Subscription{}, err
	}
	s.m.SubscriptionsDeleted.Inc()
	return sub, nil
}

func (s *Service) List(ctx context.Context, user models.User) ([]models.Subscription, error) {
	return s.repo.ListByUser(ctx, user.ID)
}

// Get returns the subscription only to its owner.
func (s *Service) Get(ctx context.Context, user models.User, id int64) (models.Subscription, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Subscription{}, err
	}
	if sub.UserID != user.ID {
		return models.Subscription{}, models.ErrSubscriptionNotFound
	}
	return sub, nil
}

// a lost job is recovered by the scheduler once next_due passes
func (s *Service) enqueue(ctx context.Context, id int64) {
	if err := s.queue.Enqueue(ctx, id); err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Int64("subscription_id", id).
			Msg("failed to enqueue notify job")
		s.m.TechnicalErrors.WithLabelValues("enqueue_error", "warning").Inc()
	}
}
