package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/lock"
	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

const lockPrefix = "subscription-lock:"

type locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (lock.Lease, bool, error)
	Release(ctx context.Context, lease lock.Lease) error
}

type subscriptionRepository interface {
	GetByID(ctx context.Context, id int64) (models.Subscription, error)
	ScheduleNext(ctx context.Context, id int64, next time.Time) error
	MarkEmailSent(ctx context.Context, id int64, cycle time.Time) error
	MarkWebhookSent(ctx context.Context, id int64, cycle time.Time) error
}

type weatherGetter interface {
	GetByCity(ctx context.Context, city models.City) (models.Reading, error)
}

type emailSender interface {
	SendWeather(user models.User, city models.City, reading models.Reading) error
}

type webhookSender interface {
	Send(ctx context.Context, url string, payload models.WeatherPayload) error
}

// Worker delivers one notification cycle for a subscription.
type Worker struct {
	locker  locker
	repo    subscriptionRepository
	weather weatherGetter
	email   emailSender
	webhook webhookSender
	lockTTL time.Duration
	timeout time.Duration
	logger  zerolog.Logger
	m       *metrics.Metrics
	now     func() time.Time
}

func NewWorker(
	locker locker,
	repo subscriptionRepository,
	weather weatherGetter,
	email emailSender,
	webhook webhookSender,
	lockTTL, timeout time.Duration,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Worker {
	return &Worker{
		locker:  locker,
		repo:    repo,
		weather: weather,
		email:   email,
		webhook: webhook,
		lockTTL: lockTTL,
		timeout: timeout,
		logger:  logger.With().Str("component", "Worker").Logger(),
		m:       m,
		now:     time.Now,
	}
}

// Notify runs lock, load, weather, deliver, reschedule, unlock for the subscription.
// It is a no-op when another job holds the lock. Channels already delivered for the
// current cycle are skipped, and any delivery failure leaves next_due untouched.
func (w *Worker) Notify(ctx context.Context, id int64) error {
	start := time.Now()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	lease, ok, err := w.locker.Acquire(ctx, lockPrefix+strconv.FormatInt(id, 10), w.lockTTL)
	if err != nil {
		w.m.TechnicalErrors.WithLabelValues("lock_error", "critical").Inc()
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		w.m.LockContention.Inc()
		w.logger.Debug().Ctx(ctx).Int64("subscription_id", id).Msg("subscription locked, skipping")
		return nil
	}
	defer func() {
		if err := w.locker.Release(context.WithoutCancel(ctx), lease); err != nil {
			w.logger.Error().Err(err).Int64("subscription_id", id).Msg("failed to release lock")
		}
	}()

	sub, err := w.repo.GetByID(ctx, id)
	if err != nil {
		w.logger.Warn().Ctx(ctx).Err(err).Int64("subscription_id", id).Msg("failed to load subscription")
		return err
	}
	cycle := sub.Cycle()

	reading, err := w.weather.GetByCity(ctx, sub.City)
	if err != nil {
		w.logger.Error().Ctx(ctx).Err(err).
			Int64("subscription_id", id).
			Str("city", sub.City.String()).
			Msg("weather fetch error")
		w.m.TechnicalErrors.WithLabelValues("weather_fetch_error", "critical").Inc()
		return err
	}

	if err := w.deliverEmail(ctx, sub, cycle, reading); err != nil {
		return err
	}
	if err := w.deliverWebhook(ctx, sub, cycle, reading); err != nil {
		return err
	}

	next := sub.ScheduleNext(w.now())
	if err := w.repo.ScheduleNext(ctx, id, next); err != nil {
		w.m.TechnicalErrors.WithLabelValues("db_update_error", "critical").Inc()
		return err
	}

	w.logger.Info().Ctx(ctx).
		Int64("subscription_id", id).
		Time("next_due", next).
		Dur("duration", time.Since(start)).
		Msg("notification cycle completed")
	return nil
}

func (w *Worker) deliverEmail(
	ctx context.Context, sub models.Subscription, cycle *time.Time, reading models.Reading,
) error {
	if !sub.EmailPush {
		return nil
	}
	if sub.EmailDelivered(cycle) {
		w.logger.Debug().Ctx(ctx).Int64("subscription_id", sub.ID).Msg("email already sent for cycle")
		return nil
	}

	err := w.email.SendWeather(sub.User, sub.City, reading)
	w.m.RecordNotification("email", err)
	if err != nil {
		w.logger.Error().Ctx(ctx).Err(err).
			Int64("subscription_id", sub.ID).
			Str("email", sub.User.Email).
			Msg("email send error")
		return fmt.Errorf("send email: %w", err)
	}

	if cycle != nil {
		if err := w.repo.MarkEmailSent(ctx, sub.ID, *cycle); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) deliverWebhook(
	ctx context.Context, sub models.Subscription, cycle *time.Time, reading models.Reading,
) error {
	if sub.WebhookURL == "" {
		return nil
	}
	if sub.WebhookDelivered(cycle) {
		w.logger.Debug().Ctx(ctx).Int64("subscription_id", sub.ID).Msg("webhook already sent for cycle")
		return nil
	}

	err := w.webhook.Send(ctx, sub.WebhookURL, reading.Payload())
	w.m.RecordNotification("webhook", err)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}

	if cycle != nil {
		if err := w.repo.MarkWebhookSent(ctx, sub.ID, *cycle); err != nil {
			return err
		}
	}
	return nil
}
