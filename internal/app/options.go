package app

import (
	"context"
	"time"

	"github.com/Nazarious-ucu/weather-push-api/internal/lock"
	"github.com/Nazarious-ucu/weather-push-api/internal/services/email"
	"github.com/Nazarious-ucu/weather-push-api/internal/services/weather"
	"github.com/Nazarious-ucu/weather-push-api/internal/services/webhook"
)

type notifierLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (lock.Lease, bool, error)
	Release(ctx context.Context, lease lock.Lease) error
}

type sessionStore interface {
	Create(ctx context.Context, userID int64) (string, error)
	Get(ctx context.Context, token string) (int64, bool, error)
	Delete(ctx context.Context, token string) error
}

type options struct {
	provider      weather.Provider
	mailer        email.Emailer
	webhookClient webhook.HTTPClient
}

// Option replaces one of the outbound dependencies the app would otherwise build from config.
type Option func(*options)

// WithProvider skips the OpenWeatherMap client. Rate limiting and the breaker still apply.
func WithProvider(p weather.Provider) Option {
	return func(o *options) { o.provider = p }
}

func WithMailer(m email.Emailer) Option {
	return func(o *options) { o.mailer = m }
}

func WithWebhookClient(c webhook.HTTPClient) Option {
	return func(o *options) { o.webhookClient = c }
}
