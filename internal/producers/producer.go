package producers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/wagslane/go-rabbitmq"

	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
	"github.com/Nazarious-ucu/weather-push-api/pkg/messaging"
)

type publisher interface {
	PublishWithContext(
		ctx context.Context,
		data []byte,
		routingKeys []string,
		optionFuncs ...func(*rabbitmq.PublishOptions),
	) error
}

// Producer publishes notify jobs to the notifications exchange.
type Producer struct {
	pub    publisher
	logger zerolog.Logger
	m      *metrics.Metrics
	now    func() time.Time
}

func NewProducer(pub publisher, logger zerolog.Logger, m *metrics.Metrics) *Producer {
	return &Producer{
		pub:    pub,
		logger: logger.With().Str("component", "Producer").Logger(),
		m:      m,
		now:    time.Now,
	}
}

func (p *Producer) Publish(ctx context.Context, routingKey string, body []byte) error {
	err := p.pub.PublishWithContext(
		ctx,
		body,
		[]string{routingKey},
		rabbitmq.WithPublishOptionsContentType("application/json"),
		rabbitmq.WithPublishOptionsMandatory,
		rabbitmq.WithPublishOptionsPersistentDelivery,
		rabbitmq.WithPublishOptionsExchange(messaging.ExchangeName),
	)
	p.m.RecordRabbitPublish(routingKey, err)
	if err != nil {
		p.logger.Error().Ctx(ctx).Err(err).Str("routing_key", routingKey).Msg("failed to publish message")
		return err
	}
	p.logger.Debug().Ctx(ctx).Str("routing_key", routingKey).Msg("message published")
	return nil
}

// Enqueue publishes a NotifyEvent for the subscription.
func (p *Producer) Enqueue(ctx context.Context, subscriptionID int64) error {
	body, err := json.Marshal(messaging.NotifyEvent{
		SubscriptionID: subscriptionID,
		EnqueuedAt:     p.now(),
	})
	if err != nil {
		return err
	}

	err = p.Publish(ctx, messaging.NotifyRoutingKey, body)
	if err != nil {
		p.m.JobsEnqueued.WithLabelValues("rabbitmq", "error").Inc()
		return err
	}
	p.m.JobsEnqueued.WithLabelValues("rabbitmq", "ok").Inc()
	return nil
}
