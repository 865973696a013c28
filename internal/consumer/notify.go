package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"github.com/wagslane/go-rabbitmq"

	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
	"github.com/Nazarious-ucu/weather-push-api/pkg/messaging"
)

type notifier interface {
	Notify(ctx context.Context, subscriptionID int64) error
}

// Consumer turns NotifyEvent deliveries into worker runs.
type Consumer struct {
	ctx    context.Context
	worker notifier
	logger zerolog.Logger
	m      *metrics.Metrics
}

// NewConsumer binds the consumer to ctx; cancelling it aborts in-flight jobs.
func NewConsumer(ctx context.Context, worker notifier, logger zerolog.Logger, m *metrics.Metrics) *Consumer {
	return &Consumer{
		ctx:    ctx,
		worker: worker,
		logger: logger.With().Str("component", "Consumer").Logger(),
		m:      m,
	}
}

// ReceiveNotify acks successful and terminal jobs. Other failures are discarded:
// next_due is left in the past, so the scheduler enqueues the job again.
func (c *Consumer) ReceiveNotify(d rabbitmq.Delivery) rabbitmq.Action {
	c.logger.Debug().
		Str("payload", string(d.Body)).
		Msg("received notify event")

	var evt messaging.NotifyEvent
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		c.logger.Error().Err(err).Msg("unmarshal error")
		c.m.ConsumerMessagesTotal.WithLabelValues("unmarshal_error").Inc()
		return rabbitmq.NackDiscard
	}

	err := c.worker.Notify(c.ctx, evt.SubscriptionID)
	switch {
	case err == nil:
		c.m.ConsumerMessagesTotal.WithLabelValues("ok").Inc()
		return rabbitmq.Ack
	case errors.Is(err, models.ErrSubscriptionNotFound):
		c.logger.Warn().Int64("subscription_id", evt.SubscriptionID).Msg("subscription gone, dropping job")
		c.m.ConsumerMessagesTotal.WithLabelValues("not_found").Inc()
		return rabbitmq.Ack
	default:
		c.logger.Error().Err(err).Int64("subscription_id", evt.SubscriptionID).Msg("notify job failed")
		c.m.ConsumerMessagesTotal.WithLabelValues("error").Inc()
		return rabbitmq.NackDiscard
	}
}
