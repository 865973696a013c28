package app

import (
	"github.com/wagslane/go-rabbitmq"

	"github.com/Nazarious-ucu/weather-push-api/pkg/messaging"
)

func (a *App) setupRabbit(c *ServiceContainer) error {
	conn, err := a.setupConn()
	if err != nil {
		return err
	}
	c.RabbitConn = conn

	publisher, err := a.setupPublisher(conn)
	if err != nil {
		a.l.Error().Err(err).Msg("RabbitMQ publisher error")
		a.closeRabbit(c)
		return err
	}
	c.Publisher = publisher

	notifyConsumer, err := a.setupNotifyConsumer(conn)
	if err != nil {
		a.l.Error().Err(err).Msg("RabbitMQ consumer error")
		a.closeRabbit(c)
		return err
	}
	c.NotifyConsumer = notifyConsumer
	return nil
}

func (a *App) setupConn() (*rabbitmq.Conn, error) {
	conn, err := rabbitmq.NewConn(
		a.cfg.RabbitMQ.Address(),
		rabbitmq.WithConnectionOptionsLogging,
	)
	if err != nil {
		a.l.Error().Err(err).Msg("Failed to connect to RabbitMQ")
		return nil, err
	}

	a.l.Info().Msg("Connected to RabbitMQ successfully")
	return conn, nil
}

// Create a new publisher for notify jobs
func (a *App) setupPublisher(conn *rabbitmq.Conn) (*rabbitmq.Publisher, error) {
	publisher, err := rabbitmq.NewPublisher(
		conn,
		rabbitmq.WithPublisherOptionsExchangeName(messaging.ExchangeName),
		rabbitmq.WithPublisherOptionsExchangeDeclare,
		rabbitmq.WithPublisherOptionsLogging,
		rabbitmq.WithPublisherOptionsExchangeDurable,
	)
	if err != nil {
		return nil, err
	}

	publisher.NotifyReturn(func(r rabbitmq.Return) {
		a.l.Warn().
			Int("reply_code", int(r.ReplyCode)).
			Str("routing_key", r.RoutingKey).
			Msg("message returned from server")
	})

	return publisher, nil
}

// Create a new consumer for notify jobs
func (a *App) setupNotifyConsumer(conn *rabbitmq.Conn) (*rabbitmq.Consumer, error) {
	return rabbitmq.NewConsumer(
		conn,
		messaging.NotifyQueueName,
		rabbitmq.WithConsumerOptionsExchangeName(messaging.ExchangeName),
		rabbitmq.WithConsumerOptionsExchangeDeclare,
		rabbitmq.WithConsumerOptionsExchangeDurable,
		rabbitmq.WithConsumerOptionsRoutingKey(messaging.NotifyRoutingKey),
		rabbitmq.WithConsumerOptionsQueueDurable,
		rabbitmq.WithConsumerOptionsConcurrency(a.cfg.Queue.Workers),
	)
}

func (a *App) closeRabbit(c *ServiceContainer) {
	if c.NotifyConsumer != nil {
		c.NotifyConsumer.Close()
	}
	if c.Publisher != nil {
		c.Publisher.Close()
	}
	if c.RabbitConn != nil {
		if err := c.RabbitConn.Close(); err != nil {
			a.l.Error().Err(err).Msg("RabbitMQ close error")
		}
	}
}
