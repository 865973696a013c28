package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/wagslane/go-rabbitmq"
	"go.uber.org/zap"

	"github.com/Nazarious-ucu/weather-push-api/internal/auth"
	"github.com/Nazarious-ucu/weather-push-api/internal/config"
	"github.com/Nazarious-ucu/weather-push-api/internal/consumer"
	"github.com/Nazarious-ucu/weather-push-api/internal/emailer"
	"github.com/Nazarious-ucu/weather-push-api/internal/lock"
	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
	"github.com/Nazarious-ucu/weather-push-api/internal/notifier"
	"github.com/Nazarious-ucu/weather-push-api/internal/producers"
	"github.com/Nazarious-ucu/weather-push-api/internal/queue"
	"github.com/Nazarious-ucu/weather-push-api/internal/repository/cache"
	"github.com/Nazarious-ucu/weather-push-api/internal/repository/sqlite"
	"github.com/Nazarious-ucu/weather-push-api/internal/scheduler"
	"github.com/Nazarious-ucu/weather-push-api/internal/services/cities"
	"github.com/Nazarious-ucu/weather-push-api/internal/services/email"
	httplog "github.com/Nazarious-ucu/weather-push-api/internal/services/logger"
	"github.com/Nazarious-ucu/weather-push-api/internal/services/subscriptions"
	"github.com/Nazarious-ucu/weather-push-api/internal/services/users"
	"github.com/Nazarious-ucu/weather-push-api/internal/services/weather"
	"github.com/Nazarious-ucu/weather-push-api/internal/services/weather/decorators"
	"github.com/Nazarious-ucu/weather-push-api/internal/services/webhook"
	"github.com/Nazarious-ucu/weather-push-api/pkg/logger"
	"github.com/Nazarious-ucu/weather-push-api/pkg/messaging"
)

const (
	timeoutDuration = 5 * time.Second
	redisKeyPrefix  = "weather-push:"
	metricsPrefix   = "weather_push"
)

type readingGetter interface {
	GetByCity(ctx context.Context, city models.City) (models.Reading, error)
}

type ServiceContainer struct {
	UserService         *users.Service
	CityService         *cities.Service
	WeatherService      readingGetter
	SubscriptionService *subscriptions.Service
	Worker              *notifier.Worker
	Scheduler           *scheduler.Scheduler

	MemoryQueue    *queue.MemoryQueue
	RabbitConn     *rabbitmq.Conn
	Publisher      *rabbitmq.Publisher
	NotifyConsumer *rabbitmq.Consumer

	Router     *gin.Engine
	Srv        *http.Server
	Db         *sql.DB
	Redis      *redis.Client
	fileLogger *zap.Logger
	M          *metrics.Metrics
}

type App struct {
	cfg  config.Config
	l    zerolog.Logger
	opts options
}

func New(cfg config.Config, logger zerolog.Logger, opts ...Option) *App {
	a := &App{cfg: cfg, l: logger.With().Str("component", "App").Logger()}
	for _, opt := range opts {
		opt(&a.opts)
	}
	return a
}

// Start builds the container, serves HTTP until ctx is cancelled and shuts everything down.
func (a *App) Start(ctx context.Context) error {
	c, err := a.Init(ctx)
	if err != nil {
		return err
	}
	defer a.Stop(c)

	if err := a.StartWorkers(ctx, c); err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		a.l.Info().Str("http_addr", a.cfg.ServerAddress()).Msg("HTTP server listening")
		if err := c.Srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		a.l.Info().Msg("Shutdown signal received")
		return nil
	case err := <-serveErr:
		if err != nil {
			a.l.Error().Err(err).Msg("HTTP server error")
		}
		return err
	}
}

// Init opens storage, connects the queue backend and wires every service and route.
func (a *App) Init(ctx context.Context) (*ServiceContainer, error) {
	a.l.Info().
		Str("queue_driver", a.cfg.Queue.Driver).
		Bool("redis", a.cfg.Redis.Enabled).
		Msg("Initializing application")

	c := &ServiceContainer{}

	initCtx, cancel := context.WithTimeout(ctx, timeoutDuration)
	defer cancel()

	db, err := sqlite.CreateSqliteDb(initCtx, a.cfg.DB.Dialect, a.cfg.DB.Source)
	if err != nil {
		a.l.Error().Err(err).Msg("DB open error")
		return nil, err
	}
	c.Db = db
	if err := sqlite.InitSqliteDb(db, a.cfg.DB.Dialect); err != nil {
		a.l.Error().Err(err).Msg("DB migration error")
		_ = db.Close()
		return nil, err
	}

	m := metrics.NewMetrics(metricsPrefix, db, a.cfg.DB.Source)
	c.M = m

	fileLogger, err := logger.NewFileLogger(a.cfg.Logs.HTTPPath)
	if err != nil {
		a.l.Error().Err(err).Msg("failed to create http file logger")
		_ = db.Close()
		return nil, err
	}
	c.fileLogger = fileLogger

	var (
		locker   notifierLocker
		sessions sessionStore
	)
	if a.cfg.Redis.Enabled {
		c.Redis = newRedisConnection(a.cfg.Redis.Address(), a.cfg.Redis.DbType)
		if err := c.Redis.Ping(initCtx).Err(); err != nil {
			a.l.Error().Err(err).Str("addr", a.cfg.Redis.Address()).Msg("Redis ping error")
			a.closeStorage(c)
			return nil, err
		}
		locker = lock.NewRedisLocker(c.Redis, redisKeyPrefix, a.l)
		sessions = auth.NewRedisSessionStore(c.Redis, a.sessionTTL(), a.l)
	} else {
		a.l.Warn().Msg("Redis disabled, using in-process locks and sessions")
		locker = lock.NewMemoryLocker()
		sessions = auth.NewMemorySessionStore(a.sessionTTL())
	}

	// repositories
	userRepo := sqlite.NewUserRepository(db, a.l, m)
	cityRepo := sqlite.NewCityRepository(db, a.l, m)
	readingRepo := sqlite.NewReadingRepository(db, a.l, m)
	subRepo := sqlite.NewSubscriptionRepository(db, a.l, m)

	// weather provider chain: client -> rate limit -> breaker
	provider := a.opts.provider
	if provider == nil {
		httpClient := &http.Client{
			Transport: httplog.NewRoundTripper(fileLogger, nil),
			Timeout:   time.Duration(a.cfg.Provider.HTTPTimeout) * time.Second,
		}
		provider = weather.NewClientOpenWeatherMap(
			a.cfg.Provider.APIKey,
			a.cfg.Provider.GeoURL,
			a.cfg.Provider.WeatherURL,
			httpClient,
			a.l,
		)
	}
	provider = weather.NewBreakerClient("openweathermap", weather.BreakerConfig{
		TimeInterval: time.Duration(a.cfg.Breaker.TimeInterval) * time.Second,
		TimeTimeOut:  time.Duration(a.cfg.Breaker.TimeTimeOut) * time.Second,
		RepeatNumber: a.cfg.Breaker.RepeatNumber,
	}, weather.NewRateLimitedClient(provider, a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst))

	var weatherSvc readingGetter = weather.NewReadingService(readingRepo, provider, a.cfg.WeatherTTL(), a.l, m)
	if c.Redis != nil {
		collector := metrics.NewPromCollector(m.Registry(), metricsPrefix)
		readingCache := cache.NewMetricsDecorator[models.Reading](
			cache.NewRedisClient[models.Reading](c.Redis, a.l, a.cfg.WeatherTTL()),
			collector,
		)
		weatherSvc = decorators.NewCachedService(weatherSvc, readingCache, a.cfg.WeatherTTL(), a.l)
	}
	c.WeatherService = weatherSvc
	c.CityService = cities.NewService(cityRepo, provider, a.l, m)

	// delivery channels
	mailer := a.opts.mailer
	if mailer == nil {
		mailer = emailer.NewSMTPService(a.cfg.Email, a.l)
	}
	emailSvc := email.NewService(mailer, a.cfg.Server.BaseURL)

	webhookClient := a.opts.webhookClient
	if webhookClient == nil {
		webhookClient = &http.Client{
			Transport: httplog.NewRoundTripper(fileLogger, nil),
			Timeout:   time.Duration(a.cfg.Worker.WebhookTimeout) * time.Second,
		}
	}
	webhookSender := webhook.NewSender(webhookClient, a.l, m)

	c.Worker = notifier.NewWorker(
		locker,
		subRepo,
		weatherSvc,
		emailSvc,
		webhookSender,
		a.cfg.LockTTL(),
		time.Duration(a.cfg.Worker.JobTimeout)*time.Second,
		a.l,
		m,
	)

	var jobs subscriptions.Enqueuer
	switch a.cfg.Queue.Driver {
	case config.QueueDriverRabbit:
		if err := a.setupRabbit(c); err != nil {
			a.closeStorage(c)
			return nil, err
		}
		jobs = producers.NewProducer(c.Publisher, a.l, m)
	default:
		c.MemoryQueue = queue.NewMemoryQueue(c.Worker, a.cfg.Queue.Workers, a.cfg.Queue.Buffer, a.l, m)
		jobs = c.MemoryQueue
	}

	c.UserService = users.NewService(userRepo, sessions, emailSvc, a.l, m)
	c.SubscriptionService = subscriptions.NewService(subRepo, c.CityService, jobs, a.l, m)
	c.Scheduler = scheduler.New(subRepo, jobs, a.cfg.Scheduler.Spec, a.l, m)

	if err := c.UserService.EnsureAdmin(initCtx,
		a.cfg.Admin.Username, a.cfg.Admin.Email, a.cfg.Admin.Password); err != nil {
		a.l.Error().Err(err).Msg("failed to create admin user")
		a.closeStorage(c)
		return nil, err
	}

	c.Router = a.newRouter(c)
	c.Srv = &http.Server{
		Addr:        a.cfg.ServerAddress(),
		Handler:     c.Router,
		ReadTimeout: time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
	}
	a.l.Info().Str("http_addr", a.cfg.ServerAddress()).Msg("HTTP server configured")

	return c, nil
}

// StartWorkers launches the job consumers and the due scan. Jobs run with ctx.
func (a *App) StartWorkers(ctx context.Context, c *ServiceContainer) error {
	if c.MemoryQueue != nil {
		c.MemoryQueue.Start(ctx)
		a.l.Info().Int("workers", a.cfg.Queue.Workers).Msg("Memory queue started")
	}

	if c.NotifyConsumer != nil {
		handler := consumer.NewConsumer(ctx, c.Worker, a.l, c.M)
		go func() {
			if err := c.NotifyConsumer.Run(handler.ReceiveNotify); err != nil {
				a.l.Error().Err(err).Msg("notify consumer stopped")
			}
		}()
		a.l.Info().Str("queue", messaging.NotifyQueueName).Msg("RabbitMQ consumer started")
	}

	if err := c.Scheduler.Start(ctx); err != nil {
		a.l.Error().Err(err).Msg("failed to start scheduler")
		return err
	}
	a.l.Info().Str("spec", a.cfg.Scheduler.Spec).Msg("Scheduler started")
	return nil
}

func (a *App) Stop(c *ServiceContainer) {
	a.l.Info().Msg("Stopping application")

	if c.Scheduler != nil {
		c.Scheduler.Stop()
		a.l.Info().Msg("Scheduler stopped")
	}

	if c.Srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeoutDuration)
		defer cancel()
		if err := c.Srv.Shutdown(ctx); err != nil {
			a.l.Error().Err(err).Msg("HTTP shutdown error")
		} else {
			a.l.Info().Msg("HTTP server stopped")
		}
	}

	if c.MemoryQueue != nil {
		c.MemoryQueue.Stop()
		a.l.Info().Msg("Memory queue drained")
	}
	a.closeRabbit(c)
	a.closeStorage(c)

	if c.fileLogger != nil {
		_ = c.fileLogger.Sync()
	}
	a.l.Info().Msg("Application shutdown complete")
}

func (a *App) closeStorage(c *ServiceContainer) {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			a.l.Error().Err(err).Msg("Redis close error")
		}
	}
	if c.Db != nil {
		if err := c.Db.Close(); err != nil {
			a.l.Error().Err(err).Msg("Database close error")
		} else {
			a.l.Info().Msg("Database closed")
		}
	}
}

func (a *App) sessionTTL() time.Duration {
	return time.Duration(a.cfg.Cache.SessionTTL) * time.Hour
}

func newRedisConnection(connString string, dbType int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: connString, DB: dbType})
}
