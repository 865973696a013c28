package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	QueueDriverRabbit = "rabbitmq"
	QueueDriverMemory = "memory"
)

type Server struct {
	Host        string `envconfig:"SERVER_HOST" default:"localhost"`
	HTTPPort    string `envconfig:"SERVER_HTTP_PORT" default:"8080"`
	ReadTimeout int    `envconfig:"SERVER_TIMEOUT" default:"10"`
	BaseURL     string `envconfig:"SERVER_BASE_URL" default:"http://localhost:8080"`
}

type Db struct {
	Dialect string `envconfig:"DB_DIALECT" default:"sqlite"`
	Source  string `envconfig:"DB_NAME" default:"weather.db"`
}

type Redis struct {
	Enabled bool   `envconfig:"REDIS_ENABLED" default:"true"`
	Host    string `envconfig:"REDIS_HOST" default:"localhost"`
	Port    string `envconfig:"REDIS_PORT" default:"6379"`
	DbType  int    `envconfig:"REDIS_DB_TYPE" default:"0"`
}

type RabbitMQ struct {
	Host string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port string `envconfig:"RABBITMQ_PORT" default:"5672"`
	User string `envconfig:"RABBITMQ_USER" default:"guest"`
	Pass string `envconfig:"RABBITMQ_PASSWORD" default:"guest"`
}

type Queue struct {
	Driver  string `envconfig:"QUEUE_DRIVER" default:"rabbitmq"`
	Workers int    `envconfig:"QUEUE_WORKERS" default:"4"`
	Buffer  int    `envconfig:"QUEUE_BUFFER" default:"256"`
}

type Email struct {
	User     string `envconfig:"EMAIL_USER"     required:"true"`
	Host     string `envconfig:"EMAIL_HOST"     required:"true"`
	Port     string `envconfig:"EMAIL_PORT"     default:"587"`
	Password string `envconfig:"EMAIL_PASSWORD" required:"true"`
	From     string `envconfig:"EMAIL_FROM"     required:"true"`
}

type Provider struct {
	APIKey      string `envconfig:"OPEN_WEATHER_MAP_API_KEY" required:"true"`
	GeoURL      string `envconfig:"OPEN_WEATHER_MAP_GEO_URL" default:"http://api.openweathermap.org/geo/1.0/direct"`
	WeatherURL  string `envconfig:"OPEN_WEATHER_MAP_URL" default:"https://api.openweathermap.org/data/2.5/weather"`
	HTTPTimeout int    `envconfig:"PROVIDER_HTTP_TIMEOUT" default:"10"`
}

type Breaker struct {
	TimeInterval int    `envconfig:"BREAKER_INTERVAL" default:"30"`
	TimeTimeOut  int    `envconfig:"BREAKER_TIMEOUT" default:"10"`
	RepeatNumber uint32 `envconfig:"BREAKER_REPEAT_NUM" default:"5"`
}

type RateLimit struct {
	RPS   float64 `envconfig:"PROVIDER_RPS" default:"10"`
	Burst int     `envconfig:"PROVIDER_BURST" default:"5"`
}

type Scheduler struct {
	Spec string `envconfig:"SCHEDULER_SPEC" default:"0 * * * * *"`
}

type Worker struct {
	LockTTL        int `envconfig:"WORKER_LOCK_TTL" default:"60"`
	JobTimeout     int `envconfig:"WORKER_JOB_TIMEOUT" default:"30"`
	WebhookTimeout int `envconfig:"WEBHOOK_HTTP_TIMEOUT" default:"10"`
}

type Cache struct {
	WeatherTTL int `envconfig:"WEATHER_CACHE_SECONDS" default:"600"`
	SessionTTL int `envconfig:"SESSION_TTL_HOURS" default:"24"`
}

type Admin struct {
	Username string `envconfig:"ADMIN_USERNAME"`
	Email    string `envconfig:"ADMIN_EMAIL"`
	Password string `envconfig:"ADMIN_PASSWORD"`
}

type Logs struct {
	Path     string `envconfig:"LOGS_PATH" default:"./logs/weather-push-api.log"`
	HTTPPath string `envconfig:"HTTP_LOGS_PATH" default:"./logs/http.log"`
	Level    string `envconfig:"LOG_LEVEL" default:"debug"`
}

type Config struct {
	Server    Server
	DB        Db
	Redis     Redis
	RabbitMQ  RabbitMQ
	Queue     Queue
	Email     Email
	Provider  Provider
	Breaker   Breaker
	RateLimit RateLimit
	Scheduler Scheduler
	Worker    Worker
	Cache     Cache
	Admin     Admin
	Logs      Logs
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Queue.Driver != QueueDriverRabbit && cfg.Queue.Driver != QueueDriverMemory {
		return nil, fmt.Errorf("unknown QUEUE_DRIVER %q", cfg.Queue.Driver)
	}
	return &cfg, nil
}

func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + c.Server.HTTPPort
}

func (c *Config) WeatherTTL() time.Duration {
	return time.Duration(c.Cache.WeatherTTL) * time.Second
}

func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.Worker.LockTTL) * time.Second
}

func (r *Redis) Address() string {
	return r.Host + ":" + r.Port
}

func (r *RabbitMQ) Address() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", r.User, r.Pass, r.Host, r.Port)
}
