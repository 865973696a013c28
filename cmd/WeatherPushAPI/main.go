package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Nazarious-ucu/weather-push-api/internal/app"
	"github.com/Nazarious-ucu/weather-push-api/internal/config"
	"github.com/Nazarious-ucu/weather-push-api/pkg/logger"
)

// @title Weather Push API
// @version 1.0
// @description API for periodic weather updates by email and webhook
// @host localhost:8080
// @BasePath /api/
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Panicf("failed to load configuration: %v", err)
	}

	l, err := logger.NewLogger(cfg.Logs.Path, "weather-push-api", cfg.Logs.Level)
	if err != nil {
		log.Panicf("failed to create logger: %v", err)
	}

	application := app.New(*cfg, l)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		l.Fatal().Err(err).Msg("application stopped with error")
	}
}
