package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"atelier/internal/app"
	"atelier/internal/config"
)

func main() {
	configPath := flag.String("config", "atelier.yaml", "path to the YAML config file")
	flag.Parse()

	// Missing .env is fine; deployments set real environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.NewApp(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to assemble the application")
	}

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("application stopped with an error")
	}
}
