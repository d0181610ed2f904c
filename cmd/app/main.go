package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gurilao-dev/loja/config"
	"github.com/Gurilao-dev/loja/internal/server"
	"github.com/Gurilao-dev/loja/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := store.NewMongoConnection(ctx, store.MongoConfig{
		URI:     cfg.MongoURI,
		DBName:  cfg.MongoDBName,
		Timeout: cfg.MongoTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()

	db := client.Database(cfg.MongoDBName)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to create indexes")
	}

	srv, err := server.New(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build server")
	}

	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}

	log.Info().Msg("Server stopped cleanly")
}
