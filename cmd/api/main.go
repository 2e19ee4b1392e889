package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/krestly/crest-server/internal/agents"
	"github.com/krestly/crest-server/internal/config"
	"github.com/krestly/crest-server/internal/handlers"
	"github.com/krestly/crest-server/internal/kafka"
	"github.com/krestly/crest-server/internal/llm"
	"github.com/krestly/crest-server/internal/services"
	"github.com/krestly/crest-server/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("Starting Crest API")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	llmClient, err := llm.NewClient(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize LLM client")
	}

	imageAgent := agents.NewImageAgent(llmClient, nil)
	if cfg.StorageEnabled() {
		storageClient, err := storage.NewClient(ctx,
			cfg.S3Endpoint, cfg.S3Region, cfg.S3Bucket,
			cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3PublicURL,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize storage client")
		}
		imageAgent.Storage = storageClient
	}

	var events services.EventPublisher
	if cfg.EventsEnabled() {
		kafkaProducer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicEvents)
		defer kafkaProducer.Close()
		events = kafkaProducer
	}

	crestService := services.NewCrestService(llmClient, imageAgent, events, cfg)
	h := handlers.NewHandler(crestService)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.NewRouter(h, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Both upstream calls run inside one request
		WriteTimeout: cfg.TextTimeout + cfg.ImageTimeout + 10*time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.HTTPAddr).
			Str("text_model", cfg.TextModel()).
			Str("image_model", cfg.ImageModel()).
			Str("validation_mode", cfg.ValidationMode).
			Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down API...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.TextTimeout+cfg.ImageTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("API exited")
}
