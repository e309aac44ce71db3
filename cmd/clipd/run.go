package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"cliplink/internal/clip/httpapi"
	"cliplink/internal/clip/kafka"
	"cliplink/internal/clip/service"
	"cliplink/internal/clip/token"
	"cliplink/internal/config"
	"cliplink/internal/storage/postgres"
	"cliplink/internal/storage/s3"
)

func run(ctx context.Context, logger zerolog.Logger) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	repo := postgres.NewClipRepo(db)
	if err := repo.Init(ctx); err != nil {
		return err
	}

	store, err := s3.New(ctx, s3.Config{
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Endpoint:        cfg.S3Endpoint,
		Bucket:          cfg.S3Bucket,
		PublicBaseURL:   cfg.S3PublicURL,
	})
	if err != nil {
		return err
	}

	tokens, err := token.New(cfg.TokenSecret, cfg.TokenAlgorithm, cfg.TokenTTL)
	if err != nil {
		return err
	}

	var events service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		defer producer.Close()
		events = producer
	}

	svc, err := service.New(service.Config{
		Repo:              repo,
		Store:             store,
		Tokens:            tokens,
		Events:            events,
		BaseURL:           cfg.BaseURL,
		AllowedExtensions: cfg.AllowedExtensions,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	h := httpapi.New(svc, tokens, cfg.MaxUploadBytes, logger)
	router := httpapi.NewRouter(h)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil

	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	}
}
