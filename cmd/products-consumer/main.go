package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/storelink/products-api/internal/config"
	"github.com/storelink/products-api/internal/event"
	"github.com/storelink/products-api/internal/log"
	"github.com/storelink/products-api/internal/storage/mq"
	"github.com/storelink/products-api/internal/telemetry"
	"github.com/storelink/products-api/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running consumer application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log   config.Log
		Kafka config.Kafka
		Otel  config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	interruptChan := cmdutil.InterruptChan()

	svc := event.New(logger, kafkaConsumer)
	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running event service: %w", err)
	}
	logger.InfoContext(ctx, "event service started")

	<-interruptChan

	logger.InfoContext(ctx, "event service is shutting down")
	cleanup()

	logger.InfoContext(ctx, "event service is stopped")

	return nil
}
