package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/storelink/products-api/internal/auth"
	"github.com/storelink/products-api/internal/config"
	"github.com/storelink/products-api/internal/http"
	"github.com/storelink/products-api/internal/log"
	"github.com/storelink/products-api/internal/repository"
	"github.com/storelink/products-api/internal/service"
	"github.com/storelink/products-api/internal/storage/db"
	"github.com/storelink/products-api/internal/telemetry"
	"github.com/storelink/products-api/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running api application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		HTTP     config.HTTP
		Auth     config.Auth
		Otel     config.Otel
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

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	productRepository := repository.NewProductRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	quoteSigner := service.NewQuoteSigner(cfg.Auth)
	productService := service.NewProductService(dbClient, productRepository, outboxMsgRepository, quoteSigner)

	verifier := auth.NewVerifier(cfg.Auth)

	interruptChan := cmdutil.InterruptChan()

	svc := http.New(cfg.HTTP, logger, verifier, dbClient, productService)
	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running http service: %w", err)
	}

	logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

	<-interruptChan

	logger.InfoContext(ctx, "http service is shutting down")
	if err := cleanup(ctx); err != nil {
		logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
	}

	logger.InfoContext(ctx, "http service is stopped")

	return nil
}
