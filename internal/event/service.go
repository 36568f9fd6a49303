package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/storelink/products-api/internal/storage/mq"
)

// Service consumes product lifecycle events. Handlers only log for now;
// downstream projections hook in here.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

func New(logger *slog.Logger, mqConsumer mq.Consumer) *Service {
	return &Service{
		logger:     logger,
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.mqConsumer.RegisterHandler(TopicProductCreated, s.changedHandler("created")); err != nil {
		return nil, fmt.Errorf("register product created handler: %w", err)
	}
	if err := s.mqConsumer.RegisterHandler(TopicProductUpdated, s.changedHandler("updated")); err != nil {
		return nil, fmt.Errorf("register product updated handler: %w", err)
	}
	if err := s.mqConsumer.RegisterHandler(
		TopicProductDeleted,
		func(ctx context.Context, topic string, payload []byte) error {
			var ev ProductDeletedEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal product deleted event: %w", err)
			}

			s.logger.InfoContext(ctx, "product deleted",
				slog.String("product_id", ev.ProductID),
				slog.String("location_id", ev.LocationID),
				slog.Bool("hard", ev.Hard),
			)
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("register product deleted handler: %w", err)
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	return func() { mqCleanup() }, nil
}

func (s *Service) changedHandler(action string) mq.HandlerFunc {
	return func(ctx context.Context, topic string, payload []byte) error {
		var ev ProductChangedEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("unmarshal %s event: %w", topic, err)
		}

		s.logger.InfoContext(ctx, "product "+action,
			slog.String("product_id", ev.ProductID),
			slog.String("location_id", ev.LocationID),
		)
		return nil
	}
}
