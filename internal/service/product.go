package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/storelink/products-api/internal/apperr"
	"github.com/storelink/products-api/internal/auth"
	"github.com/storelink/products-api/internal/event"
	"github.com/storelink/products-api/internal/filter"
	"github.com/storelink/products-api/internal/model"
	"github.com/storelink/products-api/internal/repository"
	"github.com/storelink/products-api/internal/storage/db"
	"github.com/storelink/products-api/pkg/outbox"
	"github.com/storelink/products-api/pkg/ptr"
)

type ProductService interface {
	Create(ctx context.Context, input map[string]any) (*model.Product, error)
	Get(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, criteria *filter.Criteria) ([]*model.Product, error)
	ListByLocation(ctx context.Context, locationID string) ([]*model.Product, error)
	Patch(ctx context.Context, id string, changes map[string]any) (*model.Product, error)
	Delete(ctx context.Context, id string, hard bool) error
	Quote(ctx context.Context, id string) (*Quote, error)
}

type productService struct {
	db            db.DB
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
	quoteSigner   QuoteSigner
}

func NewProductService(
	db db.DB,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	quoteSigner QuoteSigner,
) ProductService {
	return &productService{
		db:            db,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
		quoteSigner:   quoteSigner,
	}
}

func (s *productService) Create(ctx context.Context, input map[string]any) (*model.Product, error) {
	sub := auth.FromContext(ctx)
	if err := auth.RequireElevated(sub); err != nil {
		return nil, err
	}

	product, err := model.New(input)
	if err != nil {
		return nil, err
	}

	if err := auth.CanCreateAt(sub, product.LocationID); err != nil {
		return nil, err
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if _, err := s.productRepo.WithDB(db).Save(ctx, product); err != nil {
			return err
		}
		return s.publishChanged(ctx, db, event.TopicProductCreated, product, sub)
	}); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *productService) Get(ctx context.Context, id string) (*model.Product, error) {
	sub := auth.FromContext(ctx)

	product, err := s.productRepo.GetByID(ctx, id, sub.IsSuperAdmin())
	if err != nil {
		return nil, err
	}

	// existence stays hidden from callers the product is not visible to
	if !auth.CanView(sub, product) {
		return nil, apperr.ProductNotFound
	}

	return product, nil
}

func (s *productService) List(ctx context.Context, criteria *filter.Criteria) ([]*model.Product, error) {
	return s.productRepo.List(ctx, criteria)
}

func (s *productService) ListByLocation(ctx context.Context, locationID string) ([]*model.Product, error) {
	sub := auth.FromContext(ctx)
	if !sub.IsSuperAdmin() && !(sub.IsLocationScoped() && sub.InLocation(locationID)) {
		return nil, apperr.LocationViewDenied
	}

	return s.productRepo.GetByLocationID(ctx, locationID)
}

func (s *productService) Patch(ctx context.Context, id string, changes map[string]any) (*model.Product, error) {
	sub := auth.FromContext(ctx)
	if err := auth.RequireElevated(sub); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, id, sub.IsSuperAdmin())
	if err != nil {
		return nil, err
	}

	if err := auth.CanModify(sub, product); err != nil {
		return nil, err
	}

	previousLocation := product.LocationID
	if err := product.ApplyChanges(changes); err != nil {
		return nil, err
	}
	if product.LocationID != previousLocation {
		if err := auth.CanMoveTo(sub, product.LocationID); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if _, err := s.productRepo.WithDB(db).Save(ctx, product); err != nil {
			return err
		}
		return s.publishChanged(ctx, db, event.TopicProductUpdated, product, sub)
	}); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *productService) Delete(ctx context.Context, id string, hard bool) error {
	sub := auth.FromContext(ctx)
	if err := auth.RequireElevated(sub); err != nil {
		return err
	}

	product, err := s.productRepo.GetByID(ctx, id, sub.IsSuperAdmin())
	if err != nil {
		return err
	}

	if err := auth.CanModify(sub, product); err != nil {
		return err
	}

	// hard deletion is a super-admin privilege; others fall back to soft
	hard = hard && sub.IsSuperAdmin()
	if product.DeletedAt != nil && !hard {
		return apperr.ProductGone
	}

	return s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.WithDB(db).Delete(ctx, product, hard); err != nil {
			return err
		}

		payload, err := json.Marshal(event.ProductDeletedEvent{
			ProductID:  product.ID,
			LocationID: product.LocationID,
			ActorID:    sub.UserID,
			Hard:       hard,
		})
		if err != nil {
			return fmt.Errorf("marshal product deleted event: %w", err)
		}

		return s.createOutboxMsg(ctx, db, event.TopicProductDeleted, product.ID, payload)
	})
}

func (s *productService) Quote(ctx context.Context, id string) (*Quote, error) {
	product, err := s.productRepo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if product.Status != model.StatusEnabled {
		return nil, apperr.ProductNotFound
	}

	quote, err := s.quoteSigner.Sign(product)
	if err != nil {
		return nil, fmt.Errorf("sign quote: %w", err)
	}

	return quote, nil
}

func (s *productService) publishChanged(
	ctx context.Context,
	db db.DB,
	topic string,
	product *model.Product,
	sub auth.Subject,
) error {
	payload, err := json.Marshal(event.ProductChangedEvent{
		ProductID:  product.ID,
		LocationID: product.LocationID,
		ActorID:    sub.UserID,
		Product:    product.Map(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	return s.createOutboxMsg(ctx, db, topic, product.ID, payload)
}

func (s *productService) createOutboxMsg(
	ctx context.Context,
	db db.DB,
	topic string,
	productID string,
	payload json.RawMessage,
) error {
	if err := s.outboxMsgRepo.
		WithDB(db).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        topic,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      payload,
			PartitionKey: ptr.New(productID),
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}
