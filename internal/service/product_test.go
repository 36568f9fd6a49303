package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storelink/products-api/internal/apperr"
	"github.com/storelink/products-api/internal/auth"
	"github.com/storelink/products-api/internal/config"
	"github.com/storelink/products-api/internal/event"
	"github.com/storelink/products-api/internal/filter"
	"github.com/storelink/products-api/internal/model"
	"github.com/storelink/products-api/internal/repository"
	"github.com/storelink/products-api/internal/storage/db"
	"github.com/storelink/products-api/pkg/zerror"
)

const testLocation = "0d4907f1-4c8c-4a3b-9f3c-1a2b3c4d5e6f"

type fakeDB struct{}

func (fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (fakeDB) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (fakeDB) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (fakeDB) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (f fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	return txFunc(f)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) WithDB(_ db.DB) repository.ProductRepository { return m }

func (m *mockProductRepo) GetByID(ctx context.Context, id string, includeDeleted bool) (*model.Product, error) {
	args := m.Called(ctx, id, includeDeleted)
	if p := args.Get(0); p != nil {
		return p.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) GetByLocationID(ctx context.Context, locationID string) ([]*model.Product, error) {
	args := m.Called(ctx, locationID)
	if p := args.Get(0); p != nil {
		return p.([]*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, criteria *filter.Criteria) ([]*model.Product, error) {
	args := m.Called(ctx, criteria)
	if p := args.Get(0); p != nil {
		return p.([]*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) Save(ctx context.Context, product *model.Product) (*model.Product, error) {
	args := m.Called(ctx, product)
	if p := args.Get(0); p != nil {
		return p.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) Delete(ctx context.Context, product *model.Product, hard bool) error {
	return m.Called(ctx, product, hard).Error(0)
}

func (m *mockProductRepo) IDExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) WithDB(_ db.DB) repository.OutboxMsgRepository { return m }

func (m *mockOutboxRepo) CreateOutboxMsg(ctx context.Context, params repository.CreateOutboxMsgParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *mockOutboxRepo) ListUnprocessedOutboxMsgs(ctx context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	args := m.Called(ctx, params)
	if r := args.Get(0); r != nil {
		return r.([]repository.ListUnprocessedOutboxMsgsResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOutboxRepo) BulkUpdateOutboxMsgs(ctx context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	return m.Called(ctx, params).Error(0)
}

func newTestService(productRepo *mockProductRepo, outboxRepo *mockOutboxRepo) ProductService {
	signer := NewQuoteSigner(config.Auth{JWTSecret: "test-secret", QuoteTTL: 15 * time.Minute})
	return NewProductService(fakeDB{}, productRepo, outboxRepo, signer)
}

func ctxWith(sub auth.Subject) context.Context {
	return auth.NewContext(context.Background(), sub)
}

var (
	superAdmin = auth.Subject{UserID: "u-super", Roles: []string{auth.RoleSuperAdmin}, Authenticated: true}
	anonymous  = auth.Subject{}
)

func admin(locations ...string) auth.Subject {
	return auth.Subject{UserID: "u-admin", Roles: []string{auth.RoleAdmin}, Locations: locations, Authenticated: true}
}

func employee(locations ...string) auth.Subject {
	return auth.Subject{UserID: "u-emp", Roles: []string{auth.RoleEmployee}, Locations: locations, Authenticated: true}
}

func validInput() map[string]any {
	return map[string]any{
		"name":             "Espresso Beans",
		"locationId":       testLocation,
		"price":            "1299",
		"status":           1,
		"uniqueIdentifier": "espresso-beans-1kg",
	}
}

func enabledProduct() *model.Product {
	return &model.Product{
		ID:               "p-1",
		Name:             "Espresso Beans",
		LocationID:       testLocation,
		Price:            "1299",
		Status:           model.StatusEnabled,
		Attributes:       map[string]any{},
		UniqueIdentifier: "espresso-beans-1kg",
		CreatedAt:        time.Now(),
	}
}

func TestCreate(t *testing.T) {
	t.Run("Should reject non-elevated callers", func(t *testing.T) {
		productRepo := &mockProductRepo{}
		svc := newTestService(productRepo, &mockOutboxRepo{})

		for _, sub := range []auth.Subject{anonymous, employee(testLocation)} {
			_, err := svc.Create(ctxWith(sub), validInput())
			assert.True(t, zerror.Is(err, apperr.NotAuthorized))
		}
		productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Should reject admins creating outside their locations", func(t *testing.T) {
		productRepo := &mockProductRepo{}
		svc := newTestService(productRepo, &mockOutboxRepo{})

		_, err := svc.Create(ctxWith(admin("8b6b54a8-0000-4000-8000-000000000001")), validInput())
		assert.True(t, zerror.Is(err, apperr.CreateLocationDenied))
		productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Should surface all payload violations", func(t *testing.T) {
		svc := newTestService(&mockProductRepo{}, &mockOutboxRepo{})

		_, err := svc.Create(ctxWith(superAdmin), map[string]any{})

		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.NotEmpty(t, verr.Messages())
	})

	t.Run("Should save and enqueue a created event in one transaction", func(t *testing.T) {
		productRepo := &mockProductRepo{}
		outboxRepo := &mockOutboxRepo{}
		svc := newTestService(productRepo, outboxRepo)

		productRepo.On("Save", mock.Anything, mock.Anything).
			Return(&model.Product{}, nil)

		var captured repository.CreateOutboxMsgParams
		outboxRepo.On("CreateOutboxMsg", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(repository.CreateOutboxMsgParams)
			}).
			Return(nil)

		product, err := svc.Create(ctxWith(admin(testLocation)), validInput())
		require.NoError(t, err)

		assert.NotEmpty(t, product.ID)
		assert.Equal(t, event.TopicProductCreated, captured.Topic)
		require.NotNil(t, captured.PartitionKey)
		assert.Equal(t, product.ID, *captured.PartitionKey)
	})
}

func TestGet(t *testing.T) {
	t.Run("Should hide disabled products from customers", func(t *testing.T) {
		productRepo := &mockProductRepo{}
		svc := newTestService(productRepo, &mockOutboxRepo{})

		p := enabledProduct()
		p.Status = model.StatusDisabled
		productRepo.On("GetByID", mock.Anything, "p-1", false).Return(p, nil)

		_, err := svc.Get(ctxWith(anonymous), "p-1")
		assert.True(t, zerror.Is(err, apperr.ProductNotFound))
	})

	t.Run("Should include soft-deleted rows for super-admins", func(t *testing.T) {
		productRepo := &mockProductRepo{}
		svc := newTestService(productRepo, &mockOutboxRepo{})

		p := enabledProduct()
		now := time.Now()
		p.DeletedAt = &now
		productRepo.On("GetByID", mock.Anything, "p-1", true).Return(p, nil)

		got, err := svc.Get(ctxWith(superAdmin), "p-1")
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})
}

func TestListByLocation(t *testing.T) {
	t.Run("Should reject staff of other locations", func(t *testing.T) {
		svc := newTestService(&mockProductRepo{}, &mockOutboxRepo{})

		_, err := svc.ListByLocation(ctxWith(employee("loc-other")), testLocation)
		assert.True(t, zerror.Is(err, apperr.LocationViewDenied))
	})

	t.Run("Should return the location's products for its staff", func(t *testing.T) {
		productRepo := &mockProductRepo{}
		svc := newTestService(productRepo, &mockOutboxRepo{})

		want := []*model.Product{enabledProduct()}
		productRepo.On("GetByLocationID", mock.Anything, testLocation).Return(want, nil)

		got, err := svc.ListByLocation(ctxWith(employee(testLocation)), testLocation)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestPatch(t *testing.T) {
	t.Run("Should reject moving a product outside the caller's locations", func(t *testing.T) {
		productRepo := &mockProductRepo{}
		svc := newTestService(productRepo, &mockOutboxRepo{})

		productRepo.On("GetByID", mock.Anything, "p-1", false).Return(enabledProduct(), nil)

		_, err := svc.Patch(ctxWith(admin(testLocation)), "p-1", map[string]any{
			"locationId": "8b6b54a8-0000-4000-8000-000000000001",
		})
		assert.True(t, zerror.Is(err, apperr.MoveLocationDenied))
		productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Should apply nothing on malformed changes", func(t *testing.T) {
		productRepo := &mockProductRepo{}
		svc := newTestService(productRepo, &mockOutboxRepo{})

		productRepo.On("GetByID", mock.Anything, "p-1", false).Return(enabledProduct(), nil)

		_, err := svc.Patch(ctxWith(admin(testLocation)), "p-1", map[string]any{"status": 9})

		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Should save and enqueue an updated event", func(t *testing.T) {
		productRepo := &mockProductRepo{}
		outboxRepo := &mockOutboxRepo{}
		svc := newTestService(productRepo, outboxRepo)

		productRepo.On("GetByID", mock.Anything, "p-1", false).Return(enabledProduct(), nil)
		productRepo.On("Save", mock.Anything, mock.Anything).Return(&model.Product{}, nil)

		var captured repository.CreateOutboxMsgParams
		outboxRepo.On("CreateOutboxMsg", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(repository.CreateOutboxMsgParams)
			}).
			Return(nil)

		product, err := svc.Patch(ctxWith(admin(testLocation)), "p-1", map[string]any{"name": "House Blend"})
		require.NoError(t, err)

		assert.Equal(t, "House Blend", product.Name)
		assert.Equal(t, event.TopicProductUpdated, captured.Topic)
	})
}

func TestDelete(t *testing.T) {
	t.Run("Should downgrade hard deletes for admins", func(t *testing.T) {
		productRepo := &mockProductRepo{}
		outboxRepo := &mockOutboxRepo{}
		svc := newTestService(productRepo, outboxRepo)

		productRepo.On("GetByID", mock.Anything, "p-1", false).Return(enabledProduct(), nil)
		productRepo.On("Delete", mock.Anything, mock.Anything, false).Return(nil)
		outboxRepo.On("CreateOutboxMsg", mock.Anything, mock.Anything).Return(nil)

		err := svc.Delete(ctxWith(admin(testLocation)), "p-1", true)
		require.NoError(t, err)

		productRepo.AssertCalled(t, "Delete", mock.Anything, mock.Anything, false)
	})

	t.Run("Should refuse to soft delete an already deleted product", func(t *testing.T) {
		productRepo := &mockProductRepo{}
		svc := newTestService(productRepo, &mockOutboxRepo{})

		p := enabledProduct()
		now := time.Now()
		p.DeletedAt = &now
		productRepo.On("GetByID", mock.Anything, "p-1", true).Return(p, nil)

		err := svc.Delete(ctxWith(superAdmin), "p-1", false)
		assert.True(t, zerror.Is(err, apperr.ProductGone))
	})

	t.Run("Should let super-admins hard delete a soft-deleted product", func(t *testing.T) {
		productRepo := &mockProductRepo{}
		outboxRepo := &mockOutboxRepo{}
		svc := newTestService(productRepo, outboxRepo)

		p := enabledProduct()
		now := time.Now()
		p.DeletedAt = &now
		productRepo.On("GetByID", mock.Anything, "p-1", true).Return(p, nil)
		productRepo.On("Delete", mock.Anything, p, true).Return(nil)

		var captured repository.CreateOutboxMsgParams
		outboxRepo.On("CreateOutboxMsg", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(repository.CreateOutboxMsgParams)
			}).
			Return(nil)

		err := svc.Delete(ctxWith(superAdmin), "p-1", true)
		require.NoError(t, err)
		assert.Equal(t, event.TopicProductDeleted, captured.Topic)
	})

	t.Run("Should reject employees", func(t *testing.T) {
		svc := newTestService(&mockProductRepo{}, &mockOutboxRepo{})

		err := svc.Delete(ctxWith(employee(testLocation)), "p-1", false)
		assert.True(t, zerror.Is(err, apperr.NotAuthorized))
	})
}
