package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storelink/products-api/internal/apperr"
	"github.com/storelink/products-api/internal/config"
	"github.com/storelink/products-api/internal/model"
	"github.com/storelink/products-api/pkg/ptr"
	"github.com/storelink/products-api/pkg/zerror"
)

func TestEffectivePrice(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	tests := []struct {
		name    string
		product *model.Product
		want    string
	}{
		{
			name:    "no discount",
			product: &model.Product{Price: "1299"},
			want:    "1299",
		},
		{
			name: "open-ended discount",
			product: &model.Product{
				Price:         "1299",
				DiscountPrice: ptr.New("999"),
			},
			want: "999",
		},
		{
			name: "discount inside window",
			product: &model.Product{
				Price:         "1299",
				DiscountPrice: ptr.New("999"),
				DiscountFrom:  &before,
				DiscountTo:    &after,
			},
			want: "999",
		},
		{
			name: "discount not started",
			product: &model.Product{
				Price:         "1299",
				DiscountPrice: ptr.New("999"),
				DiscountFrom:  &after,
			},
			want: "1299",
		},
		{
			name: "discount expired",
			product: &model.Product{
				Price:         "1299",
				DiscountPrice: ptr.New("999"),
				DiscountTo:    &before,
			},
			want: "1299",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectivePrice(tt.product, now))
		})
	}
}

func TestQuoteSigner(t *testing.T) {
	cfg := config.Auth{JWTSecret: "test-secret", QuoteTTL: 15 * time.Minute}
	signer := NewQuoteSigner(cfg)

	product := enabledProduct()
	product.DiscountPrice = ptr.New("999")

	quote, err := signer.Sign(product)
	require.NoError(t, err)

	assert.Equal(t, product.ID, quote.ProductID)
	assert.Equal(t, "999", quote.Price)

	var claims QuoteClaims
	token, err := jwt.ParseWithClaims(quote.Token, &claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, product.ID, claims.Subject)
	assert.Equal(t, "999", claims.Product["price"])
	assert.Equal(t, product.Name, claims.Product["name"])
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(cfg.QuoteTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestQuote(t *testing.T) {
	t.Run("Should not quote disabled products", func(t *testing.T) {
		productRepo := &mockProductRepo{}
		svc := newTestService(productRepo, &mockOutboxRepo{})

		p := enabledProduct()
		p.Status = model.StatusDisabled
		productRepo.On("GetByID", mock.Anything, "p-1", false).Return(p, nil)

		_, err := svc.Quote(ctxWith(anonymous), "p-1")
		assert.True(t, zerror.Is(err, apperr.ProductNotFound))
	})

	t.Run("Should quote the effective price of an enabled product", func(t *testing.T) {
		productRepo := &mockProductRepo{}
		svc := newTestService(productRepo, &mockOutboxRepo{})

		p := enabledProduct()
		p.DiscountPrice = ptr.New("999")
		productRepo.On("GetByID", mock.Anything, "p-1", false).Return(p, nil)

		quote, err := svc.Quote(ctxWith(anonymous), "p-1")
		require.NoError(t, err)

		assert.NotEmpty(t, quote.Token)
		assert.Equal(t, "999", quote.Price)
	})
}
