package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storelink/products-api/internal/config"
	"github.com/storelink/products-api/internal/model"
)

// Quote is a price snapshot with a signed token attesting to it.
type Quote struct {
	Token     string    `json:"token"`
	ProductID string    `json:"productId"`
	Price     string    `json:"price"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type QuoteClaims struct {
	jwt.RegisteredClaims
	Product map[string]any `json:"product"`
}

type QuoteSigner interface {
	Sign(product *model.Product) (*Quote, error)
}

type quoteSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewQuoteSigner(cfg config.Auth) QuoteSigner {
	return &quoteSigner{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.QuoteTTL,
		now:    time.Now,
	}
}

func (s *quoteSigner) Sign(product *model.Product) (*Quote, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	price := EffectivePrice(product, now)

	snapshot := map[string]any{
		"id":               product.ID,
		"name":             product.Name,
		"locationId":       product.LocationID,
		"price":            price,
		"attributes":       product.Attributes,
		"description":      product.Description,
		"uniqueIdentifier": product.UniqueIdentifier,
	}

	claims := QuoteClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   product.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Product: snapshot,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign quote claims: %w", err)
	}

	return &Quote{
		Token:     token,
		ProductID: product.ID,
		Price:     price,
		ExpiresAt: expiresAt,
	}, nil
}

// EffectivePrice returns the discount price while the discount window is
// open, the regular price otherwise. Open window bounds count as always
// satisfied.
func EffectivePrice(product *model.Product, now time.Time) string {
	if product.DiscountPrice == nil {
		return product.Price
	}
	if product.DiscountFrom != nil && !now.After(*product.DiscountFrom) {
		return product.Price
	}
	if product.DiscountTo != nil && !now.Before(*product.DiscountTo) {
		return product.Price
	}
	return *product.DiscountPrice
}
