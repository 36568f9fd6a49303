package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storelink/products-api/internal/config"
)

// Claims is the token payload shape issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims
	Roles       []string    `json:"roles"`
	AppMetadata AppMetadata `json:"app_metadata"`
}

// AppMetadata carries the location scope of a non-super caller.
type AppMetadata struct {
	Locations []string `json:"locations"`
}

// Verifier validates bearer tokens and turns their claims into a Subject.
type Verifier struct {
	secret []byte
}

func NewVerifier(cfg config.Auth) *Verifier {
	return &Verifier{secret: []byte(cfg.JWTSecret)}
}

// Verify parses and validates the token string. Expiry and signature
// failures are returned as-is for the middleware to translate.
func (v *Verifier) Verify(tokenString string) (Subject, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Subject{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return Subject{}, fmt.Errorf("invalid token")
	}

	return Subject{
		UserID:        claims.Subject,
		Roles:         claims.Roles,
		Locations:     claims.AppMetadata.Locations,
		Authenticated: true,
	}, nil
}
