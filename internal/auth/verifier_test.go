package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelink/products-api/internal/config"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerify(t *testing.T) {
	verifier := NewVerifier(config.Auth{JWTSecret: testSecret})

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{RoleAdmin},
		AppMetadata: AppMetadata{
			Locations: []string{"loc-1", "loc-2"},
		},
	}

	t.Run("Should build a subject from valid claims", func(t *testing.T) {
		sub, err := verifier.Verify(signToken(t, testSecret, claims))
		require.NoError(t, err)

		assert.True(t, sub.Authenticated)
		assert.Equal(t, "user-1", sub.UserID)
		assert.Equal(t, []string{RoleAdmin}, sub.Roles)
		assert.Equal(t, []string{"loc-1", "loc-2"}, sub.Locations)
	})

	t.Run("Should reject a token signed with another key", func(t *testing.T) {
		_, err := verifier.Verify(signToken(t, "other-secret", claims))
		assert.Error(t, err)
	})

	t.Run("Should reject an expired token", func(t *testing.T) {
		expired := claims
		expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

		_, err := verifier.Verify(signToken(t, testSecret, expired))
		assert.Error(t, err)
	})

	t.Run("Should reject garbage", func(t *testing.T) {
		_, err := verifier.Verify("not.a.token")
		assert.Error(t, err)
	})
}
