package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/storelink/products-api/internal/apperr"
	"github.com/storelink/products-api/internal/auth"
	"github.com/storelink/products-api/internal/http/apierr"
)

// Auth resolves the bearer token into a Subject. Requests without a
// token proceed as anonymous; a token that fails verification is
// rejected so a client never silently loses its role scope.
func Auth(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			if tokenString == header {
				respondInvalidToken(w)
				return
			}

			sub, err := verifier.Verify(tokenString)
			if err != nil {
				respondInvalidToken(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), sub)))
		})
	}
}

func respondInvalidToken(w http.ResponseWriter) {
	res := apierr.New(apperr.InvalidToken)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	//nolint:errcheck
	json.NewEncoder(w).Encode(res)
}
