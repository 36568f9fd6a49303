package swagger_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/storelink/products-api/api-contract"
	"github.com/storelink/products-api/internal/http/swagger"
)

func TestSwaggerDocsRoute(t *testing.T) {
	r := chi.NewRouter()
	swagger.Register(r)

	t.Run("Should get docs successfully", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs", nil)
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, resp.Body.String(), "<!DOCTYPE html>")
	})

	t.Run("Should get openapi.yml successfully", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/openapi.yml", nil)
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "application/yaml")
	})
}

func TestEmbeddedContractIsValid(t *testing.T) {
	doc, err := apicontract.Load(t.Context())
	require.NoError(t, err)

	assert.NotNil(t, doc.Paths.Find("/products"))
	assert.NotNil(t, doc.Paths.Find("/products/{productId}"))
	assert.NotNil(t, doc.Paths.Find("/products/quote/{productId}"))
}
