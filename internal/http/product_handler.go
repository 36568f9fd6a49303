package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storelink/products-api/internal/apperr"
	"github.com/storelink/products-api/internal/auth"
	"github.com/storelink/products-api/internal/filter"
	"github.com/storelink/products-api/internal/model"
	"github.com/storelink/products-api/internal/service"
)

type errorResponder func(w http.ResponseWriter, r *http.Request, err error)

type productHandler struct {
	productSvc   service.ProductService
	respondError errorResponder
}

func newProductHandler(productSvc service.ProductService, respondError errorResponder) *productHandler {
	return &productHandler{
		productSvc:   productSvc,
		respondError: respondError,
	}
}

func (h *productHandler) list(w http.ResponseWriter, r *http.Request) {
	criteria := filter.Compile(r.URL.RawQuery, auth.FromContext(r.Context()))
	if criteria == nil {
		// visibility injection could not scope the query
		w.WriteHeader(http.StatusNoContent)
		return
	}

	products, err := h.productSvc.List(r.Context(), criteria)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, productMaps(products))
}

func (h *productHandler) get(w http.ResponseWriter, r *http.Request) {
	product, err := h.productSvc.Get(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, product.Map())
}

func (h *productHandler) create(w http.ResponseWriter, r *http.Request) {
	input, err := decodeBody(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	product, err := h.productSvc.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, product.Map())
}

func (h *productHandler) patch(w http.ResponseWriter, r *http.Request) {
	changes, err := decodeBody(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	product, err := h.productSvc.Patch(r.Context(), chi.URLParam(r, "productId"), changes)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, product.Map())
}

func (h *productHandler) delete(w http.ResponseWriter, r *http.Request) {
	hard := r.URL.Query().Get("hard") == "true"

	if err := h.productSvc.Delete(r.Context(), chi.URLParam(r, "productId"), hard); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *productHandler) quote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.productSvc.Quote(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

func (h *productHandler) listByLocation(w http.ResponseWriter, r *http.Request) {
	products, err := h.productSvc.ListByLocation(r.Context(), chi.URLParam(r, "locationId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, productMaps(products))
}

func decodeBody(r *http.Request) (map[string]any, error) {
	defer r.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, apperr.InvalidBody.WrapParent(err)
	}

	return body, nil
}

func productMaps(products []*model.Product) []map[string]any {
	items := make([]map[string]any, 0, len(products))
	for _, product := range products {
		items = append(items, product.Map())
	}
	return items
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(body)
}
