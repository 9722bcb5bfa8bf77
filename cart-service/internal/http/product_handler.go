package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/fitlyf/pkg/contracts"
)

type ProductHandler struct {
	catalog ProductCatalog
	timeout time.Duration
}

func NewProductHandler(catalog ProductCatalog, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx, r.URL.Query().Get("category"))
	if err != nil {
		handleUpstreamError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, contracts.ProductsResponse{Products: products})
}
