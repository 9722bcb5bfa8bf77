package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/fitlyf/cart-service/internal/cart"
	"github.com/fjod/fitlyf/cart-service/internal/domain"
	"github.com/fjod/fitlyf/pkg/contracts"
	"github.com/fjod/fitlyf/pkg/pricing"
	"github.com/go-chi/chi/v5"
)

type ProductCatalog interface {
	ListProducts(ctx context.Context, category string) ([]contracts.Product, error)
	GetProduct(ctx context.Context, id string) (*contracts.Product, error)
}

type CartHandler struct {
	catalog      ProductCatalog
	timeout      time.Duration
	maxBodyBytes int64
}

func NewCartHandler(catalog ProductCatalog, timeout time.Duration, maxBodyBytes int64) *CartHandler {
	return &CartHandler{
		catalog:      catalog,
		timeout:      timeout,
		maxBodyBytes: maxBodyBytes,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// CartResponseDTO shows totals for standard shipping without gift wrap; the
// checkout endpoint prices the shopper's actual selections.
type CartResponseDTO struct {
	Items  []domain.CartLine `json:"items"`
	Count  int               `json:"count"`
	Totals pricing.Totals    `json:"totals"`
}

func cartResponse(c *cart.Store) CartResponseDTO {
	lines := c.Lines()
	totals, _ := pricing.Compute(lines, pricing.ShippingStandard, false)
	return CartResponseDTO{Items: lines, Count: c.Count(), Totals: totals}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, "no_session", "missing session")
		return
	}
	respondJSON(w, r, http.StatusOK, cartResponse(s.Cart))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	var req AddItemRequestDTO
	if !decodeJSON(w, r, h.maxBodyBytes, &req) {
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		handleUpstreamError(w, r, err)
		return
	}
	if !product.InStock {
		respondError(w, r, http.StatusConflict, "out_of_stock", product.Name+" is out of stock")
		return
	}

	s.Cart.AddItem(ctx, *product)
	respondJSON(w, r, http.StatusCreated, cartResponse(s.Cart))
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, h.maxBodyBytes, &req) {
		return
	}

	s.Cart.UpdateQuantity(ctx, productID, req.Quantity)
	respondJSON(w, r, http.StatusOK, cartResponse(s.Cart))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	s.Cart.RemoveItem(ctx, productID)
	respondJSON(w, r, http.StatusOK, cartResponse(s.Cart))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	s.Cart.Clear(ctx)
	respondJSON(w, r, http.StatusOK, cartResponse(s.Cart))
}
