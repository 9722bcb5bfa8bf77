package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/fitlyf/pkg/contracts"
	"github.com/fjod/fitlyf/pkg/logger"
	"github.com/fjod/fitlyf/product-service/internal/domain"
	"github.com/fjod/fitlyf/product-service/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type ProductStore interface {
	ListProducts(ctx context.Context, category string) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type ProductHandler struct {
	store   ProductStore
	timeout time.Duration
}

func NewProductHandler(store ProductStore, timeout time.Duration) *ProductHandler {
	return &ProductHandler{store: store, timeout: timeout}
}

func NewRouter(h *ProductHandler, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)

	return otelhttp.NewHandler(r, "product-service")
}

// GET /products?category=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.store.ListProducts(ctx, r.URL.Query().Get("category"))
	if err != nil {
		logger.FromContext(r.Context(), zap.L()).Error("failed to list products", zap.Error(err))
		respondJSON(w, r, http.StatusInternalServerError, ErrorResponse{Error: "failed to list products", Code: "internal_error"})
		return
	}

	resp := contracts.ProductsResponse{Products: make([]contracts.Product, 0, len(products))}
	for _, p := range products {
		resp.Products = append(resp.Products, p.ToContract())
	}
	respondJSON(w, r, http.StatusOK, resp)
}

// GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.store.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			respondJSON(w, r, http.StatusNotFound, ErrorResponse{Error: "product not found", Code: "not_found"})
			return
		}
		logger.FromContext(r.Context(), zap.L()).Error("failed to get product", zap.Error(err))
		respondJSON(w, r, http.StatusInternalServerError, ErrorResponse{Error: "failed to get product", Code: "internal_error"})
		return
	}
	respondJSON(w, r, http.StatusOK, product.ToContract())
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context(), zap.L()).Warn("failed to encode response", zap.Error(err))
	}
}
