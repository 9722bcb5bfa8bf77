package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/fitlyf/orders-service/internal/service"
	"github.com/fjod/fitlyf/pkg/contracts"
	"github.com/fjod/fitlyf/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, req contracts.OrderRequest) (*contracts.Order, error)
	GetOrder(ctx context.Context, id string) (*contracts.Order, error)
}

type OrdersHandler struct {
	svc          OrderService
	timeout      time.Duration
	maxBodyBytes int64
}

func NewOrdersHandler(svc OrderService, timeout time.Duration, maxBodyBytes int64) *OrdersHandler {
	return &OrdersHandler{svc: svc, timeout: timeout, maxBodyBytes: maxBodyBytes}
}

func NewRouter(h *OrdersHandler, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders/{order_id}", h.GetOrder)

	return otelhttp.NewHandler(r, "orders-service")
}

// POST /orders
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req contracts.OrderRequest
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, r, http.StatusBadRequest, contracts.Response{Message: "Invalid request body"})
		return
	}

	order, err := h.svc.PlaceOrder(ctx, req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, r, http.StatusUnprocessableEntity, contracts.Response{
				Message: "Order validation failed",
				Errors:  verr.Messages(),
			})
			return
		}
		logger.FromContext(r.Context(), zap.L()).Error("failed to place order", zap.Error(err))
		respondJSON(w, r, http.StatusInternalServerError, contracts.Response{Message: "Failed to place order"})
		return
	}

	respondJSON(w, r, http.StatusCreated, contracts.Response{Success: true, OrderID: order.ID})
}

// GET /orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.svc.GetOrder(ctx, chi.URLParam(r, "order_id"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondJSON(w, r, http.StatusNotFound, contracts.Response{Message: "order not found"})
			return
		}
		logger.FromContext(r.Context(), zap.L()).Error("failed to get order", zap.Error(err))
		respondJSON(w, r, http.StatusInternalServerError, contracts.Response{Message: "Failed to load order"})
		return
	}
	respondJSON(w, r, http.StatusOK, order)
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context(), zap.L()).Warn("failed to encode response", zap.Error(err))
	}
}
