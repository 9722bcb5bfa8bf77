package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/fitlyf/cart-service/internal/orders"
	"github.com/fjod/fitlyf/pkg/contracts"
	"github.com/fjod/fitlyf/pkg/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrdersHandler struct {
	timeout      time.Duration
	pollInterval time.Duration
}

func NewOrdersHandler(timeout, pollInterval time.Duration) *OrdersHandler {
	return &OrdersHandler{
		timeout:      timeout,
		pollInterval: pollInterval,
	}
}

// GET /api/v1/orders/last
func (h *OrdersHandler) LastOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	order, err := s.Snapshots.Last(ctx)
	if err != nil {
		respondError(w, r, http.StatusNotFound, "order_not_found", "no order has been placed yet")
		return
	}
	respondJSON(w, r, http.StatusOK, order)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, r, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}

	order, err := s.Tracker.Lookup(ctx, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			respondError(w, r, http.StatusNotFound, "order_not_found", "order not found")
			return
		}
		handleUpstreamError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, order)
}

// GET /api/v1/orders/{order_id}/watch streams the order as server-sent
// events, one per poll, until the client goes away or the order is delivered.
func (h *OrdersHandler) WatchOrder(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, r, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}

	lookupCtx, cancel := context.WithTimeout(r.Context(), h.timeout)
	_, err := s.Tracker.Lookup(lookupCtx, orderID)
	cancel()
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			respondError(w, r, http.StatusNotFound, "order_not_found", "order not found")
			return
		}
		handleUpstreamError(w, r, err)
		return
	}

	log := logger.FromContext(r.Context(), zap.L()).With(zap.String("order_id", orderID))
	rc := http.NewResponseController(w)
	// the stream outlives the server's write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	err = s.Tracker.Poll(r.Context(), orderID, h.pollInterval, func(o *contracts.Order) {
		if err := writeEvent(w, "status", o); err != nil {
			log.Warn("failed to write order event", zap.Error(err))
			return
		}
		if err := rc.Flush(); err != nil {
			log.Warn("failed to flush order event", zap.Error(err))
		}
	})
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		_ = writeEvent(w, "not_found", map[string]string{"orderId": orderID})
		_ = rc.Flush()
	case err != nil && !errors.Is(err, context.Canceled):
		log.Warn("order watch ended", zap.Error(err))
	}
}

func writeEvent(w http.ResponseWriter, event string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b)
	return err
}
