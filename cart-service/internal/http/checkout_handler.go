package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/fitlyf/cart-service/internal/checkout"
	"github.com/fjod/fitlyf/cart-service/internal/orders"
	"github.com/fjod/fitlyf/cart-service/internal/session"
	"github.com/fjod/fitlyf/pkg/contracts"
	"github.com/fjod/fitlyf/pkg/pricing"
)

type CheckoutHandler struct {
	timeout      time.Duration
	maxBodyBytes int64
}

func NewCheckoutHandler(timeout time.Duration, maxBodyBytes int64) *CheckoutHandler {
	return &CheckoutHandler{timeout: timeout, maxBodyBytes: maxBodyBytes}
}

type ShippingOptionDTO struct {
	Method   pricing.ShippingMethod `json:"method"`
	Charge   string                 `json:"charge"`
	LeadDays int                    `json:"leadDays"`
}

type CheckoutResponseDTO struct {
	Step       checkout.Step       `json:"step"`
	StepNumber int                 `json:"stepNumber"`
	Form       checkout.Form       `json:"form"`
	Totals     *pricing.Totals     `json:"totals,omitempty"`
	Shipping   []ShippingOptionDTO `json:"shippingOptions"`
	Submission orders.State        `json:"submission"`
	Count      int                 `json:"count"`
}

type PlaceOrderResponseDTO struct {
	OrderID string `json:"order_id"`
}

func checkoutResponse(s *session.Session) CheckoutResponseDTO {
	form := s.Checkout.Form()
	lines := s.Cart.Lines()
	resp := CheckoutResponseDTO{
		Step:       s.Checkout.Step(),
		Form:       form,
		Submission: s.Submitter.State(),
		Count:      s.Cart.Count(),
	}
	resp.StepNumber = resp.Step.Number()
	if totals, err := pricing.Compute(lines, form.ShippingMethod, form.GiftWrap); err == nil {
		resp.Totals = &totals
	}
	subtotal := pricing.Subtotal(lines)
	for _, m := range pricing.Methods() {
		charge, _ := pricing.ShippingCharge(m, subtotal)
		lead, _ := pricing.LeadTime(m)
		resp.Shipping = append(resp.Shipping, ShippingOptionDTO{
			Method:   m,
			Charge:   charge.String(),
			LeadDays: int(lead.Hours() / 24),
		})
	}
	return resp
}

func respondValidation(w http.ResponseWriter, r *http.Request, verr *checkout.ValidationError) {
	respondJSON(w, r, http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "please correct the highlighted fields",
		Code:    "validation_failed",
		Details: verr.Step.String(),
		Fields:  verr.Messages(),
	})
}

// GET /api/v1/checkout
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, "no_session", "missing session")
		return
	}
	respondJSON(w, r, http.StatusOK, checkoutResponse(s))
}

// PUT /api/v1/checkout/details
func (h *CheckoutHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	var req contracts.Customer
	if !decodeJSON(w, r, h.maxBodyBytes, &req) {
		return
	}
	if req.Country == "" {
		req.Country = contracts.DefaultCountry
	}
	s.Checkout.SetCustomer(req)
	respondJSON(w, r, http.StatusOK, checkoutResponse(s))
}

// PUT /api/v1/checkout/shipping
func (h *CheckoutHandler) UpdateShipping(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	var req checkout.ShippingUpdate
	if !decodeJSON(w, r, h.maxBodyBytes, &req) {
		return
	}
	s.Checkout.SetShipping(req)
	respondJSON(w, r, http.StatusOK, checkoutResponse(s))
}

// PUT /api/v1/checkout/payment
func (h *CheckoutHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	var req checkout.PaymentUpdate
	if !decodeJSON(w, r, h.maxBodyBytes, &req) {
		return
	}
	s.Checkout.SetPayment(req)
	respondJSON(w, r, http.StatusOK, checkoutResponse(s))
}

// POST /api/v1/checkout/next
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	if _, err := s.Checkout.Next(); err != nil {
		var verr *checkout.ValidationError
		if errors.As(err, &verr) {
			respondValidation(w, r, verr)
			return
		}
		respondError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	respondJSON(w, r, http.StatusOK, checkoutResponse(s))
}

// POST /api/v1/checkout/previous
func (h *CheckoutHandler) Previous(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, "no_session", "missing session")
		return
	}
	s.Checkout.Previous()
	respondJSON(w, r, http.StatusOK, checkoutResponse(s))
}

// POST /api/v1/checkout/place
func (h *CheckoutHandler) Place(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	orderID, err := s.Checkout.PlaceOrder(ctx, s.Submitter)
	if err != nil {
		var verr *checkout.ValidationError
		var serr *orders.SubmitError
		switch {
		case errors.As(err, &verr):
			respondValidation(w, r, verr)
		case errors.Is(err, checkout.ErrNotReadyToPlace):
			respondError(w, r, http.StatusConflict, "not_ready", err.Error())
		case errors.Is(err, orders.ErrSubmissionInProgress):
			respondError(w, r, http.StatusConflict, "submission_in_progress", err.Error())
		case errors.Is(err, orders.ErrEmptyCart):
			respondError(w, r, http.StatusConflict, "empty_cart", err.Error())
		case errors.As(err, &serr):
			respondError(w, r, http.StatusBadGateway, "order_failed", serr.Message)
		default:
			respondError(w, r, http.StatusInternalServerError, "internal_error", "failed to place order")
		}
		return
	}

	respondJSON(w, r, http.StatusCreated, PlaceOrderResponseDTO{OrderID: orderID})
}
