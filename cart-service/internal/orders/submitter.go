// Package orders places orders with the Order API and tracks them afterwards.
package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/fitlyf/cart-service/internal/cart"
	"github.com/fjod/fitlyf/cart-service/internal/checkout"
	"github.com/fjod/fitlyf/pkg/contracts"
	"github.com/fjod/fitlyf/pkg/pricing"
	"go.uber.org/zap"
)

type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

var stateNames = [...]string{"idle", "submitting", "succeeded", "failed"}

func (s State) String() string {
	if s < StateIdle || s > StateFailed {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req contracts.OrderRequest) (string, error)
}

// Submitter turns the cart and a completed checkout form into an order. Only
// one submission per session runs at a time.
type Submitter struct {
	mu      sync.Mutex
	state   State
	lastErr error

	cart      *cart.Store
	api       OrderPlacer
	snapshots *Snapshots
	log       *zap.Logger
	now       func() time.Time
}

func NewSubmitter(c *cart.Store, api OrderPlacer, snapshots *Snapshots, log *zap.Logger) *Submitter {
	return &Submitter{
		cart:      c,
		api:       api,
		snapshots: snapshots,
		log:       log,
		now:       time.Now,
	}
}

func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError is the error of the most recent failed submission.
func (s *Submitter) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Submit places the order. On success the snapshot is stored, the ordered
// units leave the cart and the new order id is returned. On failure the cart is untouched and
// the error is a *SubmitError; Submit may be called again.
func (s *Submitter) Submit(ctx context.Context, form checkout.Form) (string, error) {
	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return "", ErrSubmissionInProgress
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	orderID, err := s.submit(ctx, form)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateFailed
		s.lastErr = err
		return "", err
	}
	s.state = StateSucceeded
	s.lastErr = nil
	return orderID, nil
}

func (s *Submitter) submit(ctx context.Context, form checkout.Form) (string, error) {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	req, err := BuildRequest(lines, form)
	if err != nil {
		return "", err
	}

	orderID, err := s.api.PlaceOrder(ctx, req)
	if err != nil {
		s.log.Warn("order placement failed", zap.Error(err), zap.Int("items", len(req.Items)))
		return "", newSubmitError(err)
	}

	now := s.now()
	snapshot := &contracts.Order{
		ID:        orderID,
		Customer:  req.Customer,
		Items:     req.Items,
		Shipping:  req.Shipping,
		Payment:   req.Payment,
		Totals:    req.Totals,
		Notes:     req.Notes,
		GiftWrap:  req.GiftWrap,
		Status:    contracts.OrderStatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if eta, err := pricing.EstimatedDelivery(req.Shipping.Method, now); err == nil {
		snapshot.Shipping.EstimatedDelivery = &eta
	}
	snapshot.Normalize()

	s.snapshots.SaveAsLast(ctx, snapshot)
	s.cart.RemoveOrdered(ctx, req.Items)
	s.log.Info("order placed", zap.String("order_id", orderID), zap.Stringer("total", req.Totals.Total))
	return orderID, nil
}

// BuildRequest packages cart lines and the checkout form into an Order API
// request. Totals come from pricing.Compute.
func BuildRequest[L interface{ OrderItem() contracts.OrderItem }](lines []L, form checkout.Form) (contracts.OrderRequest, error) {
	items := make([]contracts.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, l.OrderItem())
	}

	totals, err := pricing.Compute(items, form.ShippingMethod, form.GiftWrap)
	if err != nil {
		return contracts.OrderRequest{}, newSubmitError(err)
	}

	return contracts.OrderRequest{
		Customer: form.Customer.Trimmed(),
		Items:    items,
		Shipping: contracts.Shipping{
			Method: form.ShippingMethod,
			Charge: totals.Shipping,
		},
		Payment: contracts.Payment{
			Method: form.PaymentMethod,
			Amount: totals.Total,
		},
		Totals:   totals,
		Notes:    form.Notes,
		GiftWrap: form.GiftWrap,
	}, nil
}
