package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/fitlyf/orders-service/internal/domain"
	"github.com/fjod/fitlyf/orders-service/internal/repository"
	"github.com/fjod/fitlyf/pkg/contracts"
	"github.com/fjod/fitlyf/pkg/pricing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderService struct {
	repo  repository.OrderRepository
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

func NewOrderService(repo repository.OrderRepository, log *zap.Logger) *OrderService {
	return &OrderService{
		repo:  repo,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// PlaceOrder validates the request, re-prices it and stores the order. A
// request whose totals disagree with the server's pricing is rejected.
func (s *OrderService) PlaceOrder(ctx context.Context, req contracts.OrderRequest) (*contracts.Order, error) {
	req.Customer = req.Customer.Trimmed()
	if verr := validate(req); verr != nil {
		return nil, verr
	}

	now := s.now().UTC()
	order := &contracts.Order{
		ID:       s.newID(),
		Customer: req.Customer,
		Items:    req.Items,
		Shipping: contracts.Shipping{
			Method: req.Shipping.Method,
			Charge: req.Totals.Shipping,
		},
		Payment: contracts.Payment{
			Method: req.Payment.Method,
			Amount: req.Totals.Total,
			Status: domain.InitialPaymentStatus(req.Payment.Method),
		},
		Totals:    req.Totals,
		Notes:     strings.TrimSpace(req.Notes),
		GiftWrap:  req.GiftWrap,
		Status:    contracts.OrderStatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if eta, err := pricing.EstimatedDelivery(order.Shipping.Method, now); err == nil {
		order.Shipping.EstimatedDelivery = &eta
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID),
		zap.Int("items", len(order.Items)),
		zap.Stringer("total", order.Totals.Total),
		zap.String("payment_method", string(order.Payment.Method)))
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*contracts.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	order.Normalize()
	return order, nil
}

// ApplyStatusUpdate moves an order along its lifecycle.
func (s *OrderService) ApplyStatusUpdate(ctx context.Context, update domain.StatusUpdate) error {
	if update.OrderID == "" {
		return errors.New("status update without order_id")
	}
	if update.Status != "" && !update.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", repository.ErrInvalidTransition, update.Status)
	}
	if update.PaymentStatus != "" && !update.PaymentStatus.Valid() {
		return fmt.Errorf("%w: unknown payment status %q", repository.ErrInvalidTransition, update.PaymentStatus)
	}
	order, err := s.repo.ApplyStatusUpdate(ctx, update)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	s.log.Info("order status updated",
		zap.String("order_id", order.ID),
		zap.String("status", string(order.Status)),
		zap.String("tracking_number", order.Shipping.TrackingNumber))
	return nil
}

func validate(req contracts.OrderRequest) *ValidationError {
	verr := &ValidationError{}

	for _, fe := range req.Customer.Validate() {
		verr.add(fe.Message)
	}

	if len(req.Items) == 0 {
		verr.add("Order must contain at least one item")
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			verr.add(fmt.Sprintf("Item %d has no product id", i+1))
		}
		if item.Quantity < 1 {
			verr.add(fmt.Sprintf("Item %s must have a quantity of at least 1", itemLabel(item, i)))
		}
		if item.Price < 0 {
			verr.add(fmt.Sprintf("Item %s has a negative price", itemLabel(item, i)))
		}
	}

	if !req.Shipping.Method.Valid() {
		verr.add("Please select a shipping method")
	}
	if !req.Payment.Method.Valid() {
		verr.add("Please select a payment method")
	}

	if verr.empty() {
		expected, err := pricing.Compute(req.Items, req.Shipping.Method, req.GiftWrap)
		if err != nil || expected != req.Totals {
			verr.add(fmt.Sprintf("Order total does not match: expected %s", expected.Total))
		}
	}

	if verr.empty() {
		return nil
	}
	return verr
}

func itemLabel(item contracts.OrderItem, i int) string {
	if item.Name != "" {
		return item.Name
	}
	return fmt.Sprintf("%d", i+1)
}
