package domain

import (
	"time"

	"github.com/fjod/fitlyf/pkg/contracts"
)

const (
	EventTypeOrderPlaced = "order.placed"
	TopicOrderEvents     = "order-events"
	TopicOrderStatus     = "order-status"
)

var statusRank = map[contracts.OrderStatus]int{
	contracts.OrderStatusConfirmed:  0,
	contracts.OrderStatusProcessing: 1,
	contracts.OrderStatusShipped:    2,
	contracts.OrderStatusDelivered:  3,
}

// CanTransitionTo reports whether an order may move from one status to
// another. Statuses only move forward; repeating the current status is
// allowed so tracking details can be updated.
func CanTransitionTo(from, to contracts.OrderStatus) bool {
	f, ok := statusRank[from]
	if !ok {
		return false
	}
	t, ok := statusRank[to]
	if !ok {
		return false
	}
	return t >= f
}

// InitialPaymentStatus is pending for cash on delivery and paid otherwise.
func InitialPaymentStatus(m contracts.PaymentMethod) contracts.PaymentStatus {
	if m == contracts.PaymentCOD {
		return contracts.PaymentStatusPending
	}
	return contracts.PaymentStatusPaid
}

// StatusUpdate is the body of an order-status message.
type StatusUpdate struct {
	OrderID        string                  `json:"order_id"`
	Status         contracts.OrderStatus   `json:"status"`
	TrackingNumber string                  `json:"tracking_number,omitempty"`
	Courier        string                  `json:"courier,omitempty"`
	PaymentStatus  contracts.PaymentStatus `json:"payment_status,omitempty"`
}

// Apply copies the update onto o. Empty fields leave o unchanged.
func (u StatusUpdate) Apply(o *contracts.Order, now time.Time) {
	if u.Status != "" {
		o.Status = u.Status
	}
	if u.TrackingNumber != "" {
		o.Shipping.TrackingNumber = u.TrackingNumber
	}
	if u.Courier != "" {
		o.Shipping.Courier = u.Courier
	}
	if u.PaymentStatus != "" {
		o.Payment.Status = u.PaymentStatus
	}
	o.UpdatedAt = now
}

// OrderPlacedEvent is the payload of an order.placed outbox event.
type OrderPlacedEvent struct {
	OrderID       string                  `json:"order_id"`
	Email         string                  `json:"email"`
	Items         []contracts.OrderItem   `json:"items"`
	Total         string                  `json:"total"`
	PaymentMethod contracts.PaymentMethod `json:"payment_method"`
	PlacedAt      time.Time               `json:"placed_at"`
}

func NewOrderPlacedEvent(o *contracts.Order) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:       o.ID,
		Email:         o.Customer.Email,
		Items:         o.Items,
		Total:         o.Totals.Total.String(),
		PaymentMethod: o.Payment.Method,
		PlacedAt:      o.CreatedAt,
	}
}
