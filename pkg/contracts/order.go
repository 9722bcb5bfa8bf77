// Package contracts holds the JSON shapes exchanged with the Order API and the
// Product Catalog API.
package contracts

import (
	"time"

	"github.com/fjod/fitlyf/pkg/money"
	"github.com/fjod/fitlyf/pkg/pricing"
)

type OrderStatus string

const (
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard       PaymentMethod = "card"
	PaymentUPI        PaymentMethod = "upi"
	PaymentNetBanking PaymentMethod = "netbanking"
	PaymentCOD        PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentUPI, PaymentNetBanking, PaymentCOD:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

type OrderItem struct {
	ProductID string       `json:"productId"`
	Name      string       `json:"name"`
	Price     money.Amount `json:"price"`
	Quantity  int          `json:"quantity"`
	Image     string       `json:"image,omitempty"`
}

func (i OrderItem) LineTotal() money.Amount {
	return pricing.LineTotal(i.Price, i.Quantity)
}

type Shipping struct {
	Method            pricing.ShippingMethod `json:"method"`
	Charge            money.Amount           `json:"charge"`
	EstimatedDelivery *time.Time             `json:"estimatedDelivery,omitempty"`
	TrackingNumber    string                 `json:"trackingNumber,omitempty"`
	Courier           string                 `json:"courier,omitempty"`
}

type Payment struct {
	Method PaymentMethod `json:"method"`
	Amount money.Amount  `json:"amount"`
	Status PaymentStatus `json:"status,omitempty"`
}

// OrderRequest is the body of POST /orders.
type OrderRequest struct {
	Customer Customer       `json:"customer"`
	Items    []OrderItem    `json:"items"`
	Shipping Shipping       `json:"shipping"`
	Payment  Payment        `json:"payment"`
	Totals   pricing.Totals `json:"totals"`
	Notes    string         `json:"notes,omitempty"`
	GiftWrap bool           `json:"giftWrap"`
}

// Order is the snapshot returned by GET /orders/{id} and kept locally after checkout.
type Order struct {
	ID        string         `json:"orderId"`
	Customer  Customer       `json:"customer"`
	Items     []OrderItem    `json:"items"`
	Shipping  Shipping       `json:"shipping"`
	Payment   Payment        `json:"payment"`
	Totals    pricing.Totals `json:"totals"`
	Notes     string         `json:"notes,omitempty"`
	GiftWrap  bool           `json:"giftWrap"`
	Status    OrderStatus    `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Normalize fills the defaults a partially populated response may omit. It is
// applied once, where responses and snapshots are decoded.
func (o *Order) Normalize() {
	if o.Items == nil {
		o.Items = []OrderItem{}
	}
	for i := range o.Items {
		if o.Items[i].Quantity == 0 {
			o.Items[i].Quantity = 1
		}
	}
	if !o.Status.Valid() {
		o.Status = OrderStatusConfirmed
	}
	if o.Shipping.Method == "" {
		o.Shipping.Method = pricing.ShippingStandard
	}
	if o.Payment.Status == "" {
		o.Payment.Status = PaymentStatusPending
	}
	if o.Customer.Country == "" {
		o.Customer.Country = DefaultCountry
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
}

// Response is the envelope the Order API uses for POST results and errors.
type Response struct {
	Success bool     `json:"success"`
	OrderID string   `json:"orderId,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}
