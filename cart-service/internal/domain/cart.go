package domain

import (
	"time"

	"github.com/fjod/fitlyf/pkg/contracts"
	"github.com/fjod/fitlyf/pkg/money"
	"github.com/fjod/fitlyf/pkg/pricing"
)

// CartLine is one product in the cart. Name, price, image and category are
// captured when the product is first added.
type CartLine struct {
	ProductID string       `json:"productId"`
	Name      string       `json:"name"`
	Price     money.Amount `json:"price"`
	Image     string       `json:"image,omitempty"`
	Category  string       `json:"category,omitempty"`
	Quantity  int          `json:"quantity"`
	AddedAt   time.Time    `json:"addedAt"`
}

func (l CartLine) LineTotal() money.Amount {
	return pricing.LineTotal(l.Price, l.Quantity)
}

// NewLine starts a line of one unit of p.
func NewLine(p contracts.Product, now time.Time) CartLine {
	return CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Category:  p.Category,
		Quantity:  1,
		AddedAt:   now,
	}
}

func (l CartLine) OrderItem() contracts.OrderItem {
	qty := l.Quantity
	if qty == 0 {
		qty = 1
	}
	return contracts.OrderItem{
		ProductID: l.ProductID,
		Name:      l.Name,
		Price:     l.Price,
		Quantity:  qty,
		Image:     l.Image,
	}
}
