package domain

import (
	"time"

	"github.com/fjod/fitlyf/pkg/contracts"
	"github.com/fjod/fitlyf/pkg/money"
)

type Product struct {
	ID          string
	Name        string
	Description string
	Price       money.Amount
	ImageURL    string
	Category    string
	Stock       int
	CreatedAt   time.Time
}

func (p *Product) ToContract() contracts.Product {
	return contracts.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.ImageURL,
		Category:    p.Category,
		Stock:       p.Stock,
		InStock:     p.Stock > 0,
	}
}
