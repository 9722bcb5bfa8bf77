package contracts

import "github.com/fjod/fitlyf/pkg/money"

type Product struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Price       money.Amount `json:"price"`
	Image       string       `json:"image"`
	Category    string       `json:"category"`
	Stock       int          `json:"stock"`
	InStock     bool         `json:"inStock"`
}

type ProductsResponse struct {
	Products []Product `json:"products"`
}
