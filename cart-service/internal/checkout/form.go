package checkout

import (
	"strings"

	"github.com/fjod/fitlyf/pkg/contracts"
	"github.com/fjod/fitlyf/pkg/pricing"
)

type FieldError = contracts.FieldError

// Form is everything the shopper has entered so far.
type Form struct {
	Customer       contracts.Customer      `json:"customer"`
	ShippingMethod pricing.ShippingMethod  `json:"shippingMethod"`
	PaymentMethod  contracts.PaymentMethod `json:"paymentMethod"`
	GiftWrap       bool                    `json:"giftWrap"`
	Notes          string                  `json:"notes"`
	TermsAccepted  bool                    `json:"termsAccepted"`
}

func NewForm() Form {
	return Form{
		Customer:       contracts.Customer{Country: contracts.DefaultCountry},
		ShippingMethod: pricing.ShippingStandard,
		PaymentMethod:  contracts.PaymentCard,
	}
}

type ShippingUpdate struct {
	Method   pricing.ShippingMethod `json:"method"`
	GiftWrap bool                   `json:"giftWrap"`
	Notes    string                 `json:"notes"`
}

type PaymentUpdate struct {
	Method        contracts.PaymentMethod `json:"method"`
	TermsAccepted bool                    `json:"termsAccepted"`
}

func validateDetails(f Form) []FieldError {
	return f.Customer.Validate()
}

func validateShipping(f Form) []FieldError {
	if !f.ShippingMethod.Valid() {
		return []FieldError{{Field: "shippingMethod", Message: "Please select a shipping method"}}
	}
	return nil
}

func validatePayment(f Form) []FieldError {
	var errs []FieldError
	if !f.PaymentMethod.Valid() {
		errs = append(errs, FieldError{Field: "paymentMethod", Message: "Please select a payment method"})
	}
	if !f.TermsAccepted {
		errs = append(errs, FieldError{Field: "termsAccepted", Message: "Please accept the terms and conditions"})
	}
	return errs
}

func (f Form) normalized() Form {
	f.Customer = f.Customer.Trimmed()
	f.Notes = strings.TrimSpace(f.Notes)
	return f
}
