// Package pricing computes order totals. Both the storefront and the order API
// call these functions so a displayed total and a charged total cannot diverge.
package pricing

import (
	"errors"
	"time"

	"github.com/fjod/fitlyf/pkg/money"
)

type ShippingMethod string

const (
	ShippingStandard  ShippingMethod = "standard"
	ShippingExpress   ShippingMethod = "express"
	ShippingOvernight ShippingMethod = "overnight"
)

const (
	TaxPercent = 18
)

var (
	FreeShippingThreshold = money.FromMajor(1999)
	GiftWrapCharge        = money.FromMajor(49)
)

var ErrUnknownShippingMethod = errors.New("unknown shipping method")

type shippingRate struct {
	fee      money.Amount
	freeOver bool
	leadDays int
}

var shippingRates = map[ShippingMethod]shippingRate{
	ShippingStandard:  {fee: money.FromMajor(99), freeOver: true, leadDays: 7},
	ShippingExpress:   {fee: money.FromMajor(199), leadDays: 3},
	ShippingOvernight: {fee: money.FromMajor(399), leadDays: 1},
}

// Methods lists the shipping methods in display order.
func Methods() []ShippingMethod {
	return []ShippingMethod{ShippingStandard, ShippingExpress, ShippingOvernight}
}

func (m ShippingMethod) Valid() bool {
	_, ok := shippingRates[m]
	return ok
}

func (m ShippingMethod) String() string {
	return string(m)
}

// Line is anything with a price and a quantity.
type Line interface {
	LineTotal() money.Amount
}

// LineTotal is price × quantity. A zero quantity counts as one unit, matching
// how the storefront has always treated lines saved without a quantity.
func LineTotal(price money.Amount, quantity int) money.Amount {
	if quantity == 0 {
		quantity = 1
	}
	return price.Times(quantity)
}

func Subtotal[L Line](lines []L) money.Amount {
	var total money.Amount
	for _, l := range lines {
		total += l.LineTotal()
	}
	return total
}

// ShippingCharge returns the fee for a method. Standard shipping is free once the
// subtotal exceeds FreeShippingThreshold.
func ShippingCharge(method ShippingMethod, subtotal money.Amount) (money.Amount, error) {
	rate, ok := shippingRates[method]
	if !ok {
		return 0, ErrUnknownShippingMethod
	}
	if rate.freeOver && subtotal > FreeShippingThreshold {
		return 0, nil
	}
	return rate.fee, nil
}

func Tax(subtotal money.Amount) money.Amount {
	return subtotal.Percent(TaxPercent)
}

func GiftWrapFee(selected bool) money.Amount {
	if selected {
		return GiftWrapCharge
	}
	return 0
}

// Totals is the price breakdown of an order.
type Totals struct {
	Subtotal money.Amount `json:"subtotal"`
	Shipping money.Amount `json:"shipping"`
	Tax      money.Amount `json:"tax"`
	GiftWrap money.Amount `json:"giftWrap"`
	Total    money.Amount `json:"total"`
}

func Compute[L Line](lines []L, method ShippingMethod, giftWrap bool) (Totals, error) {
	subtotal := Subtotal(lines)
	shipping, err := ShippingCharge(method, subtotal)
	if err != nil {
		return Totals{}, err
	}
	t := Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      Tax(subtotal),
		GiftWrap: GiftWrapFee(giftWrap),
	}
	t.Total = t.Subtotal + t.Shipping + t.Tax + t.GiftWrap
	return t, nil
}

// LeadTime is how long a method takes to deliver.
func LeadTime(method ShippingMethod) (time.Duration, error) {
	rate, ok := shippingRates[method]
	if !ok {
		return 0, ErrUnknownShippingMethod
	}
	return time.Duration(rate.leadDays) * 24 * time.Hour, nil
}

func EstimatedDelivery(method ShippingMethod, from time.Time) (time.Time, error) {
	lead, err := LeadTime(method)
	if err != nil {
		return time.Time{}, err
	}
	return from.Add(lead), nil
}
