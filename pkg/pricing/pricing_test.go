package pricing

import (
	"testing"
	"time"

	"github.com/fjod/fitlyf/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	price    money.Amount
	quantity int
}

func (l line) LineTotal() money.Amount {
	return LineTotal(l.price, l.quantity)
}

func TestCompute_ExampleCart(t *testing.T) {
	lines := []line{
		{price: money.FromMajor(1000), quantity: 2},
		{price: money.FromMajor(500), quantity: 1},
	}

	totals, err := Compute(lines, ShippingStandard, false)
	require.NoError(t, err)

	assert.Equal(t, money.FromMajor(2500), totals.Subtotal)
	assert.Equal(t, money.Amount(0), totals.Shipping)
	assert.Equal(t, money.FromMajor(450), totals.Tax)
	assert.Equal(t, money.Amount(0), totals.GiftWrap)
	assert.Equal(t, money.FromMajor(2950), totals.Total)
}

func TestCompute_BelowThresholdPaysStandardShipping(t *testing.T) {
	lines := []line{{price: money.FromMajor(1000), quantity: 1}, {price: money.FromMajor(500), quantity: 1}}

	totals, err := Compute(lines, ShippingStandard, false)
	require.NoError(t, err)

	assert.Equal(t, money.FromMajor(1500), totals.Subtotal)
	assert.Equal(t, money.FromMajor(99), totals.Shipping)
	assert.Equal(t, money.FromMajor(270), totals.Tax)
	assert.Equal(t, money.FromMajor(1869), totals.Total)
}

func TestShippingCharge_Table(t *testing.T) {
	tests := []struct {
		name     string
		method   ShippingMethod
		subtotal money.Amount
		want     money.Amount
	}{
		{"standard below threshold", ShippingStandard, money.FromMajor(500), money.FromMajor(99)},
		{"standard at threshold", ShippingStandard, money.FromMajor(1999), money.FromMajor(99)},
		{"standard just above threshold", ShippingStandard, money.FromMajor(1999) + 1, 0},
		{"standard 2100", ShippingStandard, money.FromMajor(2100), 0},
		{"express small", ShippingExpress, money.FromMajor(10), money.FromMajor(199)},
		{"express large", ShippingExpress, money.FromMajor(10000), money.FromMajor(199)},
		{"overnight small", ShippingOvernight, 0, money.FromMajor(399)},
		{"overnight large", ShippingOvernight, money.FromMajor(10000), money.FromMajor(399)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShippingCharge(tt.method, tt.subtotal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShippingCharge_UnknownMethod(t *testing.T) {
	_, err := ShippingCharge("drone", money.FromMajor(10))
	assert.ErrorIs(t, err, ErrUnknownShippingMethod)
	assert.False(t, ShippingMethod("drone").Valid())
}

func TestCompute_GiftWrapAddsFlatFee(t *testing.T) {
	lines := []line{{price: money.FromMajor(300), quantity: 3}}

	without, err := Compute(lines, ShippingExpress, false)
	require.NoError(t, err)
	with, err := Compute(lines, ShippingExpress, true)
	require.NoError(t, err)

	assert.Equal(t, GiftWrapCharge, with.Total-without.Total)
	assert.Equal(t, money.FromMajor(49), with.GiftWrap)
}

func TestCompute_TotalMonotonicInSubtotal(t *testing.T) {
	for _, method := range Methods() {
		var prev money.Amount
		for price := int64(0); price <= 4000; price += 50 {
			totals, err := Compute([]line{{price: money.FromMajor(price), quantity: 1}}, method, false)
			require.NoError(t, err)
			// standard shipping drops to zero past the threshold, which is the one
			// place the total can dip; the dip is bounded by the shipping fee.
			if method == ShippingStandard && totals.Subtotal > FreeShippingThreshold && prev > 0 {
				assert.GreaterOrEqual(t, int64(totals.Total)+int64(money.FromMajor(99)), int64(prev))
			} else {
				assert.GreaterOrEqual(t, int64(totals.Total), int64(prev))
			}
			prev = totals.Total
		}
	}
}

func TestSubtotal_ZeroQuantityCountsAsOne(t *testing.T) {
	got := Subtotal([]line{{price: money.FromMajor(250)}, {price: 0, quantity: 4}})
	assert.Equal(t, money.FromMajor(250), got)
}

func TestEstimatedDelivery(t *testing.T) {
	from := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	std, err := EstimatedDelivery(ShippingStandard, from)
	require.NoError(t, err)
	exp, err := EstimatedDelivery(ShippingExpress, from)
	require.NoError(t, err)
	ovn, err := EstimatedDelivery(ShippingOvernight, from)
	require.NoError(t, err)

	assert.Equal(t, from.AddDate(0, 0, 7), std)
	assert.Equal(t, from.AddDate(0, 0, 3), exp)
	assert.Equal(t, from.AddDate(0, 0, 1), ovn)

	_, err = EstimatedDelivery("pigeon", from)
	assert.ErrorIs(t, err, ErrUnknownShippingMethod)
}
