package contracts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fjod/fitlyf/pkg/money"
	"github.com/fjod/fitlyf/pkg/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FillsDefaults(t *testing.T) {
	var o Order
	err := json.Unmarshal([]byte(`{
		"orderId": "o-1",
		"items": [{"productId": "p1", "name": "Whey", "price": 1000}],
		"createdAt": "2026-03-01T10:00:00Z"
	}`), &o)
	require.NoError(t, err)

	o.Normalize()

	assert.Equal(t, OrderStatusConfirmed, o.Status)
	assert.Equal(t, 1, o.Items[0].Quantity)
	assert.Equal(t, money.FromMajor(1000), o.Items[0].Price)
	assert.Equal(t, pricing.ShippingStandard, o.Shipping.Method)
	assert.Equal(t, PaymentStatusPending, o.Payment.Status)
	assert.Equal(t, DefaultCountry, o.Customer.Country)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), o.UpdatedAt.UTC())
}

func TestNormalize_KeepsKnownValues(t *testing.T) {
	o := Order{
		Status:  OrderStatusShipped,
		Payment: Payment{Status: PaymentStatusPaid},
	}
	o.Normalize()

	assert.Equal(t, OrderStatusShipped, o.Status)
	assert.Equal(t, PaymentStatusPaid, o.Payment.Status)
	assert.NotNil(t, o.Items)
}

func TestPaymentMethod_Valid(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentCard, PaymentUPI, PaymentNetBanking, PaymentCOD} {
		assert.True(t, m.Valid(), m)
	}
	assert.False(t, PaymentMethod("cheque").Valid())
}
