package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShippingFor(t *testing.T) {
	assert.Equal(t, 15.0, ShippingFor(0))
	assert.Equal(t, 15.0, ShippingFor(99.99))
	assert.Equal(t, 15.0, ShippingFor(100.0)) // free shipping starts above, not at, the threshold
	assert.Equal(t, 0.0, ShippingFor(100.01))
	assert.Equal(t, 0.0, ShippingFor(500))
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "PED000001", FormatOrderNumber(1))
	assert.Equal(t, "PED000042", FormatOrderNumber(42))
	assert.Equal(t, "PED123456", FormatOrderNumber(123456))
	assert.Equal(t, "PED1234567", FormatOrderNumber(1234567)) // widens past six digits
}

func TestOrderStatusValidation(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPendente, OrderStatusConfirmado, OrderStatusPreparando,
		OrderStatusEnviado, OrderStatusEntregue, OrderStatusCancelado,
	} {
		assert.True(t, IsValidOrderStatus(s), string(s))
	}
	assert.False(t, IsValidOrderStatus("shipped"))
	assert.False(t, IsValidOrderStatus(""))
}

func TestPaymentMethodValidation(t *testing.T) {
	assert.True(t, IsValidPaymentMethod(PaymentMethodPix))
	assert.False(t, IsValidPaymentMethod("credit_card"))
}
