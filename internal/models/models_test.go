package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusDelivered, true}, // skips allowed
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusConfirmed, false}, // no going back
		{OrderStatusDelivered, OrderStatusDelivered, true}, // retried delivery action
		{OrderStatusDelivered, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusShipped, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusCancelled, false},
		{OrderStatusPending, "unknown", false},
		{"unknown", OrderStatusShipped, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
	} {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("archived"))
}

func TestProductEffectivePrice(t *testing.T) {
	regular := decimal.NewFromInt(30)
	sale := decimal.NewFromInt(24)

	p := Product{Price: regular}
	assert.True(t, p.EffectivePrice().Equal(regular))

	p.SalePrice = &sale
	assert.True(t, p.EffectivePrice().Equal(sale))
}
