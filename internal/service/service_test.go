package service

import (
	"testing"

	"auroma-service/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"john20", "JOHN20"},
		{"  John20  ", "JOHN20"},
		{"JOHN20", "JOHN20"},
		{"   ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCode(tt.in))
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(assert.AnError))
	assert.False(t, isUniqueViolation(nil))
}

func TestCheckoutResponseMapping(t *testing.T) {
	order := &models.Order{
		ID:              uuid.New(),
		Status:          models.OrderStatusPending,
		Subtotal:        decimal.NewFromInt(100),
		Discount:        decimal.NewFromInt(19),
		StoreCreditUsed: decimal.NewFromInt(5),
		Total:           decimal.NewFromInt(76),
		PointsEarned:    50,
	}

	resp := checkoutResponse(order)

	assert.Equal(t, order.ID.String(), resp.OrderID)
	assert.Equal(t, models.OrderStatusPending, resp.Status)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(76)))
	assert.Equal(t, 50, resp.PointsEarned)
}
