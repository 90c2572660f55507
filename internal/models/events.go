package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypePointsAwarded      = "POINTS_AWARDED"
	EventTypePointsRedeemed     = "POINTS_REDEEMED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published after a checkout commits
type OrderCreatedEvent struct {
	BaseEvent
	OrderID      string          `json:"order_id"`
	UserID       string          `json:"user_id,omitempty"`
	Email        string          `json:"email"`
	Total        decimal.Decimal `json:"total"`
	PointsEarned int             `json:"points_earned"`
	Items        []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent published on every admin status transition
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID   string `json:"order_id"`
	Email     string `json:"email"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// PointsAwardedEvent published when delivery realizes an order's points
type PointsAwardedEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Points  int    `json:"points"`
}

// PointsRedeemedEvent published when points are converted to store credit
type PointsRedeemedEvent struct {
	BaseEvent
	UserID string          `json:"user_id"`
	Points int             `json:"points"`
	Credit decimal.Decimal `json:"credit"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Quantity     int             `json:"quantity"`
}
