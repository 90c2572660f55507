package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog. Prices are captured onto
// order items at checkout time, so later edits never touch past orders.
type Product struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	Name          string           `db:"name" json:"name"`
	Slug          string           `db:"slug" json:"slug"`
	Description   *string          `db:"description" json:"description,omitempty"`
	Price         decimal.Decimal  `db:"price" json:"price"`
	SalePrice     *decimal.Decimal `db:"sale_price" json:"sale_price,omitempty"`
	InStock       bool             `db:"in_stock" json:"in_stock"`
	StockQuantity int              `db:"stock_quantity" json:"stock_quantity"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// EffectivePrice returns the sale price when one is set.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// Profile holds a registered customer's loyalty balances. The points and
// store_credit columns are running totals; ledger rows are appended alongside
// every balance change but are never summed to derive the balance.
type Profile struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Email       string          `db:"email" json:"email"`
	FirstName   *string         `db:"first_name" json:"first_name,omitempty"`
	LastName    *string         `db:"last_name" json:"last_name,omitempty"`
	Phone       *string         `db:"phone" json:"phone,omitempty"`
	Address     *string         `db:"address" json:"address,omitempty"`
	Points      int             `db:"points" json:"points"`
	StoreCredit decimal.Decimal `db:"store_credit" json:"store_credit"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Order represents one purchase transaction. UserID is null for guest
// checkout, in which case GuestEmail is set. PointsEarned is computed once
// at creation from the final charged total and only realized on delivery.
type Order struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	UserID          uuid.NullUUID   `db:"user_id" json:"user_id,omitempty"`
	GuestEmail      *string         `db:"guest_email" json:"guest_email,omitempty"`
	FirstName       string          `db:"first_name" json:"first_name"`
	LastName        string          `db:"last_name" json:"last_name"`
	Phone           string          `db:"phone" json:"phone"`
	Address         string          `db:"address" json:"address"`
	Notes           *string         `db:"notes" json:"notes,omitempty"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	Discount        decimal.Decimal `db:"discount" json:"discount"`
	StoreCreditUsed decimal.Decimal `db:"store_credit_used" json:"store_credit_used"`
	Total           decimal.Decimal `db:"total" json:"total"`
	PointsEarned    int             `db:"points_earned" json:"points_earned"`
	Status          string          `db:"status" json:"status"`
	CreatorCodeID   uuid.NullUUID   `db:"creator_code_id" json:"creator_code_id,omitempty"`
	IdempotencyKey  *string         `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// OrderItem is a line item with the product name and price captured at
// order time.
type OrderItem struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	OrderID      uuid.UUID       `db:"order_id" json:"order_id"`
	ProductID    uuid.NullUUID   `db:"product_id" json:"product_id,omitempty"`
	ProductName  string          `db:"product_name" json:"product_name"`
	ProductPrice decimal.Decimal `db:"product_price" json:"product_price"`
	Quantity     int             `db:"quantity" json:"quantity"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// CreatorCode is a percentage discount code tied to an affiliate creator.
// Codes are stored uppercase and matched case-insensitively.
type CreatorCode struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Code            string          `db:"code" json:"code"`
	CreatorName     string          `db:"creator_name" json:"creator_name"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	IsActive        bool            `db:"is_active" json:"is_active"`
	UsageCount      int             `db:"usage_count" json:"usage_count"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// CreatorCodeUsage records, per order, the currency amount a code actually
// granted, for creator payout reporting.
type CreatorCodeUsage struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	CreatorCodeID  uuid.UUID       `db:"creator_code_id" json:"creator_code_id"`
	OrderID        uuid.UUID       `db:"order_id" json:"order_id"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// PointsTransaction is an append-only ledger entry for a points balance
// change. Points holds the magnitude and is always positive; Type says
// which direction the balance moved.
type PointsTransaction struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	UserID      uuid.UUID     `db:"user_id" json:"user_id"`
	OrderID     uuid.NullUUID `db:"order_id" json:"order_id,omitempty"`
	Points      int           `db:"points" json:"points"`
	Type        string        `db:"type" json:"type"`
	Description *string       `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// StoreCreditTransaction is the ledger entry mirroring PointsTransaction
// for store-credit balance changes.
type StoreCreditTransaction struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	OrderID     uuid.NullUUID   `db:"order_id" json:"order_id,omitempty"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Type        string          `db:"type" json:"type"`
	PointsUsed  *int            `db:"points_used" json:"points_used,omitempty"`
	Description *string         `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// EmailSubscriber is a newsletter signup.
type EmailSubscriber struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	SubscribedAt time.Time `db:"subscribed_at" json:"subscribed_at"`
}

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Points transaction types
const (
	PointsTypeEarned   = "earned"
	PointsTypeRedeemed = "redeemed"
)

// Store credit transaction types
const (
	CreditTypeRedeemed = "redeemed"
	CreditTypeUsed     = "used"
)

var statusRank = map[string]int{
	OrderStatusPending:    0,
	OrderStatusConfirmed:  1,
	OrderStatusProcessing: 2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

// IsValidStatus reports whether s is a known order status.
func IsValidStatus(s string) bool {
	_, ok := statusRank[s]
	return ok || s == OrderStatusCancelled
}

// CanTransition reports whether an order may move from one status to
// another. Fulfillment statuses only move forward; cancelled is reachable
// from any non-cancelled state and is the only terminal status. A repeated
// delivered transition is allowed so a retried delivery action succeeds;
// the award itself is guarded at the ledger.
func CanTransition(from, to string) bool {
	if from == OrderStatusCancelled {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	if from == OrderStatusDelivered {
		return to == OrderStatusDelivered
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}
