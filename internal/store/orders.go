package store

import (
	"context"
	"database/sql"

	"auroma-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderTx persists a priced order and its side effects as one
// transaction: the order row, its items, the store-credit deduction with
// its ledger entry, the profile contact refresh, and the creator-code usage
// bookkeeping. Nothing is visible unless every step succeeds.
func (s *Store) CreateOrderTx(ctx context.Context, order *models.Order, items []models.OrderItem, creatorDiscount decimal.Decimal) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (user_id, guest_email, first_name, last_name, phone, address, notes,
			subtotal, discount, store_credit_used, total, points_earned, status, creator_code_id, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`

	if err := tx.QueryRowContext(ctx, query,
		order.UserID, order.GuestEmail, order.FirstName, order.LastName, order.Phone,
		order.Address, order.Notes, order.Subtotal, order.Discount, order.StoreCreditUsed,
		order.Total, order.PointsEarned, order.Status, order.CreatorCodeID, order.IdempotencyKey,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return err
	}

	for i := range items {
		items[i].OrderID = order.ID
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, product_price, quantity)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			items[i].OrderID, items[i].ProductID, items[i].ProductName,
			items[i].ProductPrice, items[i].Quantity,
		).Scan(&items[i].ID, &items[i].CreatedAt); err != nil {
			return err
		}
	}

	if order.UserID.Valid {
		if order.StoreCreditUsed.IsPositive() {
			res, err := tx.ExecContext(ctx,
				`UPDATE profiles SET store_credit = store_credit - $1, updated_at = NOW()
				 WHERE id = $2 AND store_credit >= $1`,
				order.StoreCreditUsed, order.UserID.UUID)
			if err != nil {
				return err
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrInsufficientCredit
			}

			desc := "Used on order #" + shortID(order.ID)
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO store_credit_transactions (user_id, order_id, amount, type, description)
				 VALUES ($1, $2, $3, $4, $5)`,
				order.UserID.UUID, order.ID, order.StoreCreditUsed, models.CreditTypeUsed, desc); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE profiles SET phone = $1, address = $2, updated_at = NOW() WHERE id = $3",
			order.Phone, order.Address, order.UserID.UUID); err != nil {
			return err
		}
	}

	if order.CreatorCodeID.Valid {
		// Server-side increment; a read-then-write here undercounts when
		// the same code is used concurrently.
		if _, err := tx.ExecContext(ctx,
			"UPDATE creator_codes SET usage_count = usage_count + 1 WHERE id = $1",
			order.CreatorCodeID.UUID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO creator_code_usage (creator_code_id, order_id, discount_amount)
			 VALUES ($1, $2, $3)`,
			order.CreatorCodeID.UUID, order.ID, creatorDiscount); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByIdempotencyKey retrieves an order by idempotency key, or nil
// when no order used the key.
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE idempotency_key = $1", key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves orders for a user
func (s *Store) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1", orderID)
	return items, err
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	return err
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
