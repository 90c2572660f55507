package store

import (
	"context"
	"database/sql"
	"fmt"

	"auroma-service/internal/models"
	"auroma-service/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RedeemTierTx converts points into store credit. The balance swap and both
// ledger entries commit together; the conditional update makes the points
// check atomic, so two concurrent redemptions cannot both spend the same
// points.
func (s *Store) RedeemTierTx(ctx context.Context, userID uuid.UUID, tier pricing.RedemptionTier) (newPoints int, newCredit decimal.Decimal, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, decimal.Zero, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`UPDATE profiles SET points = points - $1, store_credit = store_credit + $2, updated_at = NOW()
		 WHERE id = $3 AND points >= $1
		 RETURNING points, store_credit`,
		tier.Points, tier.Credit, userID,
	).Scan(&newPoints, &newCredit)
	if err == sql.ErrNoRows {
		// No row matched: either the profile is missing or its balance is
		// below the tier cost. Tell them apart for the caller.
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1)", userID); err != nil {
			return 0, decimal.Zero, err
		}
		if !exists {
			return 0, decimal.Zero, ErrNotFound
		}
		return 0, decimal.Zero, ErrInsufficientPoints
	}
	if err != nil {
		return 0, decimal.Zero, err
	}

	pointsDesc := fmt.Sprintf("Redeemed for $%s store credit", tier.Credit.String())
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO points_transactions (user_id, points, type, description)
		 VALUES ($1, $2, $3, $4)`,
		userID, tier.Points, models.PointsTypeRedeemed, pointsDesc); err != nil {
		return 0, decimal.Zero, err
	}

	creditDesc := fmt.Sprintf("Redeemed %d points", tier.Points)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO store_credit_transactions (user_id, amount, type, points_used, description)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, tier.Credit, models.CreditTypeRedeemed, tier.Points, creditDesc); err != nil {
		return 0, decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return 0, decimal.Zero, err
	}
	return newPoints, newCredit, nil
}

// AwardDeliveryPointsTx marks an order delivered and realizes its
// precomputed points at most once. The existing-ledger-row check keyed by
// (order_id, type=earned) makes repeated delivered transitions no-ops for
// the award; running it inside the same transaction as the status update
// keeps the balance and the ledger consistent.
func (s *Store) AwardDeliveryPointsTx(ctx context.Context, order *models.Order) (awarded bool, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		models.OrderStatusDelivered, order.ID); err != nil {
		return false, err
	}

	if order.PointsEarned > 0 && order.UserID.Valid {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM points_transactions WHERE order_id = $1 AND type = $2)",
			order.ID, models.PointsTypeEarned); err != nil {
			return false, err
		}

		if !exists {
			desc := "Awarded after delivery for order #" + shortID(order.ID)
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO points_transactions (user_id, order_id, points, type, description)
				 VALUES ($1, $2, $3, $4, $5)`,
				order.UserID.UUID, order.ID, order.PointsEarned, models.PointsTypeEarned, desc); err != nil {
				return false, err
			}

			if _, err := tx.ExecContext(ctx,
				"UPDATE profiles SET points = points + $1, updated_at = NOW() WHERE id = $2",
				order.PointsEarned, order.UserID.UUID); err != nil {
				return false, err
			}

			awarded = true
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return awarded, nil
}

// HasEarnedPointsForOrder reports whether an earned ledger entry already
// exists for the order.
func (s *Store) HasEarnedPointsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM points_transactions WHERE order_id = $1 AND type = $2)",
		orderID, models.PointsTypeEarned)
	return exists, err
}

// GetPointsHistory retrieves a user's points ledger, newest first
func (s *Store) GetPointsHistory(ctx context.Context, userID uuid.UUID) ([]models.PointsTransaction, error) {
	var txs []models.PointsTransaction
	err := s.db.SelectContext(ctx, &txs,
		"SELECT * FROM points_transactions WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return txs, err
}

// GetCreditHistory retrieves a user's store-credit ledger, newest first
func (s *Store) GetCreditHistory(ctx context.Context, userID uuid.UUID) ([]models.StoreCreditTransaction, error) {
	var txs []models.StoreCreditTransaction
	err := s.db.SelectContext(ctx, &txs,
		"SELECT * FROM store_credit_transactions WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return txs, err
}
