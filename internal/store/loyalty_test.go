package store

import (
	"context"
	"database/sql"
	"testing"

	"auroma-service/internal/models"
	"auroma-service/internal/pricing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockStore creates a Store backed by a mocked SQL connection
func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	return NewStoreWithDB(sqlx.NewDb(mockDB, "sqlmock")), mock, mockDB
}

func TestRedeemTierTx(t *testing.T) {
	t.Run("debits points, credits balance, writes both ledgers atomically", func(t *testing.T) {
		s, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		userID := uuid.New()
		tier, ok := pricing.TierByPoints(150)
		require.True(t, ok)

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE profiles SET points = points - \$1, store_credit = store_credit \+ \$2`).
			WithArgs(150, sqlmock.AnyArg(), userID).
			WillReturnRows(sqlmock.NewRows([]string{"points", "store_credit"}).AddRow(50, "10"))
		mock.ExpectExec(`INSERT INTO points_transactions`).
			WithArgs(userID, 150, models.PointsTypeRedeemed, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO store_credit_transactions`).
			WithArgs(userID, sqlmock.AnyArg(), models.CreditTypeRedeemed, 150, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		newPoints, newCredit, err := s.RedeemTierTx(context.Background(), userID, tier)

		require.NoError(t, err)
		assert.Equal(t, 50, newPoints)
		assert.True(t, newCredit.Equal(decimal.NewFromInt(10)), "credit = %s", newCredit)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects when the balance is below the tier cost", func(t *testing.T) {
		s, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		userID := uuid.New()
		tier, _ := pricing.TierByPoints(250)

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE profiles SET points = points - \$1`).
			WithArgs(250, sqlmock.AnyArg(), userID).
			WillReturnRows(sqlmock.NewRows([]string{"points", "store_credit"}))
		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM profiles`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, _, err := s.RedeemTierTx(context.Background(), userID, tier)

		assert.ErrorIs(t, err, ErrInsufficientPoints)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a missing profile as not found", func(t *testing.T) {
		s, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		userID := uuid.New()
		tier, _ := pricing.TierByPoints(100)

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE profiles SET points = points - \$1`).
			WithArgs(100, sqlmock.AnyArg(), userID).
			WillReturnRows(sqlmock.NewRows([]string{"points", "store_credit"}))
		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM profiles`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()

		_, _, err := s.RedeemTierTx(context.Background(), userID, tier)

		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAwardDeliveryPointsTx(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	order := &models.Order{
		ID:           orderID,
		UserID:       uuid.NullUUID{UUID: userID, Valid: true},
		PointsEarned: 20,
		Status:       models.OrderStatusShipped,
	}

	t.Run("first delivery awards points and records the ledger entry", func(t *testing.T) {
		s, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE orders SET status = \$1`).
			WithArgs(models.OrderStatusDelivered, orderID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM points_transactions`).
			WithArgs(orderID, models.PointsTypeEarned).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(`INSERT INTO points_transactions`).
			WithArgs(userID, orderID, 20, models.PointsTypeEarned, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE profiles SET points = points \+ \$1`).
			WithArgs(20, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		awarded, err := s.AwardDeliveryPointsTx(context.Background(), order)

		require.NoError(t, err)
		assert.True(t, awarded)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("repeat delivery is a no-op for the award", func(t *testing.T) {
		s, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE orders SET status = \$1`).
			WithArgs(models.OrderStatusDelivered, orderID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM points_transactions`).
			WithArgs(orderID, models.PointsTypeEarned).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectCommit()

		awarded, err := s.AwardDeliveryPointsTx(context.Background(), order)

		require.NoError(t, err)
		assert.False(t, awarded)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("guest orders only update the status", func(t *testing.T) {
		s, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		guestOrder := &models.Order{ID: orderID, PointsEarned: 20}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE orders SET status = \$1`).
			WithArgs(models.OrderStatusDelivered, orderID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		awarded, err := s.AwardDeliveryPointsTx(context.Background(), guestOrder)

		require.NoError(t, err)
		assert.False(t, awarded)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
