package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auroma-service/internal/broker"
	"auroma-service/internal/models"
	"auroma-service/internal/pricing"
	"auroma-service/internal/store"
	"auroma-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LoyaltyService owns the order status workflow and the points program:
// delivery-triggered awarding and tier redemption.
type LoyaltyService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewLoyaltyService creates a new loyalty service
func NewLoyaltyService(st *store.Store, eventPublisher *broker.EventPublisher) *LoyaltyService {
	return &LoyaltyService{
		store:          st,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// SetOrderStatus applies an admin-driven status transition. Moving into
// delivered realizes the order's precomputed points exactly once; the
// ledger-entry check inside the store transaction guards against repeated
// admin clicks and retries.
func (s *LoyaltyService) SetOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "LoyaltyService.SetOrderStatus")
	defer span.End()

	if !models.IsValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(order.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, newStatus)
	}

	oldStatus := order.Status

	if newStatus == models.OrderStatusDelivered {
		awarded, err := s.store.AwardDeliveryPointsTx(ctx, order)
		if err != nil {
			return nil, fmt.Errorf("failed to deliver order: %w", err)
		}

		if oldStatus != models.OrderStatusDelivered {
			util.OrdersDeliveredTotal.Inc()
		}
		if awarded {
			util.PointsAwardedTotal.Add(float64(order.PointsEarned))
			s.logger.Info("Points awarded on delivery",
				zap.String("order_id", order.ID.String()),
				zap.Int("points", order.PointsEarned))
			s.publishPointsAwarded(ctx, order)
		}
	} else {
		if err := s.store.UpdateOrderStatus(ctx, orderID, newStatus); err != nil {
			return nil, fmt.Errorf("failed to update order status: %w", err)
		}
		if newStatus == models.OrderStatusCancelled {
			util.OrdersCancelledTotal.Inc()
		}
	}

	order.Status = newStatus
	if oldStatus != newStatus {
		s.logger.Info("Order status changed",
			zap.String("order_id", order.ID.String()),
			zap.String("from", oldStatus),
			zap.String("to", newStatus))

		s.publishStatusChanged(ctx, order, oldStatus)
	}

	return order, nil
}

// RedeemResponse carries the balances after a redemption
type RedeemResponse struct {
	Points      int             `json:"points"`
	StoreCredit decimal.Decimal `json:"store_credit"`
}

// RedeemTier converts points into store credit at a fixed tier. The
// balance check, both balance changes, and both ledger entries are one
// atomic store operation.
func (s *LoyaltyService) RedeemTier(ctx context.Context, userID uuid.UUID, tierPoints int) (*RedeemResponse, error) {
	ctx, span := util.StartSpan(ctx, "LoyaltyService.RedeemTier")
	defer span.End()

	tier, ok := pricing.TierByPoints(tierPoints)
	if !ok {
		return nil, fmt.Errorf("%w: %d points", ErrUnknownTier, tierPoints)
	}

	newPoints, newCredit, err := s.store.RedeemTierTx(ctx, userID, tier)
	if errors.Is(err, store.ErrInsufficientPoints) {
		util.RedemptionsTotal.WithLabelValues("insufficient_points").Inc()
		return nil, err
	}
	if errors.Is(err, store.ErrNotFound) {
		util.RedemptionsTotal.WithLabelValues("unknown_profile").Inc()
		return nil, ErrProfileNotFound
	}
	if err != nil {
		util.RedemptionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to redeem points: %w", err)
	}

	util.RedemptionsTotal.WithLabelValues("success").Inc()
	util.PointsRedeemedTotal.Add(float64(tier.Points))
	s.logger.Info("Points redeemed",
		zap.String("user_id", userID.String()),
		zap.Int("points", tier.Points),
		zap.String("credit", tier.Credit.String()))

	event := &models.PointsRedeemedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePointsRedeemed,
			Timestamp: time.Now(),
		},
		UserID: userID.String(),
		Points: tier.Points,
		Credit: tier.Credit,
	}
	if err := s.eventPublisher.PublishPointsRedeemed(ctx, event); err != nil {
		s.logger.Error("Failed to publish PointsRedeemed event", zap.Error(err))
	}

	return &RedeemResponse{Points: newPoints, StoreCredit: newCredit}, nil
}

// Tiers returns the redemption table for display
func (s *LoyaltyService) Tiers() []pricing.RedemptionTier {
	return pricing.Tiers()
}

// GetProfile retrieves a profile with its balances
func (s *LoyaltyService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.store.GetProfileByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	return profile, err
}

// GetPointsHistory retrieves a user's points ledger
func (s *LoyaltyService) GetPointsHistory(ctx context.Context, userID uuid.UUID) ([]models.PointsTransaction, error) {
	return s.store.GetPointsHistory(ctx, userID)
}

// GetCreditHistory retrieves a user's store-credit ledger
func (s *LoyaltyService) GetCreditHistory(ctx context.Context, userID uuid.UUID) ([]models.StoreCreditTransaction, error) {
	return s.store.GetCreditHistory(ctx, userID)
}

func (s *LoyaltyService) publishStatusChanged(ctx context.Context, order *models.Order, oldStatus string) {
	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:   order.ID.String(),
		Email:     s.orderEmail(ctx, order),
		OldStatus: oldStatus,
		NewStatus: order.Status,
	}

	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}
}

func (s *LoyaltyService) publishPointsAwarded(ctx context.Context, order *models.Order) {
	event := &models.PointsAwardedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePointsAwarded,
			Timestamp: time.Now(),
		},
		OrderID: order.ID.String(),
		UserID:  order.UserID.UUID.String(),
		Email:   s.orderEmail(ctx, order),
		Points:  order.PointsEarned,
	}

	if err := s.eventPublisher.PublishPointsAwarded(ctx, event); err != nil {
		s.logger.Error("Failed to publish PointsAwarded event", zap.Error(err))
	}
}

// orderEmail resolves the notification address: the guest email on guest
// orders, otherwise the owner profile's email.
func (s *LoyaltyService) orderEmail(ctx context.Context, order *models.Order) string {
	if order.GuestEmail != nil {
		return *order.GuestEmail
	}
	if !order.UserID.Valid {
		return ""
	}

	profile, err := s.store.GetProfileByID(ctx, order.UserID.UUID)
	if err != nil {
		s.logger.Warn("Failed to resolve order email",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return ""
	}
	return profile.Email
}
