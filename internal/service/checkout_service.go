package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auroma-service/internal/broker"
	"auroma-service/internal/models"
	"auroma-service/internal/pricing"
	"auroma-service/internal/redisclient"
	"auroma-service/internal/store"
	"auroma-service/internal/util"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

// CheckoutService handles cart pricing and order creation
type CheckoutService struct {
	store          *store.Store
	redis          *redisclient.Client
	codes          *CreatorCodeService
	eventPublisher *broker.EventPublisher
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	st *store.Store,
	redis *redisclient.Client,
	codes *CreatorCodeService,
	eventPublisher *broker.EventPublisher,
	idempotencyTTL time.Duration,
) *CheckoutService {
	return &CheckoutService{
		store:          st,
		redis:          redis,
		codes:          codes,
		eventPublisher: eventPublisher,
		idempotencyTTL: idempotencyTTL,
		logger:         util.GetLogger(),
	}
}

// CheckoutItemRequest is one cart line
type CheckoutItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// CheckoutRequest represents a checkout submission. UserID is empty for
// guest checkout, which then requires GuestEmail.
type CheckoutRequest struct {
	UserID         string                `json:"user_id,omitempty"`
	GuestEmail     string                `json:"guest_email,omitempty"`
	FirstName      string                `json:"first_name" binding:"required"`
	LastName       string                `json:"last_name" binding:"required"`
	Phone          string                `json:"phone" binding:"required"`
	Address        string                `json:"address" binding:"required"`
	Notes          string                `json:"notes,omitempty"`
	Items          []CheckoutItemRequest `json:"items" binding:"required,min=1"`
	CreatorCode    string                `json:"creator_code,omitempty"`
	UseStoreCredit bool                  `json:"use_store_credit,omitempty"`
	IdempotencyKey string                `json:"idempotency_key,omitempty"`
}

// CheckoutResponse is the priced, persisted result of a checkout
type CheckoutResponse struct {
	OrderID         string          `json:"order_id"`
	Status          string          `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	StoreCreditUsed decimal.Decimal `json:"store_credit_used"`
	Total           decimal.Decimal `json:"total"`
	PointsEarned    int             `json:"points_earned"`
}

// CreateOrder prices the cart and persists the order with all its side
// effects in one transaction. Points are computed here but not granted;
// they are realized when the order is later marked delivered.
func (s *CheckoutService) CreateOrder(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.CreateOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	if len(req.Items) == 0 {
		util.OrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrCartEmpty
	}

	if req.IdempotencyKey != "" {
		if resp, ok := s.replayIdempotent(ctx, req.IdempotencyKey, true); ok {
			return resp, nil
		}
	}

	var userID uuid.NullUUID
	var profile *models.Profile
	if req.UserID != "" {
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: user_id", ErrInvalidID)
		}
		profile, err = s.store.GetProfileByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		userID = uuid.NullUUID{UUID: id, Valid: true}
	} else if req.GuestEmail == "" {
		return nil, ErrGuestEmailRequired
	}

	items, subtotal, err := s.buildOrderItems(ctx, req.Items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	var code *models.CreatorCode
	var codeID uuid.NullUUID
	creatorPercent := decimal.Zero
	if req.CreatorCode != "" {
		code, err = s.codes.Validate(ctx, req.CreatorCode)
		if err != nil {
			util.OrdersFailedTotal.WithLabelValues("invalid_code").Inc()
			return nil, err
		}
		codeID = uuid.NullUUID{UUID: code.ID, Valid: true}
		creatorPercent = code.DiscountPercent
	}

	availableCredit := decimal.Zero
	if profile != nil {
		availableCredit = profile.StoreCredit
	}

	quote := pricing.Calculate(pricing.QuoteInput{
		Subtotal:             subtotal,
		IsAccountHolder:      profile != nil,
		CreatorPercent:       creatorPercent,
		UseStoreCredit:       req.UseStoreCredit,
		StoreCreditAvailable: availableCredit,
	})

	order := &models.Order{
		UserID:          userID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Address:         req.Address,
		Subtotal:        quote.Subtotal,
		Discount:        quote.Discount(),
		StoreCreditUsed: quote.StoreCreditUsed,
		Total:           quote.Total,
		PointsEarned:    quote.PointsEarned,
		Status:          models.OrderStatusPending,
		CreatorCodeID:   codeID,
	}
	if profile == nil {
		order.GuestEmail = &req.GuestEmail
	}
	if req.Notes != "" {
		order.Notes = &req.Notes
	}
	if req.IdempotencyKey != "" {
		order.IdempotencyKey = &req.IdempotencyKey
	}

	if err := s.store.CreateOrderTx(ctx, order, items, quote.CreatorDiscount); err != nil {
		if isUniqueViolation(err) && req.IdempotencyKey != "" {
			// Lost the race with a duplicate submission; return the winner.
			if resp, ok := s.replayIdempotent(ctx, req.IdempotencyKey, false); ok {
				return resp, nil
			}
		}
		if errors.Is(err, store.ErrInsufficientCredit) {
			util.OrdersFailedTotal.WithLabelValues("insufficient_credit").Inc()
			return nil, err
		}
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	if quote.StoreCreditUsed.IsPositive() {
		used, _ := quote.StoreCreditUsed.Float64()
		util.StoreCreditUsedTotal.Add(used)
	}
	if code != nil {
		util.CreatorCodesAppliedTotal.Inc()
	}
	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("total", order.Total.String()),
		zap.Int("points_earned", order.PointsEarned))

	if req.IdempotencyKey != "" && s.redis != nil {
		if err := s.redis.SetIdempotencyKey(ctx, req.IdempotencyKey, order.ID.String(), s.idempotencyTTL); err != nil {
			s.logger.Warn("Failed to store idempotency key", zap.Error(err))
		}
	}

	s.publishOrderCreated(ctx, order, items, profile, req.GuestEmail)

	return checkoutResponse(order), nil
}

// replayIdempotent returns the already-created order for a key, if any.
// With trustCache set, a Redis miss skips the DB lookup entirely; the
// unique constraint on idempotency_key backstops expired cache entries,
// and the conflict retry calls back in with trustCache off.
func (s *CheckoutService) replayIdempotent(ctx context.Context, key string, trustCache bool) (*CheckoutResponse, bool) {
	if trustCache && s.redis != nil {
		seen, err := s.redis.CheckIdempotencyKey(ctx, key)
		if err != nil {
			s.logger.Warn("Idempotency cache check failed", zap.Error(err))
		} else if !seen {
			return nil, false
		}
	}

	existing, err := s.store.GetOrderByIdempotencyKey(ctx, key)
	if err != nil || existing == nil {
		return nil, false
	}

	s.logger.Info("Duplicate checkout detected",
		zap.String("idempotency_key", key),
		zap.String("order_id", existing.ID.String()))
	return checkoutResponse(existing), true
}

// buildOrderItems validates the cart against the catalog and captures
// current names and effective prices onto the line items.
func (s *CheckoutService) buildOrderItems(ctx context.Context, reqItems []CheckoutItemRequest) ([]models.OrderItem, decimal.Decimal, error) {
	productIDs := make([]uuid.UUID, len(reqItems))
	for i, item := range reqItems {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("%w: product_id %q", ErrInvalidID, item.ProductID)
		}
		productIDs[i] = id
	}

	products, err := s.store.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to load products: %w", err)
	}

	productMap := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	items := make([]models.OrderItem, 0, len(reqItems))
	subtotal := decimal.Zero
	for i, reqItem := range reqItems {
		product, ok := productMap[productIDs[i]]
		if !ok || !product.InStock {
			return nil, decimal.Zero, ErrProductUnavailable
		}

		price := product.EffectivePrice()
		items = append(items, models.OrderItem{
			ProductID:    uuid.NullUUID{UUID: product.ID, Valid: true},
			ProductName:  product.Name,
			ProductPrice: price,
			Quantity:     reqItem.Quantity,
		})
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(reqItem.Quantity))))
	}

	return items, subtotal, nil
}

func (s *CheckoutService) publishOrderCreated(ctx context.Context, order *models.Order, items []models.OrderItem, profile *models.Profile, guestEmail string) {
	email := guestEmail
	userID := ""
	if profile != nil {
		email = profile.Email
		userID = profile.ID.String()
	}

	eventItems := make([]models.OrderItemData, len(items))
	for i, item := range items {
		eventItems[i] = models.OrderItemData{
			ProductID:    item.ProductID.UUID.String(),
			ProductName:  item.ProductName,
			ProductPrice: item.ProductPrice,
			Quantity:     item.Quantity,
		}
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:      order.ID.String(),
		UserID:       userID,
		Email:        email,
		Total:        order.Total,
		PointsEarned: order.PointsEarned,
		Items:        eventItems,
	}

	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}
}

// GetOrder retrieves an order with its items
func (s *CheckoutService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, []models.OrderItem, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

func checkoutResponse(order *models.Order) *CheckoutResponse {
	return &CheckoutResponse{
		OrderID:         order.ID.String(),
		Status:          order.Status,
		Subtotal:        order.Subtotal,
		Discount:        order.Discount,
		StoreCreditUsed: order.StoreCreditUsed,
		Total:           order.Total,
		PointsEarned:    order.PointsEarned,
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
