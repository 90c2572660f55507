package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"auroma-service/internal/service"
	"auroma-service/internal/store"
	"auroma-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	checkoutService *service.CheckoutService
	loyaltyService  *service.LoyaltyService
	catalogService  *service.CatalogService
	codeService     *service.CreatorCodeService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	checkoutService *service.CheckoutService,
	loyaltyService *service.LoyaltyService,
	catalogService *service.CatalogService,
	codeService *service.CreatorCodeService,
) *Handler {
	return &Handler{
		checkoutService: checkoutService,
		loyaltyService:  loyaltyService,
		catalogService:  catalogService,
		codeService:     codeService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders", h.createOrder)
		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/orders/:id/status", h.setOrderStatus)

		v1.POST("/loyalty/redeem", h.redeemPoints)
		v1.GET("/loyalty/tiers", h.getTiers)

		v1.GET("/creator-codes/validate", h.validateCreatorCode)

		v1.GET("/products", h.listProducts)
		v1.GET("/products/:slug", h.getProduct)

		v1.GET("/profiles/:id", h.getProfile)
		v1.GET("/profiles/:id/points", h.getPointsHistory)
		v1.GET("/profiles/:id/credit", h.getCreditHistory)

		v1.POST("/newsletter/subscribe", h.subscribeNewsletter)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createOrder handles checkout submissions
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CheckoutRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	resp, err := h.checkoutService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create order")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, items, err := h.checkoutService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err, "Failed to get order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"items": items,
	})
}

type statusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

// setOrderStatus handles admin status transitions
func (h *Handler) setOrderStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.loyaltyService.SetOrderStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		respondError(c, err, "Failed to update order status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

type redeemRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Points int    `json:"points" binding:"required"`
}

// redeemPoints handles points-to-credit redemption
func (h *Handler) redeemPoints(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	resp, err := h.loyaltyService.RedeemTier(c.Request.Context(), userID, req.Points)
	if err != nil {
		respondError(c, err, "Failed to redeem points")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getTiers returns the redemption table
func (h *Handler) getTiers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tiers": h.loyaltyService.Tiers()})
}

// validateCreatorCode checks a code without applying it
func (h *Handler) validateCreatorCode(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code parameter"})
		return
	}

	cc, err := h.codeService.Validate(c.Request.Context(), code)
	if err != nil {
		respondError(c, err, "Failed to validate code")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":             cc.Code,
		"discount_percent": cc.DiscountPercent,
		"creator_name":     cc.CreatorName,
	})
}

// listProducts returns the catalog
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct returns a single product by slug
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Failed to get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// getProfile returns a profile with its balances
func (h *Handler) getProfile(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile ID"})
		return
	}

	profile, err := h.loyaltyService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to get profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// getPointsHistory returns a user's points ledger
func (h *Handler) getPointsHistory(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile ID"})
		return
	}

	history, err := h.loyaltyService.GetPointsHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to get points history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": history})
}

// getCreditHistory returns a user's store-credit ledger
func (h *Handler) getCreditHistory(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile ID"})
		return
	}

	history, err := h.loyaltyService.GetCreditHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to get credit history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": history})
}

type subscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// subscribeNewsletter handles newsletter signups
func (h *Handler) subscribeNewsletter(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.catalogService.Subscribe(c.Request.Context(), req.Email); err != nil {
		respondError(c, err, "Failed to subscribe")
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscribed": true})
}

// respondError maps service errors to HTTP status codes
func respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, service.ErrCartEmpty),
		errors.Is(err, service.ErrGuestEmailRequired),
		errors.Is(err, service.ErrInvalidID),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrUnknownTier):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrInvalidCreatorCode),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, store.ErrInsufficientPoints),
		errors.Is(err, store.ErrInsufficientCredit):
		status = http.StatusConflict
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{
			"error":   fallback,
			"details": err.Error(),
		})
		return
	}

	c.JSON(status, gin.H{"error": message})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
