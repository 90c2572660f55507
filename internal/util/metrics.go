package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created at checkout",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed checkout attempts",
	}, []string{"reason"})

	OrdersDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_delivered_total",
		Help: "Total number of orders marked delivered",
	})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	PointsAwardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_points_awarded_total",
		Help: "Total loyalty points realized on delivery",
	})

	PointsRedeemedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_points_redeemed_total",
		Help: "Total loyalty points converted into store credit",
	})

	RedemptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loyalty_redemptions_total",
		Help: "Total redemption attempts by outcome",
	}, []string{"outcome"})

	StoreCreditUsedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_credit_used_total",
		Help: "Total store credit (currency) spent at checkout",
	})

	CreatorCodesAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "creator_codes_applied_total",
		Help: "Total orders that applied a creator code",
	})

	CreatorCodeLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creator_code_lookups_total",
		Help: "Creator code validations by result",
	}, []string{"result"})

	NewsletterSubscribesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsletter_subscribes_total",
		Help: "Total newsletter signups",
	})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_latency_seconds",
		Help:    "Latency of the checkout flow",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
