package service

import "errors"

var (
	ErrGuestEmailRequired = errors.New("guest checkout requires an email")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("some products are unavailable")
	ErrInvalidCreatorCode = errors.New("invalid or expired creator code")
	ErrOrderNotFound      = errors.New("order not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrInvalidStatus      = errors.New("unknown order status")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUnknownTier        = errors.New("unknown redemption tier")
	ErrInvalidID          = errors.New("invalid identifier")
)
