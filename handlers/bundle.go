package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct for route
// registration.
type HandlerBundle struct {
	// Booking endpoints
	CreateBooking gin.HandlerFunc
	GetBooking    gin.HandlerFunc

	// Checkout endpoints
	GetQuote     gin.HandlerFunc
	ApplyCoupon  gin.HandlerFunc
	CancelCoupon gin.HandlerFunc
	OpenSession  gin.HandlerFunc
	PollSession  gin.HandlerFunc

	// Payment provider callbacks
	PaymentWebhook gin.HandlerFunc
}
