package checkout

import (
	"go.uber.org/zap"

	"stayhub/models"
	bookingSvc "stayhub/services/booking"
	"stayhub/services/coupon"
	"stayhub/services/payment"
	"stayhub/services/pricing"
)

// Orchestrator is the single entry point the checkout handlers talk to. It
// sequences the pricing, coupon and payment services; all concurrency
// decisions stay inside those services and their storage guards.
type Orchestrator interface {
	GetQuote(req models.QuoteRequest) (*models.PriceQuote, error)
	ApplyCoupon(bookingID, callerID, couponCode string) (*models.Booking, *models.CouponApplication, error)
	CancelCoupon(bookingID, callerID string) (*models.Booking, error)
	OpenSession(bookingID, callerID string) (*models.PaymentSession, error)
	PollSession(bookingID, callerID string) (*models.PaymentSession, error)
}

// DefaultOrchestrator implements Orchestrator.
type DefaultOrchestrator struct {
	Pricing  pricing.PricingEngine
	Bookings bookingSvc.BookingService
	Coupons  coupon.ApplicationService
	Sessions payment.SessionManager
	Logger   *zap.Logger
}

// GetQuote prices a prospective stay without touching any booking state.
func (o *DefaultOrchestrator) GetQuote(req models.QuoteRequest) (*models.PriceQuote, error) {
	return o.Pricing.Quote(req)
}

// ApplyCoupon attaches the coupon and returns the repriced booking so the
// client sees the new total in the same response.
func (o *DefaultOrchestrator) ApplyCoupon(bookingID, callerID, couponCode string) (*models.Booking, *models.CouponApplication, error) {
	app, err := o.Coupons.Apply(bookingID, callerID, couponCode)
	if err != nil {
		return nil, nil, err
	}

	booking, err := o.Bookings.Get(bookingID, callerID)
	if err != nil {
		return nil, nil, err
	}
	o.Logger.Info("coupon applied",
		zap.String("bookingId", bookingID),
		zap.String("couponCode", couponCode),
		zap.Float64("discount", app.DiscountAmount),
		zap.Float64("newTotal", booking.TotalAmount))
	return booking, app, nil
}

// CancelCoupon removes any applied coupon and returns the restored booking.
// Idempotent; cancelling when nothing is applied just re-reads the booking.
func (o *DefaultOrchestrator) CancelCoupon(bookingID, callerID string) (*models.Booking, error) {
	if err := o.Coupons.Cancel(bookingID, callerID); err != nil {
		return nil, err
	}
	return o.Bookings.Get(bookingID, callerID)
}

// OpenSession finalizes the booking's current total into a payment session.
func (o *DefaultOrchestrator) OpenSession(bookingID, callerID string) (*models.PaymentSession, error) {
	return o.Sessions.Open(bookingID, callerID)
}

// PollSession reports the session's current state, expiring it lazily.
func (o *DefaultOrchestrator) PollSession(bookingID, callerID string) (*models.PaymentSession, error) {
	return o.Sessions.GetStatus(bookingID, callerID)
}
