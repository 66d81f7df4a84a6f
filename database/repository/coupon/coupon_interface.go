package couponRepo

import (
	"errors"

	"stayhub/models"
)

// ErrNotFound is returned when no coupon matches the query.
var ErrNotFound = errors.New("coupon not found")

// ErrExhausted is returned when a guarded increment would push used_count
// past max_total_uses.
var ErrExhausted = errors.New("coupon usage limit reached")

// ErrDuplicateApplication is returned when a concurrent apply already
// inserted an application for the same booking.
var ErrDuplicateApplication = errors.New("coupon application already exists for booking")

// CouponRepository defines data access for coupons and their applications.
// UsedCount only moves through the guarded increment so the cap holds under
// concurrent applies across bookings, without any in-process lock.
type CouponRepository interface {
	// GetByCode retrieves a coupon by its unique code.
	GetByCode(code string) (*models.Coupon, error)
	// IncrementUsage atomically increments used_count iff the cap still
	// holds (compare-and-increment). Returns ErrExhausted when it does not.
	IncrementUsage(couponID string) error
	// DecrementUsage atomically decrements used_count, never below zero.
	DecrementUsage(couponID string) error

	// GetApplication returns the active application for a booking, if any.
	GetApplication(bookingID string) (*models.CouponApplication, error)
	// InsertApplication inserts a new application. The unique index on
	// booking_id makes a concurrent second apply fail with
	// ErrDuplicateApplication.
	InsertApplication(app *models.CouponApplication) error
	// DeleteApplication removes the application for a booking and returns
	// it, or (nil, nil) when none existed.
	DeleteApplication(bookingID string) (*models.CouponApplication, error)
	// CountCustomerUses counts active applications of a coupon by one customer.
	CountCustomerUses(couponID, customerID string) (int64, error)
}
