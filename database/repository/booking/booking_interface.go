package bookingRepo

import (
	"errors"

	"stayhub/models"
)

// ErrNotFound is returned when no booking matches the query.
var ErrNotFound = errors.New("booking not found")

// ErrStaleVersion is returned when a compare-and-swap update lost a race.
var ErrStaleVersion = errors.New("booking version is stale")

// BookingRepository defines methods for booking data access. Mutations that
// participate in the per-booking ordering contract are conditional updates,
// never read-then-write.
type BookingRepository interface {
	// Create inserts a new booking record.
	Create(booking *models.Booking) error
	// GetByID retrieves a booking by its unique ID.
	GetByID(id string) (*models.Booking, error)
	// GetByCode retrieves a booking by its human-shareable code.
	GetByCode(code string) (*models.Booking, error)
	// UpdateSnapshot replaces the pricing snapshot iff the stored version
	// still matches the given one. Returns ErrStaleVersion on a lost race.
	UpdateSnapshot(id string, version int64, snap models.PricingSnapshot) error
	// Delete removes a booking record.
	Delete(id string) error
	// SetPaymentPending moves payment_status unpaid -> pending.
	SetPaymentPending(id string) error
	// RevertPaymentPending moves payment_status pending -> unpaid and the
	// booking back to draft, undoing SetPaymentPending when no session
	// came to exist.
	RevertPaymentPending(id string) error
	// MarkPaid moves payment_status pending -> paid and status -> confirmed.
	MarkPaid(id string) error
	// MarkPaymentExpired moves payment_status pending -> expired.
	MarkPaymentExpired(id string) error
	// CancelPayment moves payment_status pending -> unpaid and cancels the booking.
	CancelPayment(id string) error
}
