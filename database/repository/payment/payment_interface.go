package paymentRepo

import (
	"errors"
	"time"

	"stayhub/models"
)

// ErrNotFound is returned when no payment session matches the query.
var ErrNotFound = errors.New("payment session not found")

// ErrDuplicatePending is returned when a pending session already exists for
// the booking (the partial unique index rejected a second one).
var ErrDuplicatePending = errors.New("pending payment session already exists")

// ErrConflict is returned when a guarded state transition found the session
// no longer in the expected state.
var ErrConflict = errors.New("payment session state conflict")

// PaymentSessionRepository persists payment sessions. State only ever moves
// through guarded transitions, so repeated calls stay idempotent and racers
// observe exactly one winner.
type PaymentSessionRepository interface {
	// Create inserts a new pending session. At most one pending session can
	// exist per booking.
	Create(session *models.PaymentSession) error
	// GetLatest returns the most recently created session for a booking.
	GetLatest(bookingID string) (*models.PaymentSession, error)
	// GetPending returns the pending session for a booking, if any.
	GetPending(bookingID string) (*models.PaymentSession, error)
	// GetByReference returns the session carrying the given payer reference.
	GetByReference(reference string) (*models.PaymentSession, error)
	// Expire moves the booking's pending session to expired iff its TTL has
	// lapsed at the given instant.
	Expire(bookingID string, now time.Time) error
	// MarkPaid moves the session with the given reference from pending to paid.
	MarkPaid(reference string) error
	// Cancel moves the booking's pending session to cancelled.
	Cancel(bookingID string) error
	// ListExpiredPending returns pending sessions whose TTL lapsed before now.
	ListExpiredPending(now time.Time, limit int64) ([]models.PaymentSession, error)

	// SaveReconciliation records a late or mismatched confirmation.
	SaveReconciliation(rec *models.Reconciliation) error
}
