package payment

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "stayhub/database/repository/booking"
	paymentRepo "stayhub/database/repository/payment"
	"stayhub/models"
	bookingSvc "stayhub/services/booking"
	"stayhub/services/notification"
	"stayhub/utils"
)

// Typed payment errors.
var (
	ErrSessionNotFound = utils.NewServiceError("paymentSessionNotFound",
		http.StatusNotFound, "no payment session exists for this booking")
	ErrAlreadyPaid = utils.NewServiceError("paymentAlreadyCompleted",
		http.StatusConflict, "booking has already been paid")
	ErrNotPayable = utils.NewServiceError("bookingNotPayable",
		http.StatusConflict, "booking is not in a payable state")
	ErrReconciliationRequired = utils.NewServiceError("reconciliationRequired",
		http.StatusConflict, "confirmation flagged for manual reconciliation")
)

// Gateway issues payer-facing references for a session.
type Gateway interface {
	IssueReference(bookingID, bookingCode string, amount float64) (*models.PaymentReference, error)
}

// Inventory is the slice of the inventory service the manager needs.
type Inventory interface {
	ReleaseAsync(bookingID string)
}

// SessionManager drives the payment session state machine:
//
//	(none) -> pending -> paid
//	              \----> cancelled
//	              \----> expired (now > expiresAt, observed lazily)
type SessionManager interface {
	Open(bookingID, callerID string) (*models.PaymentSession, error)
	GetStatus(bookingID, callerID string) (*models.PaymentSession, error)
	Confirm(reference string, amount float64) error
	Cancel(bookingID, callerID string) error
	ExpireDue(limit int64) int
}

// DefaultSessionManager implements SessionManager. All transitions happen as
// guarded storage updates, so concurrent polls and confirms observe exactly
// one winner per transition.
type DefaultSessionManager struct {
	Bookings  bookingRepo.BookingRepository
	Sessions  paymentRepo.PaymentSessionRepository
	Gateway   Gateway
	Inventory Inventory
	Notifier  notification.Service
	Logger    *zap.Logger
	TTL       time.Duration
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func (m *DefaultSessionManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Open creates a time-boxed session against the booking's current total.
// Idempotent: while a live pending session exists it is returned unchanged,
// so a retried finalize never produces a duplicate.
func (m *DefaultSessionManager) Open(bookingID, callerID string) (*models.PaymentSession, error) {
	booking, err := m.loadOwned(bookingID, callerID)
	if err != nil {
		return nil, err
	}

	if existing, err := m.Sessions.GetPending(bookingID); err == nil {
		if !existing.Expired(m.now()) {
			return existing, nil
		}
		m.expire(booking, existing.BookingID)
		return nil, ErrNotPayable
	} else if err != paymentRepo.ErrNotFound {
		return nil, fmt.Errorf("failed to look up pending session: %w", err)
	}

	switch booking.PaymentStatus {
	case models.PaymentStatusUnpaid:
	case models.PaymentStatusPaid:
		return nil, ErrAlreadyPaid
	default:
		return nil, ErrNotPayable
	}

	// Claim the booking before freezing the amount: the guarded transition
	// bumps the version, so any in-flight coupon change loses its
	// compare-and-swap and reprices against the pending state (rejected).
	if err := m.Bookings.SetPaymentPending(bookingID); err != nil {
		if err == bookingRepo.ErrStaleVersion {
			// A concurrent open won; serve its session.
			if existing, pendErr := m.Sessions.GetPending(bookingID); pendErr == nil {
				return existing, nil
			}
			return nil, ErrNotPayable
		}
		return nil, fmt.Errorf("failed to move booking to pending payment: %w", err)
	}

	booking, err = m.Bookings.GetByID(bookingID)
	if err != nil {
		m.restoreUnpaid(bookingID)
		return nil, fmt.Errorf("failed to re-fetch booking %s: %w", bookingID, err)
	}

	ref, err := m.Gateway.IssueReference(booking.ID, booking.Code, booking.TotalAmount)
	if err != nil {
		// Undo the pending claim so a transient gateway outage never leaves
		// the booking stuck without a session to pay or cancel.
		m.restoreUnpaid(bookingID)
		return nil, fmt.Errorf("failed to issue payment reference: %w", err)
	}

	now := m.now()
	session := &models.PaymentSession{
		BookingID: booking.ID,
		Amount:    booking.TotalAmount,
		Reference: ref.Reference,
		QRCodeURL: ref.QRCodeURL,
		Status:    models.SessionStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(m.TTL),
		UpdatedAt: now,
	}
	if err := m.Sessions.Create(session); err != nil {
		if err == paymentRepo.ErrDuplicatePending {
			if existing, pendErr := m.Sessions.GetPending(bookingID); pendErr == nil {
				return existing, nil
			}
		}
		m.restoreUnpaid(bookingID)
		return nil, fmt.Errorf("failed to create payment session: %w", err)
	}

	m.Logger.Info("payment session opened",
		zap.String("bookingId", booking.ID),
		zap.String("reference", session.Reference),
		zap.Float64("amount", session.Amount),
		zap.Time("expiresAt", session.ExpiresAt))
	return session, nil
}

// GetStatus returns the caller's session, expiring it lazily first. Safe to
// call arbitrarily often: besides the idempotent expiry transition it has no
// side effects.
func (m *DefaultSessionManager) GetStatus(bookingID, callerID string) (*models.PaymentSession, error) {
	booking, err := m.loadOwned(bookingID, callerID)
	if err != nil {
		return nil, err
	}

	session, err := m.Sessions.GetLatest(bookingID)
	if err != nil {
		if err == paymentRepo.ErrNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment session: %w", err)
	}

	if session.Expired(m.now()) {
		m.expire(booking, bookingID)
		session.Status = models.SessionStatusExpired
	}
	return session, nil
}

// Confirm settles a session from a gateway callback. Only an exact amount
// match within the TTL is accepted; anything else is recorded for manual
// reconciliation -- never silently accepted, never silently dropped.
func (m *DefaultSessionManager) Confirm(reference string, amount float64) error {
	session, err := m.Sessions.GetByReference(reference)
	if err != nil {
		if err == paymentRepo.ErrNotFound {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to fetch session by reference: %w", err)
	}

	now := m.now()
	if session.Status == models.SessionStatusPaid {
		return nil // duplicate confirmation
	}
	if session.Status == models.SessionStatusCancelled {
		return m.reconcile(session, amount, "cancelled")
	}
	if session.Status != models.SessionStatusPending || now.After(session.ExpiresAt) {
		return m.reconcile(session, amount, "late")
	}
	if amount != session.Amount {
		return m.reconcile(session, amount, "amountMismatch")
	}

	if err := m.Sessions.MarkPaid(reference); err != nil {
		if err == paymentRepo.ErrConflict {
			// Lost to a concurrent expiry or cancel.
			return m.reconcile(session, amount, "late")
		}
		return fmt.Errorf("failed to mark session paid: %w", err)
	}
	if err := m.Bookings.MarkPaid(session.BookingID); err != nil {
		m.Logger.Error("session paid but booking transition failed",
			zap.String("bookingId", session.BookingID), zap.Error(err))
	}

	if booking, err := m.Bookings.GetByID(session.BookingID); err == nil {
		m.Notifier.BookingConfirmed(booking)
	}
	m.Logger.Info("payment confirmed",
		zap.String("bookingId", session.BookingID),
		zap.String("reference", reference))
	return nil
}

// Cancel closes the pending session and releases the held rooms.
func (m *DefaultSessionManager) Cancel(bookingID, callerID string) error {
	if _, err := m.loadOwned(bookingID, callerID); err != nil {
		return err
	}

	if err := m.Sessions.Cancel(bookingID); err != nil {
		if err == paymentRepo.ErrConflict {
			// Nothing pending to cancel; repeated cancels are no-ops.
			return nil
		}
		return fmt.Errorf("failed to cancel payment session: %w", err)
	}
	if err := m.Bookings.CancelPayment(bookingID); err != nil {
		m.Logger.Warn("session cancelled but booking transition failed",
			zap.String("bookingId", bookingID), zap.Error(err))
	}
	m.Inventory.ReleaseAsync(bookingID)
	return nil
}

// ExpireDue expires pending sessions past their TTL. Run from the periodic
// sweep; the same transition also happens lazily on reads.
func (m *DefaultSessionManager) ExpireDue(limit int64) int {
	sessions, err := m.Sessions.ListExpiredPending(m.now(), limit)
	if err != nil {
		m.Logger.Error("failed to list expired sessions", zap.Error(err))
		return 0
	}

	expired := 0
	for i := range sessions {
		session := &sessions[i]
		booking, err := m.Bookings.GetByID(session.BookingID)
		if err != nil {
			m.Logger.Warn("expired session without booking",
				zap.String("bookingId", session.BookingID), zap.Error(err))
			continue
		}
		if m.expire(booking, session.BookingID) {
			expired++
		}
	}
	return expired
}

// restoreUnpaid rolls the booking's pending claim back after opening a
// session failed before one existed.
func (m *DefaultSessionManager) restoreUnpaid(bookingID string) {
	if err := m.Bookings.RevertPaymentPending(bookingID); err != nil {
		m.Logger.Error("failed to restore booking after session open failure",
			zap.String("bookingId", bookingID), zap.Error(err))
	}
}

// expire runs the guarded pending->expired transition and, when this call is
// the one that flipped it, kicks off inventory release and notification.
func (m *DefaultSessionManager) expire(booking *models.Booking, bookingID string) bool {
	if err := m.Sessions.Expire(bookingID, m.now()); err != nil {
		if err != paymentRepo.ErrConflict {
			m.Logger.Error("failed to expire payment session",
				zap.String("bookingId", bookingID), zap.Error(err))
		}
		return false
	}

	if err := m.Bookings.MarkPaymentExpired(bookingID); err != nil {
		m.Logger.Warn("session expired but booking transition failed",
			zap.String("bookingId", bookingID), zap.Error(err))
	}
	m.Inventory.ReleaseAsync(bookingID)
	m.Notifier.PaymentExpired(booking)

	m.Logger.Info("payment session expired",
		zap.String("bookingId", bookingID))
	return true
}

// reconcile records a confirmation that cannot be accepted automatically.
func (m *DefaultSessionManager) reconcile(session *models.PaymentSession, amount float64, reason string) error {
	rec := &models.Reconciliation{
		ID:            uuid.New().String(),
		BookingID:     session.BookingID,
		Reference:     session.Reference,
		Amount:        amount,
		SessionStatus: session.Status,
		Reason:        reason,
		CreatedAt:     m.now(),
	}
	if err := m.Sessions.SaveReconciliation(rec); err != nil {
		m.Logger.Error("failed to save reconciliation record",
			zap.String("bookingId", session.BookingID), zap.Error(err))
	}
	m.Logger.Warn("payment confirmation needs manual reconciliation",
		zap.String("bookingId", session.BookingID),
		zap.String("reference", session.Reference),
		zap.String("reason", reason),
		zap.Float64("confirmedAmount", amount),
		zap.Float64("sessionAmount", session.Amount))
	return ErrReconciliationRequired
}

func (m *DefaultSessionManager) loadOwned(bookingID, callerID string) (*models.Booking, error) {
	booking, err := m.Bookings.GetByID(bookingID)
	if err != nil {
		if err == bookingRepo.ErrNotFound {
			return nil, bookingSvc.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", bookingID, err)
	}
	if booking.OwnerID != callerID {
		return nil, bookingSvc.ErrNotOwner
	}
	return booking, nil
}
