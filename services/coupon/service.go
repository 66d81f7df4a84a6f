package coupon

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	bookingRepo "stayhub/database/repository/booking"
	couponRepo "stayhub/database/repository/coupon"
	"stayhub/models"
	bookingSvc "stayhub/services/booking"
	"stayhub/services/pricing"
)

// snapshotRetries bounds the compare-and-swap loop on the pricing snapshot.
const snapshotRetries = 3

// ApplicationService applies and cancels coupons on bookings. Both
// operations are atomic per booking: the unique index on the application's
// booking_id and the guarded increment on used_count decide races at the
// storage layer, so no in-process lock is held.
type ApplicationService interface {
	Apply(bookingID, callerID, couponCode string) (*models.CouponApplication, error)
	Cancel(bookingID, callerID string) error
}

// DefaultApplicationService implements ApplicationService.
type DefaultApplicationService struct {
	Bookings bookingRepo.BookingRepository
	Coupons  couponRepo.CouponRepository
	Catalog  pricing.Catalog
	Logger   *zap.Logger
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *DefaultApplicationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Apply validates the coupon against the booking's current subtotal and, if
// accepted, swaps it in as the booking's single active coupon.
func (s *DefaultApplicationService) Apply(bookingID, callerID, couponCode string) (*models.CouponApplication, error) {
	booking, err := s.loadOwned(bookingID, callerID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus != models.PaymentStatusUnpaid {
		return nil, ErrPaymentInProgress
	}

	cpn, err := s.Coupons.GetByCode(couponCode)
	if err != nil {
		if err == couponRepo.ErrNotFound {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to fetch coupon %s: %w", couponCode, err)
	}

	priorUses, err := s.Coupons.CountCustomerUses(cpn.ID, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count prior uses: %w", err)
	}

	property, err := s.Catalog.GetProperty(booking.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch property %s: %w", booking.PropertyID, err)
	}

	bctx := BookingContext{
		CustomerID:     callerID,
		PropertyID:     booking.PropertyID,
		LocationID:     property.LocationID,
		PropertyTypeID: property.PropertyTypeID,
		Nights:         booking.Nights(),
		PriorUses:      priorUses,
	}
	discount, err := Validate(cpn, bctx, booking.Subtotal(), s.now())
	if err != nil {
		return nil, err
	}

	// Reserve a use first. The filter re-checks the cap atomically, so two
	// racers for the last use end with exactly one winner.
	if err := s.Coupons.IncrementUsage(cpn.ID); err != nil {
		if err == couponRepo.ErrExhausted {
			return nil, ErrCouponExhausted
		}
		if err == couponRepo.ErrNotFound {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to reserve coupon use: %w", err)
	}

	// Swap out any previously applied coupon, then insert ours. A concurrent
	// apply that inserts between the delete and the insert makes our insert
	// fail on the unique index; that request is the race loser.
	previous, err := s.Coupons.DeleteApplication(booking.ID)
	if err != nil {
		s.rollbackUse(cpn.ID)
		return nil, fmt.Errorf("failed to remove previous coupon: %w", err)
	}

	app := &models.CouponApplication{
		BookingID:      booking.ID,
		CouponID:       cpn.ID,
		CouponCode:     cpn.Code,
		CustomerID:     callerID,
		DiscountAmount: discount,
		AppliedAt:      s.now(),
	}
	if err := s.Coupons.InsertApplication(app); err != nil {
		s.rollbackUse(cpn.ID)
		if previous != nil {
			if reinsertErr := s.Coupons.InsertApplication(previous); reinsertErr != nil {
				s.Logger.Warn("failed to restore previous coupon application",
					zap.String("bookingId", booking.ID), zap.Error(reinsertErr))
			}
		}
		if err == couponRepo.ErrDuplicateApplication {
			return nil, ErrApplyConflict
		}
		return nil, fmt.Errorf("failed to insert coupon application: %w", err)
	}

	if previous != nil {
		if err := s.Coupons.DecrementUsage(previous.CouponID); err != nil {
			s.Logger.Warn("failed to return use of replaced coupon",
				zap.String("couponId", previous.CouponID), zap.Error(err))
		}
	}

	percent := 0.0
	if cpn.DiscountType == models.DiscountTypePercentage {
		percent = cpn.DiscountValue
	}
	if err := s.reprice(booking, discount, percent, cpn.ID); err != nil {
		// Undo the application so the booking is not left carrying a coupon
		// its snapshot never reflected. Only if it is still ours: a
		// concurrent replace already removed it and returned the use.
		if cur, getErr := s.Coupons.GetApplication(booking.ID); getErr == nil &&
			cur != nil && cur.CouponID == cpn.ID && cur.AppliedAt.Equal(app.AppliedAt) {
			if _, delErr := s.Coupons.DeleteApplication(booking.ID); delErr == nil {
				s.rollbackUse(cpn.ID)
			}
		}
		return nil, err
	}
	return app, nil
}

// Cancel removes the booking's coupon, returns its use, and reprices.
// Cancelling a booking without a coupon is a no-op, not an error.
func (s *DefaultApplicationService) Cancel(bookingID, callerID string) error {
	booking, err := s.loadOwned(bookingID, callerID)
	if err != nil {
		return err
	}
	if booking.PaymentStatus != models.PaymentStatusUnpaid {
		return ErrPaymentInProgress
	}

	previous, err := s.Coupons.DeleteApplication(booking.ID)
	if err != nil {
		return fmt.Errorf("failed to remove coupon application: %w", err)
	}
	if previous == nil {
		return nil
	}

	if err := s.Coupons.DecrementUsage(previous.CouponID); err != nil {
		s.Logger.Warn("failed to return coupon use",
			zap.String("couponId", previous.CouponID), zap.Error(err))
	}
	return s.reprice(booking, 0, 0, "")
}

func (s *DefaultApplicationService) loadOwned(bookingID, callerID string) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(bookingID)
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

// reprice persists the coupon-adjusted snapshot under the version
// compare-and-swap, re-reading the booking on each lost race. ownCouponID is
// the coupon whose application this request believes is active ("" for none);
// a lost race is only retried while that is still true, so a stale writer can
// never stamp its discount over a rival's application.
func (s *DefaultApplicationService) reprice(booking *models.Booking, discount, percent float64, ownCouponID string) error {
	for attempt := 0; attempt < snapshotRetries; attempt++ {
		snap := pricing.ApplyCouponToSnapshot(booking.Snapshot(), discount, percent)
		err := s.Bookings.UpdateSnapshot(booking.ID, booking.Version, snap)
		if err == nil {
			return nil
		}
		if err != bookingRepo.ErrStaleVersion {
			return fmt.Errorf("failed to persist pricing snapshot: %w", err)
		}

		booking, err = s.Bookings.GetByID(booking.ID)
		if err != nil {
			return fmt.Errorf("failed to re-fetch booking after version conflict: %w", err)
		}
		if booking.PaymentStatus != models.PaymentStatusUnpaid {
			// A payment session opened mid-flight; the coupon change lost.
			return ErrPaymentInProgress
		}

		cur, err := s.Coupons.GetApplication(booking.ID)
		if err != nil {
			return fmt.Errorf("failed to re-check coupon application: %w", err)
		}
		if ownCouponID == "" {
			if cur != nil {
				return ErrApplyConflict
			}
		} else if cur == nil || cur.CouponID != ownCouponID {
			// A concurrent change replaced our application; it reprices.
			return ErrApplyConflict
		}
	}
	return ErrApplyConflict
}

func (s *DefaultApplicationService) rollbackUse(couponID string) {
	if err := s.Coupons.DecrementUsage(couponID); err != nil {
		s.Logger.Warn("failed to roll back coupon use",
			zap.String("couponId", couponID), zap.Error(err))
	}
}
