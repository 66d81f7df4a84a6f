package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stayhub/models"
	bookingSvc "stayhub/services/booking"
	"stayhub/services/coupon"
)

type stubBookings struct {
	booking *models.Booking
}

func (s *stubBookings) Create(ownerID string, req bookingSvc.CreateRequest) (*models.Booking, error) {
	return s.booking, nil
}

func (s *stubBookings) Get(bookingID, callerID string) (*models.Booking, error) {
	if s.booking.OwnerID != callerID {
		return nil, bookingSvc.ErrNotOwner
	}
	copied := *s.booking
	return &copied, nil
}

type stubCoupons struct {
	applyErr error
	applied  bool
}

func (s *stubCoupons) Apply(bookingID, callerID, couponCode string) (*models.CouponApplication, error) {
	if s.applyErr != nil {
		return nil, s.applyErr
	}
	s.applied = true
	return &models.CouponApplication{
		BookingID:      bookingID,
		CouponCode:     couponCode,
		DiscountAmount: 100000,
	}, nil
}

func (s *stubCoupons) Cancel(bookingID, callerID string) error {
	s.applied = false
	return nil
}

func newOrchestrator(b *models.Booking, coupons *stubCoupons) *DefaultOrchestrator {
	return &DefaultOrchestrator{
		Bookings: &stubBookings{booking: b},
		Coupons:  coupons,
		Logger:   zap.NewNop(),
	}
}

func TestApplyCouponReturnsRepricedBooking(t *testing.T) {
	b := &models.Booking{ID: "bkg-1", OwnerID: "cust-1", TotalAmount: 4130000}
	orch := newOrchestrator(b, &stubCoupons{})

	booking, app, err := orch.ApplyCoupon("bkg-1", "cust-1", "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, "bkg-1", booking.ID)
	assert.InDelta(t, 100000, app.DiscountAmount, 0.01)
}

func TestApplyCouponPropagatesServiceError(t *testing.T) {
	b := &models.Booking{ID: "bkg-1", OwnerID: "cust-1"}
	orch := newOrchestrator(b, &stubCoupons{applyErr: coupon.ErrCouponExhausted})

	_, _, err := orch.ApplyCoupon("bkg-1", "cust-1", "SAVE10")
	assert.ErrorIs(t, err, coupon.ErrCouponExhausted)
}

func TestCancelCouponReturnsRestoredBooking(t *testing.T) {
	b := &models.Booking{ID: "bkg-1", OwnerID: "cust-1", TotalAmount: 4230000}
	coupons := &stubCoupons{applied: true}
	orch := newOrchestrator(b, coupons)

	booking, err := orch.CancelCoupon("bkg-1", "cust-1")
	require.NoError(t, err)
	assert.False(t, coupons.applied)
	assert.InDelta(t, 4230000, booking.TotalAmount, 0.01)
}
