package coupon

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingRepo "stayhub/database/repository/booking"
	couponRepo "stayhub/database/repository/coupon"
	"stayhub/models"
	bookingSvc "stayhub/services/booking"
	"stayhub/services/pricing"
)

// memBookingRepo is an in-memory BookingRepository honoring the version
// compare-and-swap.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newMemBookingRepo(bookings ...*models.Booking) *memBookingRepo {
	r := &memBookingRepo{bookings: make(map[string]*models.Booking)}
	for _, b := range bookings {
		if b.Version == 0 {
			b.Version = 1
		}
		r.bookings[b.ID] = b
	}
	return r
}

func (r *memBookingRepo) Create(b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Version = 1
	r.bookings[b.ID] = b
	return nil
}

func (r *memBookingRepo) GetByID(id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *memBookingRepo) GetByCode(code string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Code == code {
			copied := *b
			return &copied, nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (r *memBookingRepo) UpdateSnapshot(id string, version int64, snap models.PricingSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Version != version {
		return bookingRepo.ErrStaleVersion
	}
	b.RoomPrice = snap.RoomPrice
	b.PropertyDiscountAmount = snap.PropertyDiscountAmount
	b.PropertyDiscountPercent = snap.PropertyDiscountPercent
	b.CouponDiscountAmount = snap.CouponDiscountAmount
	b.CouponDiscountPercent = snap.CouponDiscountPercent
	b.TaxAmount = snap.TaxAmount
	b.ServiceFee = snap.ServiceFee
	b.TotalAmount = snap.TotalAmount
	b.Version++
	return nil
}

func (r *memBookingRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return bookingRepo.ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}

func (r *memBookingRepo) transition(id, from, toPayment, toStatus string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.PaymentStatus != from {
		return bookingRepo.ErrStaleVersion
	}
	b.PaymentStatus = toPayment
	if toStatus != "" {
		b.Status = toStatus
	}
	b.Version++
	return nil
}

func (r *memBookingRepo) SetPaymentPending(id string) error {
	return r.transition(id, models.PaymentStatusUnpaid, models.PaymentStatusPending, models.BookingStatusPending)
}

func (r *memBookingRepo) RevertPaymentPending(id string) error {
	return r.transition(id, models.PaymentStatusPending, models.PaymentStatusUnpaid, models.BookingStatusDraft)
}

func (r *memBookingRepo) MarkPaid(id string) error {
	return r.transition(id, models.PaymentStatusPending, models.PaymentStatusPaid, models.BookingStatusConfirmed)
}

func (r *memBookingRepo) MarkPaymentExpired(id string) error {
	return r.transition(id, models.PaymentStatusPending, models.PaymentStatusExpired, "")
}

func (r *memBookingRepo) CancelPayment(id string) error {
	return r.transition(id, models.PaymentStatusPending, models.PaymentStatusUnpaid, models.BookingStatusCancelled)
}

// memCouponRepo is an in-memory CouponRepository honoring the usage cap and
// the one-application-per-booking index.
type memCouponRepo struct {
	mu      sync.Mutex
	coupons map[string]*models.Coupon
	apps    map[string]*models.CouponApplication // keyed by booking ID
}

func newMemCouponRepo(coupons ...*models.Coupon) *memCouponRepo {
	r := &memCouponRepo{
		coupons: make(map[string]*models.Coupon),
		apps:    make(map[string]*models.CouponApplication),
	}
	for _, c := range coupons {
		r.coupons[c.ID] = c
	}
	return r
}

func (r *memCouponRepo) GetByCode(code string) (*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coupons {
		if c.Code == code && c.IsActive {
			copied := *c
			return &copied, nil
		}
	}
	return nil, couponRepo.ErrNotFound
}

func (r *memCouponRepo) IncrementUsage(couponID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[couponID]
	if !ok {
		return couponRepo.ErrNotFound
	}
	if c.MaxTotalUses != nil && c.UsedCount >= *c.MaxTotalUses {
		return couponRepo.ErrExhausted
	}
	c.UsedCount++
	return nil
}

func (r *memCouponRepo) DecrementUsage(couponID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[couponID]
	if !ok {
		return couponRepo.ErrNotFound
	}
	if c.UsedCount > 0 {
		c.UsedCount--
	}
	return nil
}

func (r *memCouponRepo) GetApplication(bookingID string) (*models.CouponApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[bookingID]
	if !ok {
		return nil, nil
	}
	copied := *app
	return &copied, nil
}

func (r *memCouponRepo) InsertApplication(app *models.CouponApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.apps[app.BookingID]; exists {
		return couponRepo.ErrDuplicateApplication
	}
	copied := *app
	r.apps[app.BookingID] = &copied
	return nil
}

func (r *memCouponRepo) DeleteApplication(bookingID string) (*models.CouponApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[bookingID]
	if !ok {
		return nil, nil
	}
	delete(r.apps, bookingID)
	return app, nil
}

func (r *memCouponRepo) CountCustomerUses(couponID, customerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, app := range r.apps {
		if app.CouponID == couponID && app.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

type staticCatalog struct {
	property *models.Property
}

func (c *staticCatalog) GetProperty(id string) (*models.Property, error) {
	return c.property, nil
}

func (c *staticCatalog) GetRoomType(id string) (*models.RoomType, error) {
	return nil, nil
}

func (c *staticCatalog) IsHoliday(date time.Time) (bool, error) {
	return false, nil
}

var _ pricing.Catalog = (*staticCatalog)(nil)

var applyNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testBooking() *models.Booking {
	return &models.Booking{
		ID:            "bkg-1",
		Code:          "SH-TEST01",
		PropertyID:    "prop-1",
		RoomTypeID:    "room-1",
		CheckIn:       time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:      time.Date(2026, 4, 4, 0, 0, 0, 0, time.UTC),
		RoomsCount:    2,
		OwnerID:       "cust-1",
		Status:        models.BookingStatusDraft,
		PaymentStatus: models.PaymentStatusUnpaid,
		RoomPrice:     3800000,
		TaxAmount:     380000,
		ServiceFee:    50000,
		TotalAmount:   4230000,
	}
}

func testCoupon() *models.Coupon {
	cap := float64(100000)
	return &models.Coupon{
		ID:                "cpn-1",
		Code:              "SAVE10",
		DiscountType:      models.DiscountTypePercentage,
		DiscountValue:     10,
		MaxDiscountAmount: &cap,
		ApplicableTo:      models.ApplicableToAll,
		StartDate:         applyNow.AddDate(0, -1, 0),
		EndDate:           applyNow.AddDate(0, 1, 0),
		IsActive:          true,
	}
}

func newService(bookings bookingRepo.BookingRepository, coupons *memCouponRepo) *DefaultApplicationService {
	return &DefaultApplicationService{
		Bookings: bookings,
		Coupons:  coupons,
		Catalog:  &staticCatalog{property: &models.Property{ID: "prop-1"}},
		Logger:   zap.NewNop(),
		Now:      func() time.Time { return applyNow },
	}
}

func TestApplyRepricesBooking(t *testing.T) {
	bookings := newMemBookingRepo(testBooking())
	coupons := newMemCouponRepo(testCoupon())
	svc := newService(bookings, coupons)

	app, err := svc.Apply("bkg-1", "cust-1", "SAVE10")
	require.NoError(t, err)
	assert.InDelta(t, 100000, app.DiscountAmount, 0.01)

	booking, err := bookings.GetByID("bkg-1")
	require.NoError(t, err)
	assert.InDelta(t, 100000, booking.CouponDiscountAmount, 0.01)
	assert.InDelta(t, 4130000, booking.TotalAmount, 0.01)
	assert.Equal(t, int64(1), coupons.coupons["cpn-1"].UsedCount)
}

func TestApplyReplacesPreviousCoupon(t *testing.T) {
	second := testCoupon()
	second.ID = "cpn-2"
	second.Code = "FLAT200"
	second.DiscountType = models.DiscountTypeFixedAmount
	second.DiscountValue = 200000
	second.MaxDiscountAmount = nil

	bookings := newMemBookingRepo(testBooking())
	coupons := newMemCouponRepo(testCoupon(), second)
	svc := newService(bookings, coupons)

	_, err := svc.Apply("bkg-1", "cust-1", "SAVE10")
	require.NoError(t, err)
	_, err = svc.Apply("bkg-1", "cust-1", "FLAT200")
	require.NoError(t, err)

	// Exactly one application remains and the snapshot reflects only it.
	assert.Len(t, coupons.apps, 1)
	assert.Equal(t, "cpn-2", coupons.apps["bkg-1"].CouponID)
	booking, _ := bookings.GetByID("bkg-1")
	assert.InDelta(t, 200000, booking.CouponDiscountAmount, 0.01)

	// The replaced coupon got its use back.
	assert.Equal(t, int64(0), coupons.coupons["cpn-1"].UsedCount)
	assert.Equal(t, int64(1), coupons.coupons["cpn-2"].UsedCount)
}

// raceBookingRepo runs a hook before the first snapshot write, opening the
// window between inserting an application and persisting its snapshot.
type raceBookingRepo struct {
	*memBookingRepo
	hook  func()
	fired bool
}

func (r *raceBookingRepo) UpdateSnapshot(id string, version int64, snap models.PricingSnapshot) error {
	if !r.fired && r.hook != nil {
		r.fired = true
		r.hook()
	}
	return r.memBookingRepo.UpdateSnapshot(id, version, snap)
}

func TestApplyLostRaceKeepsRivalCoupon(t *testing.T) {
	flat := testCoupon()
	flat.ID = "cpn-2"
	flat.Code = "FLAT200"
	flat.DiscountType = models.DiscountTypeFixedAmount
	flat.DiscountValue = 200000
	flat.MaxDiscountAmount = nil

	inner := newMemBookingRepo(testBooking())
	coupons := newMemCouponRepo(testCoupon(), flat)
	bookings := &raceBookingRepo{memBookingRepo: inner}
	svc := newService(bookings, coupons)

	// A rival replaces our coupon after our application landed but before
	// our snapshot write.
	rival := newService(inner, coupons)
	bookings.hook = func() {
		_, err := rival.Apply("bkg-1", "cust-1", "FLAT200")
		require.NoError(t, err)
	}

	_, err := svc.Apply("bkg-1", "cust-1", "SAVE10")
	assert.ErrorIs(t, err, ErrApplyConflict)

	// The rival's application and snapshot survive untouched.
	require.NotNil(t, coupons.apps["bkg-1"])
	assert.Equal(t, "cpn-2", coupons.apps["bkg-1"].CouponID)
	booking, _ := inner.GetByID("bkg-1")
	assert.InDelta(t, 200000, booking.CouponDiscountAmount, 0.01)
	assert.InDelta(t, 4030000, booking.TotalAmount, 0.01)
	assert.Equal(t, int64(0), coupons.coupons["cpn-1"].UsedCount)
	assert.Equal(t, int64(1), coupons.coupons["cpn-2"].UsedCount)
}

func TestApplyConcurrentCapOneWinner(t *testing.T) {
	c := testCoupon()
	max := int64(1)
	c.MaxTotalUses = &max

	first := testBooking()
	second := testBooking()
	second.ID = "bkg-2"
	second.Code = "SH-TEST02"

	bookings := newMemBookingRepo(first, second)
	coupons := newMemCouponRepo(c)
	svc := newService(bookings, coupons)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []string{"bkg-1", "bkg-2"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = svc.Apply(id, "cust-1", "SAVE10")
		}(i, id)
	}
	wg.Wait()

	var won, exhausted int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrCouponExhausted):
			exhausted++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, exhausted)
	assert.Equal(t, int64(1), coupons.coupons["cpn-1"].UsedCount)
	assert.Len(t, coupons.apps, 1)
}

func TestApplyExhaustedCoupon(t *testing.T) {
	c := testCoupon()
	max := int64(1)
	c.MaxTotalUses = &max
	c.UsedCount = 1

	bookings := newMemBookingRepo(testBooking())
	svc := newService(bookings, newMemCouponRepo(c))

	_, err := svc.Apply("bkg-1", "cust-1", "SAVE10")
	assert.ErrorIs(t, err, ErrCouponExhausted)

	booking, _ := bookings.GetByID("bkg-1")
	assert.InDelta(t, 0, booking.CouponDiscountAmount, 0.01)
}

func TestApplyBlockedWhilePaymentPending(t *testing.T) {
	b := testBooking()
	b.PaymentStatus = models.PaymentStatusPending
	svc := newService(newMemBookingRepo(b), newMemCouponRepo(testCoupon()))

	_, err := svc.Apply("bkg-1", "cust-1", "SAVE10")
	assert.ErrorIs(t, err, ErrPaymentInProgress)
}

func TestApplyOwnershipEnforced(t *testing.T) {
	svc := newService(newMemBookingRepo(testBooking()), newMemCouponRepo(testCoupon()))

	_, err := svc.Apply("bkg-1", "cust-2", "SAVE10")
	assert.ErrorIs(t, err, bookingSvc.ErrNotOwner)

	_, err = svc.Apply("missing", "cust-1", "SAVE10")
	assert.ErrorIs(t, err, bookingSvc.ErrBookingNotFound)
}

func TestApplyUnknownCode(t *testing.T) {
	svc := newService(newMemBookingRepo(testBooking()), newMemCouponRepo(testCoupon()))

	_, err := svc.Apply("bkg-1", "cust-1", "NOPE")
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestCancelRestoresOriginalTotal(t *testing.T) {
	bookings := newMemBookingRepo(testBooking())
	coupons := newMemCouponRepo(testCoupon())
	svc := newService(bookings, coupons)

	_, err := svc.Apply("bkg-1", "cust-1", "SAVE10")
	require.NoError(t, err)
	require.NoError(t, svc.Cancel("bkg-1", "cust-1"))

	booking, _ := bookings.GetByID("bkg-1")
	assert.InDelta(t, 0, booking.CouponDiscountAmount, 0.01)
	assert.InDelta(t, 4230000, booking.TotalAmount, 0.01)
	assert.Equal(t, int64(0), coupons.coupons["cpn-1"].UsedCount)
	assert.Empty(t, coupons.apps)
}

func TestCancelWithoutCouponIsNoop(t *testing.T) {
	bookings := newMemBookingRepo(testBooking())
	svc := newService(bookings, newMemCouponRepo(testCoupon()))

	assert.NoError(t, svc.Cancel("bkg-1", "cust-1"))

	booking, _ := bookings.GetByID("bkg-1")
	assert.InDelta(t, 4230000, booking.TotalAmount, 0.01)
}
