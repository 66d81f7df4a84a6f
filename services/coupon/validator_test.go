package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stayhub/models"
)

var validationNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func validCoupon() *models.Coupon {
	return &models.Coupon{
		ID:            "cpn-1",
		Code:          "SAVE10",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
		ApplicableTo:  models.ApplicableToAll,
		StartDate:     validationNow.AddDate(0, -1, 0),
		EndDate:       validationNow.AddDate(0, 1, 0),
		IsActive:      true,
	}
}

func ctxFor(nights int) BookingContext {
	return BookingContext{
		CustomerID: "cust-1",
		PropertyID: "prop-1",
		Nights:     nights,
	}
}

func TestValidateAcceptsValidCoupon(t *testing.T) {
	amount, err := Validate(validCoupon(), ctxFor(3), 3800000, validationNow)
	assert.NoError(t, err)
	assert.InDelta(t, 380000, amount, 0.01)
}

func TestValidateInactiveReportsNotFound(t *testing.T) {
	c := validCoupon()
	c.IsActive = false
	_, err := Validate(c, ctxFor(3), 1000, validationNow)
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestValidateOutsideWindow(t *testing.T) {
	c := validCoupon()
	_, err := Validate(c, ctxFor(3), 1000, c.EndDate.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, ErrCouponExpired)

	_, err = Validate(c, ctxFor(3), 1000, c.StartDate.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrCouponExpired)
}

func TestValidateGlobalCapExhausted(t *testing.T) {
	c := validCoupon()
	max := int64(5)
	c.MaxTotalUses = &max
	c.UsedCount = 5
	_, err := Validate(c, ctxFor(3), 1000, validationNow)
	assert.ErrorIs(t, err, ErrCouponExhausted)
}

func TestValidatePerCustomerCapExhausted(t *testing.T) {
	c := validCoupon()
	c.MaxUsesPerUser = 2
	bctx := ctxFor(3)
	bctx.PriorUses = 2
	_, err := Validate(c, bctx, 1000, validationNow)
	assert.ErrorIs(t, err, ErrCouponExhausted)
}

func TestValidateMinOrder(t *testing.T) {
	c := validCoupon()
	c.MinOrderAmount = 500000
	_, err := Validate(c, ctxFor(3), 499999, validationNow)
	assert.ErrorIs(t, err, ErrMinOrderNotMet)
}

func TestValidateMinNights(t *testing.T) {
	c := validCoupon()
	c.MinNights = 5
	_, err := Validate(c, ctxFor(4), 1000000, validationNow)
	assert.ErrorIs(t, err, ErrMinNightsNotMet)
}

func TestValidateScope(t *testing.T) {
	c := validCoupon()
	c.ApplicableTo = models.ApplicableToProperty
	c.ApplicableScope = []models.CouponScope{
		{ScopeType: models.ApplicableToProperty, ScopeID: "prop-2"},
	}
	_, err := Validate(c, ctxFor(3), 1000000, validationNow)
	assert.ErrorIs(t, err, ErrScopeMismatch)

	c.ApplicableScope = append(c.ApplicableScope,
		models.CouponScope{ScopeType: models.ApplicableToProperty, ScopeID: "prop-1"})
	_, err = Validate(c, ctxFor(3), 1000000, validationNow)
	assert.NoError(t, err)
}

func TestValidateFirstFailingCheckWins(t *testing.T) {
	// Expired and under minimum order at once; expiry is checked first.
	c := validCoupon()
	c.MinOrderAmount = 1000000
	_, err := Validate(c, ctxFor(3), 100, c.EndDate.AddDate(0, 1, 0))
	assert.ErrorIs(t, err, ErrCouponExpired)
}

func TestDiscountPercentageCapped(t *testing.T) {
	c := validCoupon()
	cap := float64(100000)
	c.MaxDiscountAmount = &cap

	// 10% of 3,800,000 would be 380,000; the cap wins.
	assert.InDelta(t, 100000, Discount(c, 3800000, 3), 0.01)
}

func TestDiscountFixedAmount(t *testing.T) {
	c := validCoupon()
	c.DiscountType = models.DiscountTypeFixedAmount
	c.DiscountValue = 250000
	assert.InDelta(t, 250000, Discount(c, 3800000, 3), 0.01)

	// Never exceeds the subtotal.
	assert.InDelta(t, 100000, Discount(c, 100000, 3), 0.01)
}

func TestDiscountFreeNight(t *testing.T) {
	c := validCoupon()
	c.DiscountType = models.DiscountTypeFreeNight
	c.DiscountValue = 1

	// One free night out of a four night, 4,000,000 subtotal.
	assert.InDelta(t, 1000000, Discount(c, 4000000, 4), 0.01)
}
