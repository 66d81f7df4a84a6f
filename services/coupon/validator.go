package coupon

import (
	"net/http"
	"time"

	"stayhub/models"
	"stayhub/utils"
)

// Typed coupon errors. The first failing check wins and is the reason the
// caller sees.
var (
	ErrCouponNotFound = utils.NewServiceError("couponNotFound",
		http.StatusNotFound, "coupon does not exist or is not active")
	ErrCouponExpired = utils.NewServiceError("couponExpired",
		http.StatusUnprocessableEntity, "coupon is outside its validity window")
	ErrCouponExhausted = utils.NewServiceError("couponExhausted",
		http.StatusConflict, "coupon usage limit has been reached")
	ErrMinOrderNotMet = utils.NewServiceError("minOrderNotMet",
		http.StatusUnprocessableEntity, "booking subtotal is below the coupon minimum")
	ErrMinNightsNotMet = utils.NewServiceError("minNightsNotMet",
		http.StatusUnprocessableEntity, "stay is shorter than the coupon minimum nights")
	ErrScopeMismatch = utils.NewServiceError("scopeMismatch",
		http.StatusUnprocessableEntity, "coupon does not apply to this property")
	ErrPaymentInProgress = utils.NewServiceError("paymentInProgress",
		http.StatusConflict, "coupon cannot change while a payment session is open")
	ErrApplyConflict = utils.NewServiceError("couponApplyConflict",
		http.StatusConflict, "a concurrent coupon change won; re-fetch the booking")
)

// BookingContext is the slice of booking state a coupon is validated against.
type BookingContext struct {
	CustomerID     string
	PropertyID     string
	LocationID     string
	PropertyTypeID string
	Nights         int
	// PriorUses is how many times this customer already used the coupon.
	PriorUses int64
}

// Validate runs the eligibility checks in order and returns the discount
// amount. Deterministic for identical inputs, and the returned amount never
// exceeds the subtotal -- both required for idempotent retries.
func Validate(c *models.Coupon, bctx BookingContext, subtotal float64, now time.Time) (float64, error) {
	if c == nil || !c.IsActive {
		return 0, ErrCouponNotFound
	}
	if now.Before(c.StartDate) || now.After(c.EndDate) {
		return 0, ErrCouponExpired
	}
	if c.MaxTotalUses != nil && c.UsedCount >= *c.MaxTotalUses {
		return 0, ErrCouponExhausted
	}
	if c.MaxUsesPerUser > 0 && bctx.PriorUses >= int64(c.MaxUsesPerUser) {
		return 0, ErrCouponExhausted
	}
	if subtotal < c.MinOrderAmount {
		return 0, ErrMinOrderNotMet
	}
	if bctx.Nights < c.MinNights {
		return 0, ErrMinNightsNotMet
	}
	if !scopeMatches(c, bctx) {
		return 0, ErrScopeMismatch
	}
	return Discount(c, subtotal, bctx.Nights), nil
}

// Discount computes the amount a coupon takes off the given subtotal.
func Discount(c *models.Coupon, subtotal float64, nights int) float64 {
	var amount float64
	switch c.DiscountType {
	case models.DiscountTypePercentage:
		amount = subtotal * c.DiscountValue / 100
		amount = capAmount(amount, c.MaxDiscountAmount)
	case models.DiscountTypeFixedAmount:
		amount = c.DiscountValue
	case models.DiscountTypeFreeNight:
		if nights > 0 {
			amount = c.DiscountValue * (subtotal / float64(nights))
		}
		amount = capAmount(amount, c.MaxDiscountAmount)
	}
	if amount > subtotal {
		amount = subtotal
	}
	return amount
}

func capAmount(amount float64, cap *float64) float64 {
	if cap != nil && amount > *cap {
		return *cap
	}
	return amount
}

func scopeMatches(c *models.Coupon, bctx BookingContext) bool {
	if c.ApplicableTo == models.ApplicableToAll {
		return true
	}
	for _, scope := range c.ApplicableScope {
		if scope.ScopeType != c.ApplicableTo {
			continue
		}
		switch scope.ScopeType {
		case models.ApplicableToProperty:
			if scope.ScopeID == bctx.PropertyID {
				return true
			}
		case models.ApplicableToLocation:
			if scope.ScopeID == bctx.LocationID {
				return true
			}
		case models.ApplicableToPropertyType:
			if scope.ScopeID == bctx.PropertyTypeID {
				return true
			}
		}
	}
	return false
}
