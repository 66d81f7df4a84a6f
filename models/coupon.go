package models

import "time"

// Coupon discount types.
const (
	DiscountTypePercentage  = "percentage"
	DiscountTypeFixedAmount = "fixedAmount"
	DiscountTypeFreeNight   = "freeNight"
)

// Coupon scope targets.
const (
	ApplicableToAll          = "all"
	ApplicableToLocation     = "location"
	ApplicableToProperty     = "property"
	ApplicableToPropertyType = "propertyType"
)

// CouponScope restricts a coupon to one location, property or property type.
type CouponScope struct {
	ScopeType string `bson:"scope_type" json:"scopeType"`
	ScopeID   string `bson:"scope_id" json:"scopeId"`
}

// Coupon is an admin-managed promotional rule. UsedCount is only ever moved
// through the repository's guarded increment so it can never exceed
// MaxTotalUses, even under concurrent applies.
type Coupon struct {
	ID                string        `bson:"id" json:"id"`
	Code              string        `bson:"code" json:"code"` // unique
	DiscountType      string        `bson:"discount_type" json:"discountType"`
	DiscountValue     float64       `bson:"discount_value" json:"discountValue"`
	MaxDiscountAmount *float64      `bson:"max_discount_amount,omitempty" json:"maxDiscountAmount,omitempty"`
	MinOrderAmount    float64       `bson:"min_order_amount" json:"minOrderAmount"`
	MinNights         int           `bson:"min_nights" json:"minNights"`
	ApplicableTo      string        `bson:"applicable_to" json:"applicableTo"`
	ApplicableScope   []CouponScope `bson:"applicable_scope,omitempty" json:"applicableScope,omitempty"`
	StartDate         time.Time     `bson:"start_date" json:"startDate"`
	EndDate           time.Time     `bson:"end_date" json:"endDate"`
	MaxTotalUses      *int64        `bson:"max_total_uses,omitempty" json:"maxTotalUses,omitempty"`
	MaxUsesPerUser    int           `bson:"max_uses_per_user" json:"maxUsesPerCustomer"`
	UsedCount         int64         `bson:"used_count" json:"usedCount"`
	IsActive          bool          `bson:"is_active" json:"isActive"`
	CreatedAt         time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time     `bson:"updated_at" json:"updatedAt"`
}

// CouponApplication links one booking to one coupon. The unique index on
// BookingID enforces at most one active coupon per booking.
type CouponApplication struct {
	BookingID      string    `bson:"booking_id" json:"bookingId"`
	CouponID       string    `bson:"coupon_id" json:"couponId"`
	CouponCode     string    `bson:"coupon_code" json:"couponCode"`
	CustomerID     string    `bson:"customer_id" json:"customerId"`
	DiscountAmount float64   `bson:"discount_amount" json:"discountAmount"` // frozen at apply time
	AppliedAt      time.Time `bson:"applied_at" json:"appliedAt"`
}
