package models

import "time"

// Booking statuses.
const (
	BookingStatusDraft     = "draft"
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCheckedIn = "checkedIn"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
	BookingStatusNoShow    = "noShow"
)

// Payment statuses of a booking.
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusExpired = "expired"
)

// Booking represents a reservation attempt owned by a single customer.
// The pricing snapshot is recomputed whenever a coupon is applied or
// cancelled, and frozen once a payment session opens.
type Booking struct {
	ID            string    `bson:"id" json:"id"`
	Code          string    `bson:"code" json:"code"` // unique, human-shareable
	PropertyID    string    `bson:"property_id" json:"propertyId"`
	RoomTypeID    string    `bson:"room_type_id" json:"roomTypeId"`
	CheckIn       time.Time `bson:"check_in" json:"checkIn"`
	CheckOut      time.Time `bson:"check_out" json:"checkOut"`
	RoomsCount    int       `bson:"rooms_count" json:"roomsCount"`
	Adults        int       `bson:"adults" json:"adults"`
	Children      int       `bson:"children" json:"children"`
	OwnerID       string    `bson:"owner_id" json:"ownerId"`
	Status        string    `bson:"status" json:"status"`
	PaymentStatus string    `bson:"payment_status" json:"paymentStatus"`

	// Pricing snapshot. Invariant:
	// TotalAmount = RoomPrice - PropertyDiscountAmount - CouponDiscountAmount + TaxAmount + ServiceFee
	RoomPrice               float64 `bson:"room_price" json:"roomPrice"`
	PropertyDiscountAmount  float64 `bson:"property_discount_amount" json:"propertyDiscountAmount"`
	PropertyDiscountPercent float64 `bson:"property_discount_percent" json:"propertyDiscountPercent"`
	CouponDiscountAmount    float64 `bson:"coupon_discount_amount" json:"couponDiscountAmount"`
	CouponDiscountPercent   float64 `bson:"coupon_discount_percent" json:"couponDiscountPercent"`
	TaxAmount               float64 `bson:"tax_amount" json:"taxAmount"`
	ServiceFee              float64 `bson:"service_fee" json:"serviceFee"`
	TotalAmount             float64 `bson:"total_amount" json:"totalAmount"`

	// Version guards concurrent snapshot updates (compare-and-swap).
	Version   int64     `bson:"version" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Nights returns the stay length in whole nights.
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// Subtotal is the coupon-independent base the validator prices against.
func (b *Booking) Subtotal() float64 {
	return b.RoomPrice - b.PropertyDiscountAmount
}

// PricingSnapshot is the persisted pricing state of a booking, written as one
// unit under a version compare-and-swap.
type PricingSnapshot struct {
	RoomPrice               float64 `bson:"room_price" json:"roomPrice"`
	PropertyDiscountAmount  float64 `bson:"property_discount_amount" json:"propertyDiscountAmount"`
	PropertyDiscountPercent float64 `bson:"property_discount_percent" json:"propertyDiscountPercent"`
	CouponDiscountAmount    float64 `bson:"coupon_discount_amount" json:"couponDiscountAmount"`
	CouponDiscountPercent   float64 `bson:"coupon_discount_percent" json:"couponDiscountPercent"`
	TaxAmount               float64 `bson:"tax_amount" json:"taxAmount"`
	ServiceFee              float64 `bson:"service_fee" json:"serviceFee"`
	TotalAmount             float64 `bson:"total_amount" json:"totalAmount"`
}

// Snapshot extracts the booking's current pricing snapshot.
func (b *Booking) Snapshot() PricingSnapshot {
	return PricingSnapshot{
		RoomPrice:               b.RoomPrice,
		PropertyDiscountAmount:  b.PropertyDiscountAmount,
		PropertyDiscountPercent: b.PropertyDiscountPercent,
		CouponDiscountAmount:    b.CouponDiscountAmount,
		CouponDiscountPercent:   b.CouponDiscountPercent,
		TaxAmount:               b.TaxAmount,
		ServiceFee:              b.ServiceFee,
		TotalAmount:             b.TotalAmount,
	}
}
