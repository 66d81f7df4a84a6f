package models

import "time"

// Price types for a single night.
const (
	PriceTypeWeekday = "weekday"
	PriceTypeWeekend = "weekend"
	PriceTypeHoliday = "holiday"
)

// DailyRate is one entry of a quote's nightly breakdown.
type DailyRate struct {
	Date         time.Time `json:"date"`
	DayOfWeek    string    `json:"dayOfWeek"`
	PriceType    string    `json:"priceType"`
	PricePerRoom float64   `json:"pricePerRoom"`
}

// PriceQuote is the ephemeral result of pricing a stay. It is recomputed on
// every request and never persisted, because catalog rates may change.
type PriceQuote struct {
	PropertyID              string      `json:"propertyId"`
	RoomTypeID              string      `json:"roomTypeId"`
	CheckIn                 time.Time   `json:"checkIn"`
	CheckOut                time.Time   `json:"checkOut"`
	Nights                  int         `json:"nights"`
	RoomsCount              int         `json:"roomsCount"`
	DailyBreakdown          []DailyRate `json:"dailyBreakdown"`
	RoomPrice               float64     `json:"roomPrice"`
	PropertyDiscountAmount  float64     `json:"propertyDiscountAmount"`
	PropertyDiscountPercent float64     `json:"propertyDiscountPercent"`
	CouponDiscountAmount    float64     `json:"couponDiscountAmount"`
	CouponDiscountPercent   float64     `json:"couponDiscountPercent"`
	TaxAmount               float64     `json:"taxAmount"`
	ServiceFee              float64     `json:"serviceFee"`
	TotalAmount             float64     `json:"totalAmount"`
}

// QuoteRequest carries the client input for a price quote.
type QuoteRequest struct {
	PropertyID string    `json:"propertyId" binding:"required"`
	RoomTypeID string    `json:"roomTypeId" binding:"required"`
	CheckIn    time.Time `json:"checkIn" binding:"required"`
	CheckOut   time.Time `json:"checkOut" binding:"required"`
	RoomsCount int       `json:"roomsCount" binding:"required"`
}
