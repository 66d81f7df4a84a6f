package models

import "time"

// Service fee modes on a property.
const (
	ServiceFeeFlat    = "flat"
	ServiceFeePercent = "percent"
)

// Property carries the pricing configuration the checkout core needs.
// Full property management lives outside this service.
type Property struct {
	ID              string  `bson:"id" json:"id"`
	Name            string  `bson:"name" json:"name"`
	LocationID      string  `bson:"location_id" json:"locationId"`
	PropertyTypeID  string  `bson:"property_type_id" json:"propertyTypeId"`
	DiscountPercent float64 `bson:"discount_percent" json:"discountPercent"`
	TaxPercent      float64 `bson:"tax_percent" json:"taxPercent"`
	ServiceFeeMode  string  `bson:"service_fee_mode" json:"serviceFeeMode"`
	ServiceFeeValue float64 `bson:"service_fee_value" json:"serviceFeeValue"`
}

// RoomType holds the per-night rates for one room category of a property.
// Weekend and holiday rates fall back to the base rate when unset (zero).
type RoomType struct {
	ID                     string  `bson:"id" json:"id"`
	PropertyID             string  `bson:"property_id" json:"propertyId"`
	Name                   string  `bson:"name" json:"name"`
	BaseRate               float64 `bson:"base_rate" json:"baseRate"`
	WeekendRate            float64 `bson:"weekend_rate,omitempty" json:"weekendRate,omitempty"`
	HolidayRate            float64 `bson:"holiday_rate,omitempty" json:"holidayRate,omitempty"`
	WeeklyDiscountPercent  float64 `bson:"weekly_discount_percent" json:"weeklyDiscountPercent"`
	MonthlyDiscountPercent float64 `bson:"monthly_discount_percent" json:"monthlyDiscountPercent"`
	TotalUnits             int     `bson:"total_units" json:"totalUnits"`
}

// Holiday is one entry of the catalog's holiday calendar.
type Holiday struct {
	Date time.Time `bson:"date" json:"date"`
	Name string    `bson:"name" json:"name"`
}

// RoomRates is the slice of catalog data the pricing engine consumes,
// fetched once per quote.
type RoomRates struct {
	BaseRate               float64
	WeekendRate            float64
	HolidayRate            float64
	WeeklyDiscountPercent  float64
	MonthlyDiscountPercent float64
}
