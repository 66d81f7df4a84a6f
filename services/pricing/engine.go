package pricing

import (
	"fmt"
	"net/http"
	"time"

	"stayhub/models"
	"stayhub/utils"
)

// Typed pricing errors surfaced to the client.
var (
	ErrInvalidDateRange = utils.NewServiceError("invalidDateRange",
		http.StatusUnprocessableEntity, "check-out must be after check-in and rooms count at least 1")
	ErrRoomTypeNotFound = utils.NewServiceError("roomTypeNotFound",
		http.StatusNotFound, "room type not found for this property")
	ErrInsufficientAvailability = utils.NewServiceError("insufficientAvailability",
		http.StatusUnprocessableEntity, "not enough rooms available for the selected dates")
)

// Long-stay thresholds in nights. Monthly takes precedence over weekly, the
// two are never combined.
const (
	weeklyStayNights  = 7
	monthlyStayNights = 30
)

// DefaultPricingEngine computes quotes from catalog data. Pure computation:
// rates are fetched once per quote, nothing is cached across requests and
// nothing is mutated.
type DefaultPricingEngine struct {
	Catalog      Catalog
	Availability Availability
}

// Quote prices a stay. For each night the price type is classified holiday >
// weekend > weekday, with weekend/holiday rates falling back to the base rate
// when unset. The coupon is not part of a quote; it is applied later against
// the subtotal.
func (e *DefaultPricingEngine) Quote(req models.QuoteRequest) (*models.PriceQuote, error) {
	checkIn := dateOnly(req.CheckIn)
	checkOut := dateOnly(req.CheckOut)

	if !checkOut.After(checkIn) || req.RoomsCount < 1 {
		return nil, ErrInvalidDateRange
	}
	nights := int(checkOut.Sub(checkIn).Hours() / 24)

	roomType, err := e.Catalog.GetRoomType(req.RoomTypeID)
	if err != nil {
		return nil, ErrRoomTypeNotFound
	}
	if roomType.PropertyID != req.PropertyID {
		return nil, ErrRoomTypeNotFound
	}
	property, err := e.Catalog.GetProperty(req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch property %s: %w", req.PropertyID, err)
	}

	available, err := e.Availability.Available(req.RoomTypeID, checkIn, checkOut, req.RoomsCount)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if !available {
		return nil, ErrInsufficientAvailability
	}

	breakdown := make([]models.DailyRate, 0, nights)
	var perRoomTotal float64
	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		priceType, rate := e.classify(d, roomType)
		breakdown = append(breakdown, models.DailyRate{
			Date:         d,
			DayOfWeek:    d.Weekday().String(),
			PriceType:    priceType,
			PricePerRoom: rate,
		})
		perRoomTotal += rate
	}

	roomPrice := float64(req.RoomsCount) * perRoomTotal

	discountPercent := property.DiscountPercent + longStayDiscountPercent(nights, roomType)
	discountAmount := roomPrice * discountPercent / 100

	taxAmount := property.TaxPercent / 100 * (roomPrice - discountAmount)
	serviceFee := serviceFeeAmount(property, roomPrice-discountAmount)

	return &models.PriceQuote{
		PropertyID:              req.PropertyID,
		RoomTypeID:              req.RoomTypeID,
		CheckIn:                 checkIn,
		CheckOut:                checkOut,
		Nights:                  nights,
		RoomsCount:              req.RoomsCount,
		DailyBreakdown:          breakdown,
		RoomPrice:               roomPrice,
		PropertyDiscountAmount:  discountAmount,
		PropertyDiscountPercent: discountPercent,
		TaxAmount:               taxAmount,
		ServiceFee:              serviceFee,
		TotalAmount:             roomPrice - discountAmount + taxAmount + serviceFee,
	}, nil
}

// classify returns the price type and per-room rate for one night.
func (e *DefaultPricingEngine) classify(d time.Time, rt *models.RoomType) (string, float64) {
	if holiday, err := e.Catalog.IsHoliday(d); err == nil && holiday {
		rate := rt.HolidayRate
		if rate == 0 {
			rate = rt.BaseRate
		}
		return models.PriceTypeHoliday, rate
	}
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		rate := rt.WeekendRate
		if rate == 0 {
			rate = rt.BaseRate
		}
		return models.PriceTypeWeekend, rate
	}
	return models.PriceTypeWeekday, rt.BaseRate
}

func longStayDiscountPercent(nights int, rt *models.RoomType) float64 {
	switch {
	case nights >= monthlyStayNights:
		return rt.MonthlyDiscountPercent
	case nights >= weeklyStayNights:
		return rt.WeeklyDiscountPercent
	default:
		return 0
	}
}

func serviceFeeAmount(p *models.Property, discountedRoomPrice float64) float64 {
	if p.ServiceFeeMode == models.ServiceFeePercent {
		return p.ServiceFeeValue / 100 * discountedRoomPrice
	}
	return p.ServiceFeeValue
}

// ApplyCouponToSnapshot recomputes a booking's snapshot with the given coupon
// discount. Only the coupon fields and the total change; the tax base excludes
// the coupon so the rest of the snapshot stays as priced.
func ApplyCouponToSnapshot(snap models.PricingSnapshot, discountAmount, discountPercent float64) models.PricingSnapshot {
	snap.CouponDiscountAmount = discountAmount
	snap.CouponDiscountPercent = discountPercent
	snap.TotalAmount = snap.RoomPrice - snap.PropertyDiscountAmount - discountAmount +
		snap.TaxAmount + snap.ServiceFee
	if snap.TotalAmount < 0 {
		snap.TotalAmount = 0
	}
	return snap
}

// QuoteSnapshot converts a quote into the snapshot persisted on a booking.
func QuoteSnapshot(q *models.PriceQuote) models.PricingSnapshot {
	return models.PricingSnapshot{
		RoomPrice:               q.RoomPrice,
		PropertyDiscountAmount:  q.PropertyDiscountAmount,
		PropertyDiscountPercent: q.PropertyDiscountPercent,
		TaxAmount:               q.TaxAmount,
		ServiceFee:              q.ServiceFee,
		TotalAmount:             q.TotalAmount,
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
