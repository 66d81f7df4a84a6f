package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/models"
)

type fakeCatalog struct {
	property *models.Property
	roomType *models.RoomType
	holidays map[string]bool
}

func (f *fakeCatalog) GetProperty(id string) (*models.Property, error) {
	return f.property, nil
}

func (f *fakeCatalog) GetRoomType(id string) (*models.RoomType, error) {
	return f.roomType, nil
}

func (f *fakeCatalog) IsHoliday(date time.Time) (bool, error) {
	return f.holidays[date.Format("2006-01-02")], nil
}

type fakeAvailability struct {
	available bool
}

func (f *fakeAvailability) Available(roomTypeID string, checkIn, checkOut time.Time, rooms int) (bool, error) {
	return f.available, nil
}

func newEngine(property *models.Property, roomType *models.RoomType, holidays map[string]bool) *DefaultPricingEngine {
	return &DefaultPricingEngine{
		Catalog:      &fakeCatalog{property: property, roomType: roomType, holidays: holidays},
		Availability: &fakeAvailability{available: true},
	}
}

func standardProperty() *models.Property {
	return &models.Property{
		ID:              "prop-1",
		Name:            "Riverside Hotel",
		TaxPercent:      10,
		ServiceFeeMode:  models.ServiceFeeFlat,
		ServiceFeeValue: 50000,
	}
}

func standardRoomType() *models.RoomType {
	return &models.RoomType{
		ID:          "room-1",
		PropertyID:  "prop-1",
		Name:        "Deluxe Double",
		BaseRate:    500000,
		WeekendRate: 700000,
		TotalUnits:  10,
	}
}

// 2026-01-02 is a Friday, so a three night stay covers one weekday night and
// two weekend nights.
var (
	friday = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	monday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
)

func TestQuoteWeekendMix(t *testing.T) {
	engine := newEngine(standardProperty(), standardRoomType(), nil)

	quote, err := engine.Quote(models.QuoteRequest{
		PropertyID: "prop-1",
		RoomTypeID: "room-1",
		CheckIn:    friday,
		CheckOut:   monday,
		RoomsCount: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, quote.Nights)
	require.Len(t, quote.DailyBreakdown, 3)
	assert.Equal(t, models.PriceTypeWeekday, quote.DailyBreakdown[0].PriceType)
	assert.Equal(t, models.PriceTypeWeekend, quote.DailyBreakdown[1].PriceType)
	assert.Equal(t, models.PriceTypeWeekend, quote.DailyBreakdown[2].PriceType)

	// roomPrice = 2 x (500,000 + 700,000 + 700,000)
	assert.InDelta(t, 3800000, quote.RoomPrice, 0.01)
	assert.InDelta(t, 380000, quote.TaxAmount, 0.01)
	assert.InDelta(t, 50000, quote.ServiceFee, 0.01)
	assert.InDelta(t, 4230000, quote.TotalAmount, 0.01)
}

func TestQuoteDeterministic(t *testing.T) {
	engine := newEngine(standardProperty(), standardRoomType(), nil)
	req := models.QuoteRequest{
		PropertyID: "prop-1",
		RoomTypeID: "room-1",
		CheckIn:    friday,
		CheckOut:   monday,
		RoomsCount: 2,
	}

	first, err := engine.Quote(req)
	require.NoError(t, err)
	second, err := engine.Quote(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestQuoteHolidayBeatsWeekend(t *testing.T) {
	roomType := standardRoomType()
	roomType.HolidayRate = 900000
	engine := newEngine(standardProperty(), roomType, map[string]bool{
		"2026-01-03": true, // a Saturday
	})

	quote, err := engine.Quote(models.QuoteRequest{
		PropertyID: "prop-1",
		RoomTypeID: "room-1",
		CheckIn:    friday,
		CheckOut:   monday,
		RoomsCount: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PriceTypeHoliday, quote.DailyBreakdown[1].PriceType)
	assert.InDelta(t, 900000, quote.DailyBreakdown[1].PricePerRoom, 0.01)
	assert.Equal(t, models.PriceTypeWeekend, quote.DailyBreakdown[2].PriceType)
}

func TestQuoteRateFallbackToBase(t *testing.T) {
	roomType := standardRoomType()
	roomType.WeekendRate = 0
	roomType.HolidayRate = 0
	engine := newEngine(standardProperty(), roomType, map[string]bool{
		"2026-01-02": true,
	})

	quote, err := engine.Quote(models.QuoteRequest{
		PropertyID: "prop-1",
		RoomTypeID: "room-1",
		CheckIn:    friday,
		CheckOut:   monday,
		RoomsCount: 1,
	})
	require.NoError(t, err)

	// Holiday Friday and both weekend nights all fall back to the base rate.
	for _, day := range quote.DailyBreakdown {
		assert.InDelta(t, 500000, day.PricePerRoom, 0.01)
	}
}

func TestQuoteInvalidDateRange(t *testing.T) {
	engine := newEngine(standardProperty(), standardRoomType(), nil)

	_, err := engine.Quote(models.QuoteRequest{
		PropertyID: "prop-1",
		RoomTypeID: "room-1",
		CheckIn:    monday,
		CheckOut:   friday,
		RoomsCount: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = engine.Quote(models.QuoteRequest{
		PropertyID: "prop-1",
		RoomTypeID: "room-1",
		CheckIn:    friday,
		CheckOut:   monday,
		RoomsCount: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestQuoteRoomTypeMustBelongToProperty(t *testing.T) {
	roomType := standardRoomType()
	roomType.PropertyID = "other-prop"
	engine := newEngine(standardProperty(), roomType, nil)

	_, err := engine.Quote(models.QuoteRequest{
		PropertyID: "prop-1",
		RoomTypeID: "room-1",
		CheckIn:    friday,
		CheckOut:   monday,
		RoomsCount: 1,
	})
	assert.ErrorIs(t, err, ErrRoomTypeNotFound)
}

func TestQuoteInsufficientAvailability(t *testing.T) {
	engine := newEngine(standardProperty(), standardRoomType(), nil)
	engine.Availability = &fakeAvailability{available: false}

	_, err := engine.Quote(models.QuoteRequest{
		PropertyID: "prop-1",
		RoomTypeID: "room-1",
		CheckIn:    friday,
		CheckOut:   monday,
		RoomsCount: 1,
	})
	assert.ErrorIs(t, err, ErrInsufficientAvailability)
}

func TestQuoteLongStayDiscount(t *testing.T) {
	roomType := standardRoomType()
	roomType.WeekendRate = 500000 // flat rate keeps the arithmetic simple
	roomType.WeeklyDiscountPercent = 5
	roomType.MonthlyDiscountPercent = 15
	engine := newEngine(standardProperty(), roomType, nil)

	weekly, err := engine.Quote(models.QuoteRequest{
		PropertyID: "prop-1",
		RoomTypeID: "room-1",
		CheckIn:    friday,
		CheckOut:   friday.AddDate(0, 0, 7),
		RoomsCount: 1,
	})
	require.NoError(t, err)
	assert.InDelta(t, 5, weekly.PropertyDiscountPercent, 0.01)
	assert.InDelta(t, 3500000*0.05, weekly.PropertyDiscountAmount, 0.01)

	// Monthly takes precedence over weekly, never combined.
	monthly, err := engine.Quote(models.QuoteRequest{
		PropertyID: "prop-1",
		RoomTypeID: "room-1",
		CheckIn:    friday,
		CheckOut:   friday.AddDate(0, 0, 30),
		RoomsCount: 1,
	})
	require.NoError(t, err)
	assert.InDelta(t, 15, monthly.PropertyDiscountPercent, 0.01)
}

func TestQuotePercentServiceFee(t *testing.T) {
	property := standardProperty()
	property.ServiceFeeMode = models.ServiceFeePercent
	property.ServiceFeeValue = 2
	roomType := standardRoomType()
	roomType.WeekendRate = 500000
	engine := newEngine(property, roomType, nil)

	quote, err := engine.Quote(models.QuoteRequest{
		PropertyID: "prop-1",
		RoomTypeID: "room-1",
		CheckIn:    friday,
		CheckOut:   monday,
		RoomsCount: 1,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1500000*0.02, quote.ServiceFee, 0.01)
}

func TestApplyCouponToSnapshot(t *testing.T) {
	snap := models.PricingSnapshot{
		RoomPrice:   3800000,
		TaxAmount:   380000,
		ServiceFee:  50000,
		TotalAmount: 4230000,
	}

	// SAVE10: 10% capped at 100,000 against a 3,800,000 subtotal.
	applied := ApplyCouponToSnapshot(snap, 100000, 10)
	assert.InDelta(t, 100000, applied.CouponDiscountAmount, 0.01)
	assert.InDelta(t, 4130000, applied.TotalAmount, 0.01)

	// The original snapshot restores exactly when the coupon comes off.
	restored := ApplyCouponToSnapshot(applied, 0, 0)
	assert.InDelta(t, snap.TotalAmount, restored.TotalAmount, 0.01)
}

func TestApplyCouponToSnapshotClampsAtZero(t *testing.T) {
	snap := models.PricingSnapshot{RoomPrice: 100, TotalAmount: 100}
	applied := ApplyCouponToSnapshot(snap, 500, 0)
	assert.Equal(t, float64(0), applied.TotalAmount)
}
