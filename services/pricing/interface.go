package pricing

import (
	"time"

	"stayhub/models"
)

// Catalog supplies the rate and calendar data a quote is computed from.
// Implemented by the cached catalog service; fetched once per quote.
type Catalog interface {
	GetProperty(id string) (*models.Property, error)
	GetRoomType(id string) (*models.RoomType, error)
	IsHoliday(date time.Time) (bool, error)
}

// Availability answers whether enough units are free for every night in range.
type Availability interface {
	Available(roomTypeID string, checkIn, checkOut time.Time, rooms int) (bool, error)
}

// PricingEngine turns a room selection into a nightly breakdown and totals.
type PricingEngine interface {
	Quote(req models.QuoteRequest) (*models.PriceQuote, error)
}
