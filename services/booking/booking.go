package booking

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	bookingRepo "stayhub/database/repository/booking"
	"stayhub/models"
	"stayhub/services/pricing"
	"stayhub/utils"
)

// Ownership and existence are reported distinctly: the booking may exist and
// still be invisible to the caller.
var (
	ErrBookingNotFound = utils.NewServiceError("bookingNotFound",
		http.StatusNotFound, "booking not found")
	ErrNotOwner = utils.NewServiceError("notOwner",
		http.StatusForbidden, "booking belongs to another customer")
	ErrInvalidGuests = utils.NewServiceError("invalidGuests",
		http.StatusUnprocessableEntity, "adults must be at least 1 and children non-negative")
)

// CreateRequest carries the client input for a draft booking.
type CreateRequest struct {
	PropertyID string    `json:"propertyId" binding:"required"`
	RoomTypeID string    `json:"roomTypeId" binding:"required"`
	CheckIn    time.Time `json:"checkIn" binding:"required"`
	CheckOut   time.Time `json:"checkOut" binding:"required"`
	RoomsCount int       `json:"roomsCount" binding:"required"`
	Adults     int       `json:"adults" binding:"required"`
	Children   int       `json:"children"`
}

// BookingService creates draft bookings and serves owner-scoped reads.
type BookingService interface {
	Create(ownerID string, req CreateRequest) (*models.Booking, error)
	Get(bookingID, callerID string) (*models.Booking, error)
}

// Inventory is the slice of the inventory service a draft creation needs.
type Inventory interface {
	Hold(booking *models.Booking) error
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo      bookingRepo.BookingRepository
	Pricing   pricing.PricingEngine
	Inventory Inventory
}

// Create prices the stay, persists a draft booking with the resulting
// snapshot, and holds the room units.
func (s *DefaultBookingService) Create(ownerID string, req CreateRequest) (*models.Booking, error) {
	if req.Adults < 1 || req.Children < 0 {
		return nil, ErrInvalidGuests
	}

	quote, err := s.Pricing.Quote(models.QuoteRequest{
		PropertyID: req.PropertyID,
		RoomTypeID: req.RoomTypeID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		RoomsCount: req.RoomsCount,
	})
	if err != nil {
		return nil, err
	}

	snap := pricing.QuoteSnapshot(quote)
	booking := &models.Booking{
		ID:            uuid.New().String(),
		Code:          newBookingCode(),
		PropertyID:    req.PropertyID,
		RoomTypeID:    req.RoomTypeID,
		CheckIn:       quote.CheckIn,
		CheckOut:      quote.CheckOut,
		RoomsCount:    req.RoomsCount,
		Adults:        req.Adults,
		Children:      req.Children,
		OwnerID:       ownerID,
		Status:        models.BookingStatusDraft,
		PaymentStatus: models.PaymentStatusUnpaid,

		RoomPrice:               snap.RoomPrice,
		PropertyDiscountAmount:  snap.PropertyDiscountAmount,
		PropertyDiscountPercent: snap.PropertyDiscountPercent,
		TaxAmount:               snap.TaxAmount,
		ServiceFee:              snap.ServiceFee,
		TotalAmount:             snap.TotalAmount,
	}

	if err := s.Repo.Create(booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	if err := s.Inventory.Hold(booking); err != nil {
		// Remove the draft so the failure leaves no hold-less booking behind.
		if delErr := s.Repo.Delete(booking.ID); delErr != nil {
			return nil, fmt.Errorf("failed to remove booking %s after hold failure: %w", booking.ID, delErr)
		}
		return nil, fmt.Errorf("failed to hold rooms for booking %s: %w", booking.ID, err)
	}
	return booking, nil
}

// Get returns the booking iff the caller owns it.
func (s *DefaultBookingService) Get(bookingID, callerID string) (*models.Booking, error) {
	booking, err := s.Repo.GetByID(bookingID)
	if err != nil {
		if err == bookingRepo.ErrNotFound {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", bookingID, err)
	}
	if booking.OwnerID != callerID {
		return nil, ErrNotOwner
	}
	return booking, nil
}

// newBookingCode builds a short human-shareable code like "SH-4F9A21C3".
func newBookingCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "SH-" + raw[:8]
}
