package inventory

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	inventoryRepo "stayhub/database/repository/inventory"
	"stayhub/models"
	"stayhub/services/pricing"
)

// TypeInventoryRelease is the asynq task type for releasing a room hold.
const TypeInventoryRelease = "inventory:release"

// ReleasePayload is the task payload for TypeInventoryRelease.
type ReleasePayload struct {
	BookingID string `json:"bookingId"`
}

// Service signals hold/release intents for room units. Releases run in the
// background with retry so a slow or failing release never blocks the
// user-facing response.
type Service interface {
	pricing.Availability
	// Hold records the room units a draft booking claims.
	Hold(booking *models.Booking) error
	// ReleaseAsync schedules the booking's hold for release, with retry.
	ReleaseAsync(bookingID string)
}

// DefaultInventoryService implements Service on the hold repository and an
// asynq queue for deferred releases.
type DefaultInventoryService struct {
	Repo    inventoryRepo.InventoryRepository
	Catalog pricing.Catalog
	Queue   *asynq.Client
	Logger  *zap.Logger
}

// Available reports whether enough units are free for every night in range.
func (s *DefaultInventoryService) Available(roomTypeID string, checkIn, checkOut time.Time, rooms int) (bool, error) {
	roomType, err := s.Catalog.GetRoomType(roomTypeID)
	if err != nil {
		return false, err
	}
	held, err := s.Repo.HeldUnits(roomTypeID, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return roomType.TotalUnits-held >= rooms, nil
}

// Hold records the room units a draft booking claims.
func (s *DefaultInventoryService) Hold(booking *models.Booking) error {
	hold := &models.RoomHold{
		BookingID:  booking.ID,
		RoomTypeID: booking.RoomTypeID,
		CheckIn:    booking.CheckIn,
		CheckOut:   booking.CheckOut,
		Units:      booking.RoomsCount,
	}
	if err := s.Repo.Hold(hold); err != nil {
		if err == inventoryRepo.ErrDuplicateHold {
			return nil // already held for this booking
		}
		return err
	}
	return nil
}

// ReleaseAsync schedules the booking's hold for release. Failures are logged,
// never surfaced: the worker retries with backoff until the release lands.
func (s *DefaultInventoryService) ReleaseAsync(bookingID string) {
	payload, err := json.Marshal(ReleasePayload{BookingID: bookingID})
	if err != nil {
		s.Logger.Error("failed to marshal release payload", zap.Error(err))
		return
	}

	task := asynq.NewTask(TypeInventoryRelease, payload)
	if _, err := s.Queue.Enqueue(task,
		asynq.MaxRetry(10),
		asynq.Timeout(30*time.Second),
	); err != nil {
		s.Logger.Error("failed to enqueue inventory release",
			zap.String("bookingId", bookingID), zap.Error(err))
		// Last resort: try the release inline so the hold is not left dangling.
		go func() {
			if relErr := s.Repo.Release(bookingID); relErr != nil {
				s.Logger.Error("inline inventory release failed",
					zap.String("bookingId", bookingID), zap.Error(relErr))
			}
		}()
	}
}
