package notification

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"stayhub/models"
)

// TypeNotifyEvent is the asynq task type for outbound booking events.
const TypeNotifyEvent = "notification:event"

// Event names delivered to the notification collaborator.
const (
	EventBookingConfirmed = "BookingConfirmed"
	EventPaymentExpired   = "PaymentExpired"
)

// EventPayload is the task payload for TypeNotifyEvent.
type EventPayload struct {
	Event     string  `json:"event"`
	BookingID string  `json:"bookingId"`
	OwnerID   string  `json:"ownerId"`
	Code      string  `json:"code"`
	Amount    float64 `json:"amount"`
}

// Service emits fire-and-forget booking events. The core never awaits
// delivery; failures retry in the background.
type Service interface {
	BookingConfirmed(booking *models.Booking)
	PaymentExpired(booking *models.Booking)
}

// DefaultNotificationService enqueues events onto the shared task queue.
type DefaultNotificationService struct {
	Queue  *asynq.Client
	Logger *zap.Logger
}

func (s *DefaultNotificationService) BookingConfirmed(booking *models.Booking) {
	s.emit(EventBookingConfirmed, booking)
}

func (s *DefaultNotificationService) PaymentExpired(booking *models.Booking) {
	s.emit(EventPaymentExpired, booking)
}

func (s *DefaultNotificationService) emit(event string, booking *models.Booking) {
	payload, err := json.Marshal(EventPayload{
		Event:     event,
		BookingID: booking.ID,
		OwnerID:   booking.OwnerID,
		Code:      booking.Code,
		Amount:    booking.TotalAmount,
	})
	if err != nil {
		s.Logger.Error("failed to marshal notification payload", zap.Error(err))
		return
	}

	task := asynq.NewTask(TypeNotifyEvent, payload)
	if _, err := s.Queue.Enqueue(task,
		asynq.MaxRetry(5),
		asynq.Timeout(15*time.Second),
	); err != nil {
		s.Logger.Warn("failed to enqueue notification",
			zap.String("event", event),
			zap.String("bookingId", booking.ID),
			zap.Error(err))
	}
}
