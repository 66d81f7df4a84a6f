package models

import "time"

// Room hold states.
const (
	HoldStatusHeld     = "held"
	HoldStatusReleased = "released"
)

// RoomHold records the room units held for a booking attempt. Holds are
// released when the payment session expires or is cancelled.
type RoomHold struct {
	BookingID  string    `bson:"booking_id" json:"bookingId"`
	RoomTypeID string    `bson:"room_type_id" json:"roomTypeId"`
	CheckIn    time.Time `bson:"check_in" json:"checkIn"`
	CheckOut   time.Time `bson:"check_out" json:"checkOut"`
	Units      int       `bson:"units" json:"units"`
	Status     string    `bson:"status" json:"status"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}
