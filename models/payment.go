package models

import "time"

// Payment session states.
const (
	SessionStatusPending   = "pending"
	SessionStatusPaid      = "paid"
	SessionStatusExpired   = "expired"
	SessionStatusCancelled = "cancelled"
)

// PaymentSession is a time-boxed authorization to pay a fixed amount for a
// booking. Amount is frozen from the booking total at open time; coupon
// changes are blocked while a session is open, so no re-pricing path exists.
type PaymentSession struct {
	BookingID string    `bson:"booking_id" json:"bookingId"` // one active session per booking
	Amount    float64   `bson:"amount" json:"amount"`
	Reference string    `bson:"reference" json:"reference"` // opaque payer-facing reference
	QRCodeURL string    `bson:"qr_code_url,omitempty" json:"qrCodeUrl,omitempty"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Expired reports whether the session TTL has lapsed at the given instant.
// Expiry is authoritative server-side and evaluated lazily on read.
func (s *PaymentSession) Expired(now time.Time) bool {
	return s.Status == SessionStatusPending && now.After(s.ExpiresAt)
}

// Terminal reports whether the session can no longer change state.
func (s *PaymentSession) Terminal() bool {
	return s.Status == SessionStatusPaid ||
		s.Status == SessionStatusExpired ||
		s.Status == SessionStatusCancelled
}

// PaymentReference is what the gateway hands back when a session opens.
type PaymentReference struct {
	Reference string `json:"reference"`
	QRCodeURL string `json:"qrCodeUrl"`
}

// Reconciliation records a payment confirmation that arrived too late or with
// a mismatched amount. These are never silently accepted or dropped; an
// operator resolves them by hand.
type Reconciliation struct {
	ID            string    `bson:"id" json:"id"`
	BookingID     string    `bson:"booking_id" json:"bookingId"`
	Reference     string    `bson:"reference" json:"reference"`
	Amount        float64   `bson:"amount" json:"amount"`
	SessionStatus string    `bson:"session_status" json:"sessionStatus"`
	Reason        string    `bson:"reason" json:"reason"` // "late", "amountMismatch" or "cancelled"
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	Resolved      bool      `bson:"resolved" json:"resolved"`
}
