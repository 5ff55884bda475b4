package notify

import (
	"time"

	"gas-booking-service/internal/domain/booking"
)

// Message is a rendered email waiting to be sent. It is what travels through
// every Queue backend, so it must stay JSON-serializable.
type Message struct {
	ID        string        `json:"id"`
	Event     booking.Event `json:"event"`
	BookingID string        `json:"booking_id"`
	To        string        `json:"to"`
	Subject   string        `json:"subject"`
	HTML      string        `json:"html"`
	RequestID string        `json:"request_id,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
