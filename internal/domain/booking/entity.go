package booking

import "time"

// DateLayout is the wire format of a booking date.
const DateLayout = "2006-01-02"

// Booking is a gas-cylinder booking keyed by a caller-supplied identifier.
type Booking struct {
	ExternalID string // ExternalID is the caller-supplied key used for every lookup
	Name       string
	Email      string
	Phone      string
	Date       time.Time // Date is a calendar day, normalized to midnight UTC
	TimeSlot   string
}

// Event identifies which booking mutation a notification reports.
type Event string

const (
	EventConfirmed Event = "booking_confirmed"
	EventUpdated   Event = "booking_updated"
	EventCancelled Event = "booking_cancelled"
)

// ParseDate accepts either YYYY-MM-DD or an RFC 3339 timestamp and returns
// the calendar day it names, at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
